package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/core/ports"
)

const (
	usersFile     = "users.json"
	allowedFile   = "allowed_users.json"
	botConfigFile = "bot_config.json"
)

// FileStore persists registry and bot state as JSON files under dir. Every
// write goes through a temp file and rename so a crash never leaves a
// truncated state file behind.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

var (
	_ ports.IdentityStateStore = (*FileStore)(nil)
	_ ports.BotConfigStore     = (*FileStore)(nil)
)

// persistedUser is the users.json value shape; ids are object keys.
type persistedUser struct {
	DisplayName         string      `json:"display_name"`
	Role                domain.Role `json:"role,omitempty"`
	AllowedByConvention bool        `json:"allowed_by_convention"`
	ActiveSpreadsheetID string      `json:"active_spreadsheet_id,omitempty"`
	ActiveSheetName     string      `json:"active_sheet_name,omitempty"`
	Language            string      `json:"language,omitempty"`
	Reports             []string    `json:"reports,omitempty"`
}

func (s *FileStore) LoadUsers() (map[int64]domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := map[string]persistedUser{}
	if err := s.readJSON(usersFile, &raw); err != nil {
		return nil, err
	}

	users := make(map[int64]domain.Identity, len(raw))
	for key, pu := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue // tolerate junk keys rather than refuse startup
		}
		users[id] = domain.Identity{
			ExternalID:          id,
			DisplayName:         pu.DisplayName,
			Role:                pu.Role,
			Allowed:             pu.AllowedByConvention,
			ActiveSpreadsheetID: pu.ActiveSpreadsheetID,
			ActiveSheetName:     pu.ActiveSheetName,
			Language:            pu.Language,
			Reports:             pu.Reports,
		}
	}
	return users, nil
}

func (s *FileStore) SaveUsers(users map[int64]domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make(map[string]persistedUser, len(users))
	for id, ident := range users {
		raw[strconv.FormatInt(id, 10)] = persistedUser{
			DisplayName:         ident.DisplayName,
			Role:                ident.Role,
			AllowedByConvention: ident.Allowed,
			ActiveSpreadsheetID: ident.ActiveSpreadsheetID,
			ActiveSheetName:     ident.ActiveSheetName,
			Language:            ident.Language,
			Reports:             ident.Reports,
		}
	}
	return s.writeJSON(usersFile, raw)
}

func (s *FileStore) LoadAllowed() ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := []int64{}
	if err := s.readJSON(allowedFile, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *FileStore) SaveAllowed(ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ids == nil {
		ids = []int64{}
	}
	return s.writeJSON(allowedFile, ids)
}

func (s *FileStore) LoadBotConfig() (domain.BotConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := domain.BotConfig{}
	if err := s.readJSON(botConfigFile, &cfg); err != nil {
		return domain.BotConfig{}, err
	}
	if cfg.ReportChats == nil {
		cfg.ReportChats = map[int64]domain.ReportSubscription{}
	}
	return cfg, nil
}

func (s *FileStore) SaveBotConfig(cfg domain.BotConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(botConfigFile, cfg)
}

// readJSON fills out from the named file; a missing file leaves out untouched.
func (s *FileStore) readJSON(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// writeJSON writes atomically: temp file in the same directory, then rename.
func (s *FileStore) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	target := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
