package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cashbookhq/cashbook-bot/internal/apperrors"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/core/ports"
	portssvc "github.com/cashbookhq/cashbook-bot/internal/core/ports/services"
	"github.com/cashbookhq/cashbook-bot/internal/middleware"
)

// IdentityService owns the identity registry: role assignments, the allowed
// set, and per-user chat session state. Reads take a shared lock over the
// current map; every mutation copies the map, persists, then swaps, so readers
// never observe a half-applied change.
type IdentityService struct {
	store        ports.IdentityStateStore
	superAdminID int64
	adminIDs     []int64

	mu    sync.RWMutex
	users map[int64]domain.Identity
}

var _ portssvc.IdentitySvcFacade = (*IdentityService)(nil)

func NewIdentityService(store ports.IdentityStateStore, superAdminID int64, adminIDs []int64) (*IdentityService, error) {
	users, err := store.LoadUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to load identity registry: %w", err)
	}
	if users == nil {
		users = map[int64]domain.Identity{}
	}
	return &IdentityService{
		store:        store,
		superAdminID: superAdminID,
		adminIDs:     adminIDs,
		users:        users,
	}, nil
}

func (s *IdentityService) Authorize(ctx context.Context, userID int64, capability domain.Capability) error {
	s.mu.RLock()
	ident, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: user %d", apperrors.ErrUnknownIdentity, userID)
	}
	if !ident.Allowed {
		return fmt.Errorf("%w: user %d is not allowed", apperrors.ErrUnauthorized, userID)
	}
	if !ident.Role.HasCapability(capability) {
		return fmt.Errorf("%w: role %s lacks %s", apperrors.ErrUnauthorized, ident.Role, capability)
	}
	return nil
}

func (s *IdentityService) Identity(ctx context.Context, userID int64) (*domain.Identity, error) {
	s.mu.RLock()
	ident, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: user %d", apperrors.ErrUnknownIdentity, userID)
	}
	return &ident, nil
}

func (s *IdentityService) ResolveRoleByDisplayName(ctx context.Context, displayName string) (domain.Role, bool) {
	ident, ok := s.IdentityByDisplayName(ctx, displayName)
	if !ok || ident.Role == "" {
		return "", false
	}
	return ident.Role, true
}

func (s *IdentityService) IdentityByDisplayName(ctx context.Context, displayName string) (*domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ident := range s.users {
		if ident.DisplayName == displayName {
			found := ident
			return &found, true
		}
	}
	return nil, false
}

func (s *IdentityService) Register(ctx context.Context, userID int64, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; ok {
		return nil
	}
	next := s.copyUsers()
	next[userID] = domain.Identity{
		ExternalID:  userID,
		DisplayName: displayName,
		Role:        domain.RoleWorker,
		Allowed:     false,
	}
	return s.commit(ctx, next)
}

func (s *IdentityService) SetRole(ctx context.Context, callerID, userID int64, role domain.Role) error {
	if err := s.Authorize(ctx, callerID, domain.CapManageRoles); err != nil {
		return err
	}
	// The super admin is fixed by configuration; assigning the role to anyone
	// would create a second one.
	if role == domain.RoleSuperAdmin {
		return fmt.Errorf("%w: role %s cannot be assigned", apperrors.ErrValidation, role)
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %d", apperrors.ErrUnknownIdentity, userID)
	}
	next := s.copyUsers()
	ident.Role = role
	next[userID] = ident
	return s.commit(ctx, next)
}

func (s *IdentityService) Allow(ctx context.Context, callerID, userID int64) error {
	if err := s.Authorize(ctx, callerID, domain.CapManageRoles); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %d", apperrors.ErrUnknownIdentity, userID)
	}
	next := s.copyUsers()
	ident.Allowed = true
	next[userID] = ident
	return s.commit(ctx, next)
}

func (s *IdentityService) Disallow(ctx context.Context, callerID, userID int64) error {
	if err := s.Authorize(ctx, callerID, domain.CapManageRoles); err != nil {
		return err
	}
	if userID == s.superAdminID {
		return fmt.Errorf("%w: the super admin cannot be disallowed", apperrors.ErrUnauthorized)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %d", apperrors.ErrUnknownIdentity, userID)
	}
	next := s.copyUsers()
	ident.Allowed = false
	next[userID] = ident
	return s.commit(ctx, next)
}

func (s *IdentityService) SetActiveWorksheet(ctx context.Context, userID int64, spreadsheetID, sheetName string) error {
	return s.mutate(ctx, userID, func(ident *domain.Identity) {
		ident.ActiveSpreadsheetID = spreadsheetID
		ident.ActiveSheetName = sheetName
	})
}

func (s *IdentityService) AddReport(ctx context.Context, userID int64, recordID string) error {
	return s.mutate(ctx, userID, func(ident *domain.Identity) {
		for _, id := range ident.Reports {
			if id == recordID {
				return
			}
		}
		ident.Reports = append(append([]string{}, ident.Reports...), recordID)
	})
}

func (s *IdentityService) RemoveReport(ctx context.Context, userID int64, recordID string) error {
	return s.mutate(ctx, userID, func(ident *domain.Identity) {
		reports := make([]string, 0, len(ident.Reports))
		for _, id := range ident.Reports {
			if id != recordID {
				reports = append(reports, id)
			}
		}
		ident.Reports = reports
	})
}

// MigrateRoles is the startup bootstrap pass: the configured super admin and
// admins receive their roles and the allowed flag; identities predating the
// role field default to worker; the legacy allowed file is merged in.
func (s *IdentityService) MigrateRoles(ctx context.Context) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	allowed, err := s.store.LoadAllowed()
	if err != nil {
		return fmt.Errorf("failed to load allowed list: %w", err)
	}
	allowedSet := make(map[int64]bool, len(allowed))
	for _, id := range allowed {
		allowedSet[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.copyUsers()

	for id, ident := range next {
		if allowedSet[id] {
			ident.Allowed = true
		}
		if ident.Role == "" {
			ident.Role = domain.RoleWorker
		}
		next[id] = ident
	}
	if s.superAdminID != 0 {
		ident := next[s.superAdminID]
		ident.ExternalID = s.superAdminID
		ident.Role = domain.RoleSuperAdmin
		ident.Allowed = true
		next[s.superAdminID] = ident
	}
	for _, adminID := range s.adminIDs {
		if adminID == s.superAdminID {
			continue
		}
		ident := next[adminID]
		ident.ExternalID = adminID
		ident.Role = domain.RoleAdmin
		ident.Allowed = true
		next[adminID] = ident
	}

	if err := s.commit(ctx, next); err != nil {
		return err
	}

	var allowedIDs []int64
	for id, ident := range next {
		if ident.Allowed {
			allowedIDs = append(allowedIDs, id)
		}
	}
	if err := s.store.SaveAllowed(allowedIDs); err != nil {
		return fmt.Errorf("failed to persist allowed list: %w", err)
	}
	logger.Info("Role migration pass completed", slog.Int("identities", len(next)), slog.Int("allowed", len(allowedIDs)))
	return nil
}

// mutate applies fn to one identity under the write lock and persists.
func (s *IdentityService) mutate(ctx context.Context, userID int64, fn func(*domain.Identity)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %d", apperrors.ErrUnknownIdentity, userID)
	}
	next := s.copyUsers()
	fn(&ident)
	next[userID] = ident
	return s.commit(ctx, next)
}

// copyUsers returns a mutable copy of the current map; callers hold mu.
func (s *IdentityService) copyUsers() map[int64]domain.Identity {
	next := make(map[int64]domain.Identity, len(s.users))
	for id, ident := range s.users {
		next[id] = ident
	}
	return next
}

// commit persists the new map and swaps it in; callers hold mu. The swap only
// happens after a successful save so the in-memory view never runs ahead of
// disk.
func (s *IdentityService) commit(ctx context.Context, next map[int64]domain.Identity) error {
	if err := s.store.SaveUsers(next); err != nil {
		return fmt.Errorf("failed to persist identity registry: %w", err)
	}
	s.users = next
	return nil
}
