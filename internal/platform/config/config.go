package config

import (
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	ChatTransportToken string
	AdminIDs           []int64
	SuperAdminID       int64 // 0 when unset

	PaymentsSpreadsheetID      string
	ActiveRecordsSpreadsheetID string

	BackupChatID        int64 // 0 when unset
	BackupIntervalHours float64

	DataDir         string
	CredentialsPath string

	LogLevel string
	LogFile  string

	LogChatID int64 // 0 when unset

	MirrorWorkers          int
	CacheTTLMinutes        int
	GatewayDeadlineSeconds int

	OpsPort string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("CHAT_TRANSPORT_TOKEN", "")
	viper.SetDefault("ADMIN_IDS", "")
	viper.SetDefault("SUPER_ADMIN_ID", 0)
	viper.SetDefault("PAYMENTS_SPREADSHEET_ID", "")
	viper.SetDefault("ACTIVE_RECORDS_SPREADSHEET_ID", "")
	viper.SetDefault("BACKUP_CHAT_ID", 0)
	viper.SetDefault("BACKUP_INTERVAL_HOURS", 24.0)
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("CREDENTIALS_PATH", "credentials.json")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FILE", "")
	viper.SetDefault("LOG_CHAT_ID", 0)
	viper.SetDefault("MIRROR_WORKERS", 4)
	viper.SetDefault("CACHE_TTL_MINUTES", 30)
	viper.SetDefault("GATEWAY_DEADLINE_SECONDS", 10)
	viper.SetDefault("OPS_PORT", "8090")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.ChatTransportToken = viper.GetString("CHAT_TRANSPORT_TOKEN")
	if cfg.ChatTransportToken == "" {
		log.Println("Warning: CHAT_TRANSPORT_TOKEN environment variable not set. Chat notifications will not function.")
	}

	cfg.AdminIDs = parseIDList(viper.GetString("ADMIN_IDS"))
	cfg.SuperAdminID = viper.GetInt64("SUPER_ADMIN_ID")
	if cfg.SuperAdminID == 0 {
		log.Println("Warning: SUPER_ADMIN_ID not set. Role management will be unavailable.")
	}

	cfg.PaymentsSpreadsheetID = viper.GetString("PAYMENTS_SPREADSHEET_ID")
	if cfg.PaymentsSpreadsheetID == "" {
		log.Println("Warning: PAYMENTS_SPREADSHEET_ID not set. Payment mirroring is disabled.")
	}
	cfg.ActiveRecordsSpreadsheetID = viper.GetString("ACTIVE_RECORDS_SPREADSHEET_ID")

	cfg.BackupChatID = viper.GetInt64("BACKUP_CHAT_ID")
	cfg.BackupIntervalHours = viper.GetFloat64("BACKUP_INTERVAL_HOURS")
	if cfg.BackupIntervalHours <= 0 {
		cfg.BackupIntervalHours = 24
		log.Printf("Warning: invalid BACKUP_INTERVAL_HOURS. Defaulting to %v.\n", cfg.BackupIntervalHours)
	}

	cfg.DataDir = viper.GetString("DATA_DIR")
	cfg.CredentialsPath = viper.GetString("CREDENTIALS_PATH")

	cfg.LogLevel = strings.ToLower(viper.GetString("LOG_LEVEL"))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		log.Printf("Warning: unknown LOG_LEVEL %q. Defaulting to info.\n", cfg.LogLevel)
		cfg.LogLevel = "info"
	}
	cfg.LogFile = viper.GetString("LOG_FILE")
	cfg.LogChatID = viper.GetInt64("LOG_CHAT_ID")

	cfg.MirrorWorkers = viper.GetInt("MIRROR_WORKERS")
	if cfg.MirrorWorkers <= 0 {
		cfg.MirrorWorkers = 4
	}
	cfg.CacheTTLMinutes = viper.GetInt("CACHE_TTL_MINUTES")
	if cfg.CacheTTLMinutes <= 0 {
		cfg.CacheTTLMinutes = 30
	}
	cfg.GatewayDeadlineSeconds = viper.GetInt("GATEWAY_DEADLINE_SECONDS")
	if cfg.GatewayDeadlineSeconds <= 0 {
		cfg.GatewayDeadlineSeconds = 10
	}

	cfg.OpsPort = viper.GetString("OPS_PORT")

	return cfg, nil
}

// DatabasePath returns the location of the single-file local store.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "cashbook.db")
}

// parseIDList parses a comma-separated list of integer ids, skipping blanks
// and malformed entries with a warning.
func parseIDList(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("Warning: skipping malformed admin id %q\n", part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
