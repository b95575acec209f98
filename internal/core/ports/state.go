package ports

import "github.com/cashbookhq/cashbook-bot/internal/core/domain"

// IdentityStateStore persists the identity registry's state files. All writes
// are atomic (write-temp-then-rename).
type IdentityStateStore interface {
	LoadUsers() (map[int64]domain.Identity, error)
	SaveUsers(users map[int64]domain.Identity) error
	LoadAllowed() ([]int64, error)
	SaveAllowed(ids []int64) error
}

// BotConfigStore persists the operational chat configuration (log chat,
// report subscriptions).
type BotConfigStore interface {
	LoadBotConfig() (domain.BotConfig, error)
	SaveBotConfig(cfg domain.BotConfig) error
}
