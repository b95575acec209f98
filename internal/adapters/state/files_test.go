package state_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashbookhq/cashbook-bot/internal/adapters/state"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
)

func newStore(t *testing.T) *state.FileStore {
	t.Helper()
	store, err := state.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestUsersRoundTrip(t *testing.T) {
	store := newStore(t)

	users := map[int64]domain.Identity{
		100: {
			ExternalID:          100,
			DisplayName:         "Ani",
			Role:                domain.RoleWorker,
			Allowed:             true,
			ActiveSpreadsheetID: "S1",
			ActiveSheetName:     "October",
			Reports:             []string{"S1"},
		},
		200: {ExternalID: 200, DisplayName: "Karen", Role: domain.RoleClient},
	}
	require.NoError(t, store.SaveUsers(users))

	loaded, err := store.LoadUsers()
	require.NoError(t, err)
	assert.Equal(t, users, loaded)
}

func TestLoadUsersMissingFile(t *testing.T) {
	store := newStore(t)

	loaded, err := store.LoadUsers()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadUsersIgnoresJunkKeys(t *testing.T) {
	dir := t.TempDir()
	payload := `{"100": {"display_name": "Ani"}, "oops": {"display_name": "ghost"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(payload), 0o644))

	store, err := state.NewFileStore(dir)
	require.NoError(t, err)

	loaded, err := store.LoadUsers()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Ani", loaded[100].DisplayName)
}

func TestAllowedRoundTrip(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.SaveAllowed([]int64{1, 2, 3}))
	loaded, err := store.LoadAllowed()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, loaded)

	require.NoError(t, store.SaveAllowed(nil))
	loaded, err = store.LoadAllowed()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestBotConfigRoundTrip(t *testing.T) {
	store := newStore(t)

	logChat := int64(-100500)
	cfg := domain.BotConfig{
		LogChatID: &logChat,
		ReportChats: map[int64]domain.ReportSubscription{
			-42: {ChatID: -42, SpreadsheetID: "S1", Enabled: true},
		},
	}
	require.NoError(t, store.SaveBotConfig(cfg))

	loaded, err := store.LoadBotConfig()
	require.NoError(t, err)
	require.NotNil(t, loaded.LogChatID)
	assert.Equal(t, logChat, *loaded.LogChatID)
	assert.Equal(t, cfg.ReportChats, loaded.ReportChats)
}

func TestBotConfigMissingFileDefaults(t *testing.T) {
	store := newStore(t)

	loaded, err := store.LoadBotConfig()
	require.NoError(t, err)
	assert.Nil(t, loaded.LogChatID)
	assert.NotNil(t, loaded.ReportChats)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := state.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveAllowed([]int64{7}))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "allowed_users.json", entries[0].Name())
}
