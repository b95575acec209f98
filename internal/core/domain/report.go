package domain

// RecordAction names the mutation published to report subscribers.
type RecordAction string

const (
	ActionAdded   RecordAction = "ADDED"
	ActionUpdated RecordAction = "UPDATED"
	ActionDeleted RecordAction = "DELETED"
)

// ReportSubscription is one chat's report feed configuration. An unset
// worksheet filter matches every record.
type ReportSubscription struct {
	ChatID        int64  `json:"chatID"`
	SpreadsheetID string `json:"spreadsheetID,omitempty"`
	SheetName     string `json:"sheetName,omitempty"`
	Enabled       bool   `json:"enabled"`
}

// BotConfig is the persisted operational chat configuration.
type BotConfig struct {
	LogChatID   *int64                       `json:"logChatID,omitempty"`
	ReportChats map[int64]ReportSubscription `json:"reportChats"`
}

// Matches reports whether the subscription's filter accepts the record.
func (s ReportSubscription) Matches(r Record) bool {
	if s.SpreadsheetID != "" && s.SpreadsheetID != r.SpreadsheetID {
		return false
	}
	if s.SheetName != "" && s.SheetName != r.SheetName {
		return false
	}
	return true
}
