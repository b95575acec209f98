package domain

// Identity maps an external chat-transport user id to a role and display name.
// The registry owns identity state; coordinators only read it.
type Identity struct {
	ExternalID  int64  `json:"externalID"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
	// Allowed is distinct from Role: a user may be known but not allowed to
	// perform any write operation.
	Allowed bool `json:"allowed"`

	// Per-user chat session state persisted alongside the identity.
	ActiveSpreadsheetID string   `json:"activeSpreadsheetID,omitempty"`
	ActiveSheetName     string   `json:"activeSheetName,omitempty"`
	Language            string   `json:"language,omitempty"`
	Reports             []string `json:"reports,omitempty"` // record ids submitted by this user
}
