package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied on every start. CREATE IF NOT EXISTS keeps the pass
// idempotent; the legacy user_id probe below covers stores created before the
// column existed.
const schema = `
CREATE TABLE IF NOT EXISTS records (
    id             TEXT PRIMARY KEY,
    date           TEXT NOT NULL DEFAULT '',
    supplier       TEXT NOT NULL,
    direction      TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    amount         TEXT NOT NULL DEFAULT '0',
    spreadsheet_id TEXT NOT NULL DEFAULT '',
    sheet_name     TEXT NOT NULL DEFAULT '',
    user_id        INTEGER,
    created_at     TIMESTAMP NOT NULL,
    updated_at     TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_date ON records(date);
CREATE INDEX IF NOT EXISTS idx_records_supplier ON records(supplier);

CREATE TABLE IF NOT EXISTS payments (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    user_display_name TEXT NOT NULL,
    amount            TEXT NOT NULL,
    date_from         TEXT,
    date_to           TEXT,
    comment           TEXT NOT NULL DEFAULT '',
    spreadsheet_id    TEXT,
    sheet_name        TEXT,
    role              TEXT NOT NULL,
    created_at        TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payments_recipient_created
    ON payments(user_display_name, created_at DESC);
`

// EnsureSchema creates both tables and their indexes, then backfills the
// user_id column on stores that predate it. Safe to run on every start.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	hasUserID, err := columnExists(ctx, db, "records", "user_id")
	if err != nil {
		return err
	}
	if !hasUserID {
		if _, err := db.ExecContext(ctx, `ALTER TABLE records ADD COLUMN user_id INTEGER`); err != nil {
			return fmt.Errorf("failed to add user_id column: %w", err)
		}
	}
	return nil
}

func columnExists(ctx context.Context, db *sqlx.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s columns: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
