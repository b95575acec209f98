package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// NewSQLiteDB opens the single-file embedded store at path, creating parent
// directories as needed. The connection pool is capped at one open connection:
// sqlite allows a single writer, and serializing all access through one
// connection gives the store's single-writer contract for free.
func NewSQLiteDB(ctx context.Context, path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	log.Println("Successfully opened sqlite database.")
	return db, nil
}

// CloseDB closes the database handle.
func CloseDB(db *sqlx.DB) {
	if db != nil {
		if err := db.Close(); err != nil {
			log.Printf("Error closing sqlite database: %v\n", err)
		}
	}
}
