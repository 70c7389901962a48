package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// RepositoryConfig holds shared dependencies for all sqlite repositories
type RepositoryConfig struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// Open initializes the local workspace database at dataDir/inkwell.db.
// The dataDir parameter allows tests to use t.TempDir().
func Open(dataDir string) (*sql.DB, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	// Pragmas in the connection string apply to all pooled connections
	dbPath := filepath.Join(dataDir, "inkwell.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Restrict permissions after the file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := userVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: initial schema
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS folders (
		  id         TEXT PRIMARY KEY,
		  parent_id  TEXT REFERENCES folders(id),
		  name       TEXT NOT NULL,
		  created_at TEXT NOT NULL,
		  updated_at TEXT NOT NULL,
		  deleted_at TEXT
		);

		CREATE TABLE IF NOT EXISTS documents (
		  id         TEXT PRIMARY KEY,
		  folder_id  TEXT REFERENCES folders(id),
		  name       TEXT NOT NULL,
		  content    TEXT NOT NULL,
		  kind       TEXT NOT NULL DEFAULT 'text',
		  created_at TEXT NOT NULL,
		  updated_at TEXT NOT NULL,
		  deleted_at TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_documents_folder
		ON documents(folder_id)
		WHERE deleted_at IS NULL;

		CREATE TABLE IF NOT EXISTS history_entries (
		  document_id   TEXT PRIMARY KEY,
		  snapshots     TEXT NOT NULL,
		  current_index INTEGER NOT NULL,
		  updated_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS chat_messages (
		  id              TEXT PRIMARY KEY,
		  sender          TEXT NOT NULL,
		  text            TEXT NOT NULL,
		  timestamp       TEXT NOT NULL,
		  attachment      BLOB,
		  attachment_mime TEXT,
		  preview_ref     TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_chat_messages_timestamp
		ON chat_messages(timestamp);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("apply schema v1: %w", err)
		}
		if err := setUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// userVersion reads PRAGMA user_version.
func userVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}

// setUserVersion writes PRAGMA user_version.
func setUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
