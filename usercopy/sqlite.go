package usercopy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps user copies in a single sqlite table.
type SQLiteStore struct {
	db     *sql.DB
	prefix string
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path, prefix string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer keeps sqlite from reporting SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, prefix: prefix}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS user_copies (
		key TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create user_copies table: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, subjectID, programID string) (string, bool, error) {
	var code string
	err := s.db.QueryRowContext(ctx,
		`SELECT code FROM user_copies WHERE key = ?`,
		Key(s.prefix, subjectID, programID),
	).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load user copy: %w", err)
	}
	return code, true, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, subjectID, programID, code string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_copies (key, code, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET code = excluded.code, updated_at = excluded.updated_at`,
		Key(s.prefix, subjectID, programID), code,
	)
	if err != nil {
		return fmt.Errorf("failed to save user copy: %w", err)
	}
	return nil
}

// Backend implements Store.
func (*SQLiteStore) Backend() string { return "sqlite" }

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
