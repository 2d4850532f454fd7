package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the preference database at path
// and brings its schema up to date.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		path = "portfolio.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s: %w", path, err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	createTable := `
	CREATE TABLE IF NOT EXISTS preferences (
		hashed_visitor TEXT NOT NULL,  -- never the raw cookie id
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (hashed_visitor, key)
	)`
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("creating preferences table: %w", err)
	}

	// Tables from before retention tracking lack updated_at.
	var columnExists int
	checkColumn := `SELECT COUNT(*) FROM pragma_table_info('preferences') WHERE name='updated_at'`
	if err := s.db.QueryRowContext(ctx, checkColumn).Scan(&columnExists); err != nil {
		return fmt.Errorf("inspecting preferences table: %w", err)
	}
	if columnExists == 0 {
		log.Println("prefs: adding updated_at to preferences table")
		if _, err := s.db.ExecContext(ctx, `ALTER TABLE preferences ADD COLUMN updated_at DATETIME`); err != nil {
			return fmt.Errorf("adding updated_at: %w", err)
		}
	}

	res, err := s.db.ExecContext(ctx, `UPDATE preferences SET updated_at = CURRENT_TIMESTAMP WHERE updated_at IS NULL`)
	if err != nil {
		return fmt.Errorf("backfilling updated_at: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("prefs: backfilled updated_at on %d preferences", n)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, visitor, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE hashed_visitor = ? AND key = ?`,
		visitor, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, visitor, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (hashed_visitor, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (hashed_visitor, key)
		DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, visitor, key, value)
	if err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Cleanup(ctx context.Context, months int) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM preferences
		WHERE updated_at < datetime('now', ?)
	`, fmt.Sprintf("-%d months", months))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *SQLite) Close() error { return s.db.Close() }
