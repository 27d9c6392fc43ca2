// Package localstore is the on-device fallback copy of the categories,
// kept in a small SQLite key/value table.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
	"github.com/hammamikhairi/parlons/internal/store"
)

// CategoriesKey is the key the category document is stored under.
const CategoriesKey = "french_app_categories_v1"

// Compile-time interface check.
var _ domain.CategoryCache = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

// Store is a SQLite-backed key/value store.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// Open opens (creating if needed) the database at path.
func Open(path string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// Single user, single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	log.Debug("localstore: opened %s", path)
	return &Store{db: db, log: log}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the raw value for key. ok is false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Load returns the stored categories, or the built-in set when nothing is
// stored or the stored document cannot be read.
func (s *Store) Load(ctx context.Context) []domain.Category {
	raw, ok, err := s.Get(ctx, CategoriesKey)
	if err != nil {
		s.log.Warn("localstore: %v, using built-in categories", err)
		return store.Defaults()
	}
	if !ok {
		return store.Defaults()
	}

	var cats []domain.Category
	if err := json.Unmarshal([]byte(raw), &cats); err != nil {
		s.log.Warn("localstore: stored categories unreadable, using built-in set: %v", err)
		return store.Defaults()
	}
	return cats
}

// Save stores cats. Failures are logged, never returned.
func (s *Store) Save(ctx context.Context, cats []domain.Category) {
	data, err := json.Marshal(cats)
	if err != nil {
		s.log.Error("localstore: encoding categories: %v", err)
		return
	}
	if err := s.Set(ctx, CategoriesKey, string(data)); err != nil {
		s.log.Error("localstore: saving categories: %v", err)
		return
	}
	s.log.Debug("localstore: saved %d categories", len(cats))
}
