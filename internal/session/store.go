// Package session persists small user-scoped flags across restarts. When the
// database cannot be opened (read-only home, quota), the store degrades to an
// in-memory map so reads always succeed with defaults.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	KeyOnboardingComplete = "onboarding_complete"
	KeyTheme              = "theme"
	KeyLastChatSession    = "last_chat_session"
	KeySidebarExpanded    = "sidebar_expanded"
	KeyLastRoute          = "last_route"
)

type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	mem map[string]string
}

// Open returns a store backed by sqlite at path, or an in-memory store when
// the database is unavailable. The error reports why persistence degraded;
// the returned store is always usable.
func Open(ctx context.Context, path string) (*Store, error) {
	s := &Store{mem: map[string]string{}}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return s, fmt.Errorf("create state dir: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return s, fmt.Errorf("open session db: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return s, fmt.Errorf("migrate session db: %w", err)
	}
	s.db = db
	return s, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS flags (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`)
	return err
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// GetString returns the stored value or def when absent or unreadable.
func (s *Store) GetString(ctx context.Context, key, def string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		if v, ok := s.mem[key]; ok {
			return v
		}
		return def
	}
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM flags WHERE key = ?`, key).Scan(&v)
	if err != nil {
		// The memory copy also covers keys whose write-through failed: the
		// row is absent but the value must still hold for this process.
		if mv, ok := s.mem[key]; ok {
			return mv
		}
		return def
	}
	return v
}

// SetString writes through to sqlite when available and always updates the
// in-memory copy, so a failed write still holds for this process.
func (s *Store) SetString(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem[key] = value
	if s.db == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flags(key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	if err != nil {
		return fmt.Errorf("persist flag %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetBool(ctx context.Context, key string, def bool) bool {
	v := s.GetString(ctx, key, strconv.FormatBool(def))
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func (s *Store) SetBool(ctx context.Context, key string, value bool) error {
	return s.SetString(ctx, key, strconv.FormatBool(value))
}
