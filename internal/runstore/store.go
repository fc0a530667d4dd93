// Package runstore persists headless run summaries in sqlite.
package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

var ErrNotInitialized = errors.New("runstore: not initialized")

// Run is one headless run's summary.
type Run struct {
	ID            string
	Seed          int64
	Ticks         int
	Dissolutions  int
	Catches       int
	Launches      int
	Fallbacks     int
	FinishedPaths int
	CreatedAt     time.Time
}

type Store struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// New returns a store for the sqlite file at path. Call Init before use.
func New(path string) *Store {
	return &Store{path: path}
}

// Init opens the database and creates the schema. Calling it twice is a no-op.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("runstore: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("runstore: open %s: %w", s.path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("runstore: ping %s: %w", s.path, err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("runstore: schema: %w", err)
	}
	s.db = db
	return nil
}

// SaveRun inserts r and returns it with ID and CreatedAt filled in when they
// were empty.
func (s *Store) SaveRun(ctx context.Context, r Run) (Run, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, seed, ticks, dissolutions, catches, launches, fallbacks, finished_paths, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Seed, r.Ticks, r.Dissolutions, r.Catches, r.Launches, r.Fallbacks, r.FinishedPaths, r.CreatedAt.UnixNano())
	if err != nil {
		return Run{}, fmt.Errorf("runstore: save %s: %w", r.ID, err)
	}
	return r, nil
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, seed, ticks, dissolutions, catches, launches, fallbacks, finished_paths, created_at
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("runstore: list: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			created int64
		)
		if err := rows.Scan(&r.ID, &r.Seed, &r.Ticks, &r.Dissolutions, &r.Catches, &r.Launches, &r.Fallbacks, &r.FinishedPaths, &created); err != nil {
			return nil, fmt.Errorf("runstore: scan: %w", err)
		}
		r.CreatedAt = time.Unix(0, created).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
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

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			dissolutions INTEGER NOT NULL,
			catches INTEGER NOT NULL,
			launches INTEGER NOT NULL,
			fallbacks INTEGER NOT NULL,
			finished_paths INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);
	`)
	return err
}
