// Package store persists collapsed reaction rates between depletion steps.
// The schema is two tables: one row per collapse run, one row per
// (nuclide, MT) rate within a run.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

type Store struct {
	path string
	db   *sql.DB
}

// Run is the metadata of one collapse invocation.
type Run struct {
	ID          string
	CreatedAt   time.Time
	Library     string
	Method      string
	Temperature float64
	Groups      int
}

// Rate is one collapsed reaction rate.
type Rate struct {
	RunID   string
	Nuclide string
	MT      int
	Value   float64
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Init(ctx context.Context) error {
	if s.path == "" {
		return errors.New("store: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			library TEXT NOT NULL,
			method TEXT NOT NULL,
			temperature REAL NOT NULL,
			ngroups INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS rates (
			run_id TEXT NOT NULL REFERENCES runs(id),
			nuclide TEXT NOT NULL,
			mt INTEGER NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (run_id, nuclide, mt)
		);
	`)
	return err
}

// SaveRun writes one run and its rates in a single transaction, returning
// the generated run id.
func (s *Store) SaveRun(ctx context.Context, run Run, rates []Rate) (string, error) {
	if s.db == nil {
		return "", errors.New("store: not initialized")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, library, method, temperature, ngroups)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt.Format(time.RFC3339Nano), run.Library, run.Method,
		run.Temperature, run.Groups)
	if err != nil {
		return "", err
	}

	for _, r := range rates {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO rates (run_id, nuclide, mt, value)
			VALUES (?, ?, ?, ?)
		`, run.ID, r.Nuclide, r.MT, r.Value)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	if s.db == nil {
		return nil, errors.New("store: not initialized")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, library, method, temperature, ngroups
		FROM runs ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &created, &r.Library, &r.Method, &r.Temperature, &r.Groups); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RatesForRun returns the rates stored for one run.
func (s *Store) RatesForRun(ctx context.Context, runID string) ([]Rate, error) {
	if s.db == nil {
		return nil, errors.New("store: not initialized")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, nuclide, mt, value FROM rates
		WHERE run_id = ? ORDER BY nuclide, mt
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []Rate
	for rows.Next() {
		var r Rate
		if err := rows.Scan(&r.RunID, &r.Nuclide, &r.MT, &r.Value); err != nil {
			return nil, err
		}
		rates = append(rates, r)
	}
	return rates, rows.Err()
}
