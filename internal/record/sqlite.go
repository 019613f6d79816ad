package record

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// SQLite driver, registered for database/sql.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
)

// SQLite records samples into a SQLite database, batching inserts so
// long runs do not pay one transaction per sample. Each recorder gets a
// fresh xid run identifier, so several runs can share one database.
type SQLite struct {
	db    *sql.DB
	runID string
	batch []hybrid.Sample
	size  int
}

// NewSQLite opens (or creates) the database at path and registers the
// run. Close flushes the remaining batch.
func NewSQLite(path, model string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("record: open %s: %w", path, err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	model TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS samples (
	run_id TEXT NOT NULL,
	t REAL NOT NULL,
	event INTEGER NOT NULL,
	y TEXT NOT NULL,
	z TEXT NOT NULL,
	u TEXT
);
CREATE INDEX IF NOT EXISTS samples_run ON samples (run_id, t);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("record: create schema: %w", err)
	}

	runID := xid.New().String()
	if _, err := db.Exec(
		`INSERT INTO runs (id, model, created_at) VALUES (?, ?, ?)`,
		runID, model, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("record: register run: %w", err)
	}

	return &SQLite{db: db, runID: runID, size: 4096}, nil
}

// RunID returns the identifier assigned to this run.
func (r *SQLite) RunID() string { return r.runID }

func (r *SQLite) Record(s hybrid.Sample) error {
	r.batch = append(r.batch, s)
	if len(r.batch) >= r.size {
		return r.Flush()
	}
	return nil
}

// Flush writes the buffered samples in one transaction.
func (r *SQLite) Flush() error {
	if len(r.batch) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("record: begin: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO samples (run_id, t, event, y, z, u) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("record: prepare: %w", err)
	}
	defer stmt.Close()

	for _, s := range r.batch {
		yj, _ := json.Marshal([]float64(s.Y))
		zj, _ := json.Marshal([]float64(s.Z))
		uj, _ := json.Marshal([]float64(s.U))
		ev := 0
		if s.Event {
			ev = 1
		}
		if _, err := stmt.Exec(r.runID, s.T, ev, string(yj), string(zj), string(uj)); err != nil {
			tx.Rollback()
			return fmt.Errorf("record: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record: commit: %w", err)
	}
	r.batch = r.batch[:0]
	return nil
}

// Close flushes and releases the database handle.
func (r *SQLite) Close() error {
	if err := r.Flush(); err != nil {
		r.db.Close()
		return err
	}
	return r.db.Close()
}
