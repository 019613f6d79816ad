package record

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
)

func TestSQLite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	rec, err := NewSQLite(path, "slip")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	samples := []hybrid.Sample{
		{T: 0, Y: hybrid.State{1, 0}, Z: hybrid.Discrete{0}},
		{T: 0.45, Y: hybrid.State{0, -4.4}, Z: hybrid.Discrete{1}, Event: true},
		{T: 0.5, Y: hybrid.State{0.1, 2.1}, Z: hybrid.Discrete{1}},
	}
	for _, s := range samples {
		if err := rec.Record(s); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	if rec.RunID() == "" {
		t.Error("empty run identifier")
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM samples WHERE run_id = ?`, rec.RunID()).Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("stored %d samples, want 3", n)
	}

	var events int
	if err := db.QueryRow(`SELECT COUNT(*) FROM samples WHERE run_id = ? AND event = 1`, rec.RunID()).Scan(&events); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if events != 1 {
		t.Errorf("stored %d event samples, want 1", events)
	}

	var model string
	if err := db.QueryRow(`SELECT model FROM runs WHERE id = ?`, rec.RunID()).Scan(&model); err != nil {
		t.Fatalf("run lookup failed: %v", err)
	}
	if model != "slip" {
		t.Errorf("model = %q, want slip", model)
	}
}

func TestSQLite_TwoRunsShareOneDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	first, err := NewSQLite(path, "slip")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	first.Record(hybrid.Sample{T: 0, Y: hybrid.State{1}})
	if err := first.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	second, err := NewSQLite(path, "bouncer")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	second.Record(hybrid.Sample{T: 0, Y: hybrid.State{2}})
	if err := second.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if first.RunID() == second.RunID() {
		t.Error("runs share an identifier")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("registered %d runs, want 2", n)
	}
}
