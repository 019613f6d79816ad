package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/xid"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
	"github.com/RenardDesNeiges/hopsim/internal/record"
)

// Store keeps finished runs on disk, one directory per run with a
// metadata.json and a samples.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Timestamp  time.Time `json:"timestamp"`
	Integrator string    `json:"integrator"`
	TOut       float64   `json:"t_out"` // -1 means the time budget ran out
	Jumps      int       `json:"jumps"`
	Steps      int       `json:"steps"`
	Evals      int       `json:"evals"`
}

func (s *Store) Save(model, integrator string, res *hybrid.Result, tr *record.Trajectory) (string, error) {
	runID := fmt.Sprintf("%s_%s", model, xid.New().String())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      model,
		Timestamp:  time.Now(),
		Integrator: integrator,
		TOut:       res.T,
		Jumps:      res.Jumps,
		Steps:      res.Steps,
		Evals:      res.Evals,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if tr == nil || tr.Len() == 0 {
		return runID, nil
	}

	first := tr.Samples[0]
	header := []string{"time", "event"}
	for i := range first.Y {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	for i := range first.Z {
		header = append(header, fmt.Sprintf("z%d", i))
	}
	for i := range first.U {
		header = append(header, fmt.Sprintf("u%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, sample := range tr.Samples {
		row := []string{strconv.FormatFloat(sample.T, 'g', 12, 64)}
		if sample.Event {
			row = append(row, "1")
		} else {
			row = append(row, "0")
		}
		for _, v := range sample.Y {
			row = append(row, strconv.FormatFloat(v, 'g', 12, 64))
		}
		for _, v := range sample.Z {
			row = append(row, strconv.FormatFloat(v, 'g', 12, 64))
		}
		for _, v := range sample.U {
			row = append(row, strconv.FormatFloat(v, 'g', 12, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads a stored run back into a trajectory, rebuilding
// the continuous, discrete, and input vectors from the header layout.
func (s *Store) LoadSamples(runID string) (*record.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return record.NewTrajectory(), nil
	}

	// Column counts per vector from the header prefixes.
	nY, nZ, nU := 0, 0, 0
	for _, col := range records[0] {
		if len(col) < 2 {
			continue
		}
		switch col[0] {
		case 'y':
			nY++
		case 'z':
			nZ++
		case 'u':
			nU++
		}
	}

	tr := record.NewTrajectory()
	for _, row := range records[1:] {
		if len(row) < 2+nY {
			continue
		}
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			continue
		}

		vals := make([]float64, 0, len(row)-2)
		for _, cell := range row[2:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				break
			}
			vals = append(vals, v)
		}
		if len(vals) < nY {
			continue
		}

		sample := hybrid.Sample{T: t, Event: row[1] == "1"}
		sample.Y = append(hybrid.State(nil), vals[:nY]...)
		if len(vals) >= nY+nZ {
			sample.Z = append(hybrid.Discrete(nil), vals[nY:nY+nZ]...)
		}
		if nU > 0 && len(vals) >= nY+nZ+nU {
			sample.U = append(hybrid.Input(nil), vals[nY+nZ:nY+nZ+nU]...)
		}
		tr.Samples = append(tr.Samples, sample)
	}
	return tr, nil
}
