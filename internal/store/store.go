package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/physlab/internal/engine"
	"github.com/san-kum/physlab/internal/scene"
)

// Trace is a recorded run: one row per frame of diagnostics plus every
// object's position.
type Trace struct {
	Handles []scene.Handle
	Times   []float64
	Kinetic []float64
	Elastic []float64
	Frames  [][]engine.ObjectState
}

// Record appends one frame.
func (tr *Trace) Record(d engine.Diagnostics, snap []engine.ObjectState) {
	if tr.Handles == nil {
		for _, st := range snap {
			tr.Handles = append(tr.Handles, st.Handle)
		}
	}
	tr.Times = append(tr.Times, d.SimTime)
	tr.Kinetic = append(tr.Kinetic, d.Kinetic)
	tr.Elastic = append(tr.Elastic, d.Elastic)
	tr.Frames = append(tr.Frames, snap)
}

// RunMetadata describes a stored run.
type RunMetadata struct {
	ID        string    `json:"id"`
	SceneName string    `json:"scene"`
	Timestamp time.Time `json:"timestamp"`
	Dt        float64   `json:"dt"`
	Duration  float64   `json:"duration"`
	Steps     int       `json:"steps"`
	Objects   int       `json:"objects"`
}

// Store keeps recorded runs under a base directory, one directory per
// run with metadata.json, scene.yaml and trace.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Save(sceneName string, cfg engine.Config, desc scene.Description, tr *Trace) (string, error) {
	runID := fmt.Sprintf("%s_%d", sceneName, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	var duration float64
	if len(tr.Times) > 0 {
		duration = tr.Times[len(tr.Times)-1]
	}
	meta := RunMetadata{
		ID:        runID,
		SceneName: sceneName,
		Timestamp: time.Now(),
		Dt:        cfg.Dt,
		Duration:  duration,
		Steps:     len(tr.Times),
		Objects:   len(tr.Handles),
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

	sceneData, err := scene.Marshal(desc)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, "scene.yaml"), sceneData, 0644); err != nil {
		return "", err
	}

	return runID, s.writeTrace(filepath.Join(runDir, "trace.csv"), tr)
}

func (s *Store) writeTrace(path string, tr *Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"time", "kinetic", "elastic"}
	for _, h := range tr.Handles {
		header = append(header,
			fmt.Sprintf("h%d_x", h),
			fmt.Sprintf("h%d_y", h))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for i := range tr.Times {
		row := []string{ff(tr.Times[i]), ff(tr.Kinetic[i]), ff(tr.Elastic[i])}
		// Rows stay keyed to the header columns: objects removed
		// mid-run leave NaN cells instead of shifting later columns.
		byHandle := make(map[scene.Handle]engine.ObjectState, len(tr.Frames[i]))
		for _, st := range tr.Frames[i] {
			byHandle[st.Handle] = st
		}
		for _, h := range tr.Handles {
			if st, ok := byHandle[h]; ok {
				row = append(row, ff(st.Pos.X), ff(st.Pos.Y))
			} else {
				row = append(row, "NaN", "NaN")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
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

// LoadScene reads the scene description stored with a run.
func (s *Store) LoadScene(runID string) (scene.Description, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "scene.yaml"))
	if err != nil {
		return scene.Description{}, err
	}
	return scene.Unmarshal(data)
}

// LoadTrace reads trace.csv back as columns: times plus the named
// series from the header (kinetic, elastic, per-object coordinates).
func (s *Store) LoadTrace(runID string) (times []float64, series map[string][]float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, map[string][]float64{}, nil
	}

	header := records[0]
	series = make(map[string][]float64, len(header)-1)
	for i := 1; i < len(records); i++ {
		for j, cell := range records[i] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("trace row %d: %w", i, err)
			}
			if j == 0 {
				times = append(times, v)
			} else {
				series[header[j]] = append(series[header[j]], v)
			}
		}
	}
	return times, series, nil
}
