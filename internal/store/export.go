package store

import (
	"encoding/json"
	"io"
)

// ExportData is the full JSON export of a recorded run: metadata plus
// every sampled series, keyed the way the trace csv is headed.
type ExportData struct {
	RunMetadata
	Times  []float64            `json:"times"`
	Series map[string][]float64 `json:"series"`
}

// ExportJSON writes a complete run as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	times, series, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{
		RunMetadata: *meta,
		Times:       times,
		Series:      series,
	})
}
