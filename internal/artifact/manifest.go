// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// Manifest records what a training run produced.
type Manifest struct {
	// RunID identifies the training run.
	RunID string `json:"run_id"`

	// Dataset names the dataset the run was trained on.
	Dataset string `json:"dataset"`

	// CreatedAt is when the run finished.
	CreatedAt time.Time `json:"created_at"`

	// Rows counts the data that went into the run.
	Rows RowCounts `json:"rows"`

	// Models lists the model names the run saved.
	Models []string `json:"models"`
}

// RowCounts breaks down the dataset rows behind a run.
type RowCounts struct {
	RatingsTrain int `json:"ratings_train"`
	RatingsTest  int `json:"ratings_test"`
	Movies       int `json:"movies"`
}

// WriteManifest writes a run's manifest.json.
func (s *Store) WriteManifest(runID string, m Manifest) error {
	m.RunID = runID
	return s.writeJSONDoc(runID, manifestFile, m)
}

// ReadManifest reads a run's manifest.json. Returns ErrNotFound when
// the run has no manifest.
func (s *Store) ReadManifest(runID string) (*Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.docPath(runID, manifestFile)) //nolint:gosec // path is constructed from the configured run id
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Join(runID, manifestFile))
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse manifest: %v", ErrCorrupt, err)
	}
	return &m, nil
}

// WriteMetrics writes a run's metrics.json from any JSON-marshalable
// value, typically the trainer's evaluation summary.
func (s *Store) WriteMetrics(runID string, v interface{}) error {
	return s.writeJSONDoc(runID, metricsFile, v)
}

// ReadMetrics reads a run's metrics.json as raw JSON for passthrough.
// Returns ErrNotFound when the run has no metrics document.
func (s *Store) ReadMetrics(runID string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.docPath(runID, metricsFile)) //nolint:gosec // path is constructed from the configured run id
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Join(runID, metricsFile))
		}
		return nil, fmt.Errorf("read metrics: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: metrics document is not valid JSON", ErrCorrupt)
	}
	return json.RawMessage(data), nil
}

// WriteReport writes a run's human-readable report.md.
func (s *Store) WriteReport(runID, markdown string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.docPath(runID, reportFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil { //nolint:gosec // 0750 is acceptable for artifact storage
		return fmt.Errorf("create run directory: %w", err)
	}
	if err := writeFileAtomic(path, []byte(markdown)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func (s *Store) writeJSONDoc(runID, filename string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filename, err)
	}
	data = append(data, '\n')

	path := s.docPath(runID, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil { //nolint:gosec // 0750 is acceptable for artifact storage
		return fmt.Errorf("create run directory: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

func (s *Store) docPath(runID, filename string) string {
	return filepath.Join(s.baseDir, runID, filename)
}
