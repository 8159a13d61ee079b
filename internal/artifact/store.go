// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package artifact

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/marekv42/reelrank/internal/recommend"
)

// Model and document filenames inside a run directory.
const (
	modelsDirName  = "models"
	popularityFile = "popularity.gob.gz"
	contentFile    = "content_tfidf.gob.gz"
	manifestFile   = "manifest.json"
	metricsFile    = "metrics.json"
	reportFile     = "report.md"
)

// Model names as they appear in metadata, manifests, and metrics labels.
const (
	PopularityModelName = "popularity"
	ContentModelName    = "content_tfidf"
)

var (
	// ErrNotFound reports that a requested artifact does not exist.
	// The serving layer distinguishes a missing optional model from
	// a broken one by checking for this error.
	ErrNotFound = errors.New("artifact not found")

	// ErrCorrupt reports that an artifact exists but failed checksum
	// verification or decoding.
	ErrCorrupt = errors.New("artifact corrupt")
)

// ModelMetadata describes a stored model.
type ModelMetadata struct {
	// Name is the model name ("popularity" or "content_tfidf").
	Name string `json:"name"`

	// RunID identifies the training run that produced the model.
	RunID string `json:"run_id"`

	// TrainedAt is when training finished.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was written to disk.
	SavedAt time.Time `json:"saved_at"`

	// RatingCount is the number of ratings used for training.
	RatingCount int `json:"rating_count"`

	// ItemCount is the number of items the model covers.
	ItemCount int `json:"item_count"`

	// Checksum is the SHA-256 of the uncompressed model bytes.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size on disk.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long training took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// envelope is the on-disk format for model files: metadata plus the
// gzip-compressed gob encoding of the model state.
type envelope struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Store reads and writes training run artifacts under a base directory.
// Each run owns a subdirectory:
//
//	{base}/{run_id}/models/popularity.gob.gz
//	{base}/{run_id}/models/content_tfidf.gob.gz
//	{base}/{run_id}/manifest.json
//	{base}/{run_id}/metrics.json
//	{base}/{run_id}/report.md
//
// Every write lands in a temp file first and is renamed into place, so
// a reader never observes a partially written artifact.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates a store rooted at baseDir, creating the directory
// if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for artifact storage
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// RunDir returns the directory holding a run's artifacts.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// SavePopularity stores the popularity model for a run.
func (s *Store) SavePopularity(ctx context.Context, runID string, m *recommend.PopularityModel, meta ModelMetadata) error {
	meta.Name = PopularityModelName
	return s.saveModel(ctx, runID, popularityFile, m, meta)
}

// SaveContent stores the content model for a run.
func (s *Store) SaveContent(ctx context.Context, runID string, m *recommend.ContentModel, meta ModelMetadata) error {
	meta.Name = ContentModelName
	return s.saveModel(ctx, runID, contentFile, m, meta)
}

// LoadPopularity loads a run's popularity model. Returns ErrNotFound
// when the run has no popularity artifact.
func (s *Store) LoadPopularity(ctx context.Context, runID string) (*recommend.PopularityModel, *ModelMetadata, error) {
	var m recommend.PopularityModel
	meta, err := s.loadModel(ctx, runID, popularityFile, &m)
	if err != nil {
		return nil, nil, err
	}
	return &m, meta, nil
}

// LoadContent loads a run's content model. Returns ErrNotFound when the
// run was trained without one.
func (s *Store) LoadContent(ctx context.Context, runID string) (*recommend.ContentModel, *ModelMetadata, error) {
	var m recommend.ContentModel
	meta, err := s.loadModel(ctx, runID, contentFile, &m)
	if err != nil {
		return nil, nil, err
	}
	return &m, meta, nil
}

// HasContent reports whether a content model artifact exists for the
// run, without decoding it.
func (s *Store) HasContent(runID string) bool {
	_, err := os.Stat(s.modelPath(runID, contentFile))
	return err == nil
}

func (s *Store) saveModel(_ context.Context, runID, filename string, data interface{}, meta ModelMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.RunID = runID
	meta.SavedAt = time.Now().UTC()
	meta.SizeBytes = int64(compressed.Len())

	var file bytes.Buffer
	if err := gob.NewEncoder(&file).Encode(envelope{
		Metadata:       meta,
		CompressedData: compressed.Bytes(),
	}); err != nil {
		return fmt.Errorf("encode model file: %w", err)
	}

	path := s.modelPath(runID, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil { //nolint:gosec // 0750 is acceptable for artifact storage
		return fmt.Errorf("create models directory: %w", err)
	}
	if err := writeFileAtomic(path, file.Bytes()); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}
	return nil
}

func (s *Store) loadModel(_ context.Context, runID, filename string, target interface{}) (*ModelMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.modelPath(runID, filename)
	f, err := os.Open(path) //nolint:gosec // path is constructed from the configured run id
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Join(runID, modelsDirName, filename))
		}
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var env envelope
	if err := gob.NewDecoder(f).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: read model file: %v", ErrCorrupt, err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(env.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("%w: decompress model: %v", ErrCorrupt, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("%w: read decompressed data: %v", ErrCorrupt, err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != env.Metadata.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch: expected %s, got %s",
			ErrCorrupt, env.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(target); err != nil {
		return nil, fmt.Errorf("%w: decode model: %v", ErrCorrupt, err)
	}
	return &env.Metadata, nil
}

func (s *Store) modelPath(runID, filename string) string {
	return filepath.Join(s.baseDir, runID, modelsDirName, filename)
}

// writeFileAtomic writes data to a temp file in the target directory
// and renames it into place. The temp file is removed on failure.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		_ = os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup of temp file
		return fmt.Errorf("write temp file: %w", writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup of temp file
		return fmt.Errorf("close temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup of temp file
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
