// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package artifact

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marekv42/reelrank/internal/catalog"
	"github.com/marekv42/reelrank/internal/recommend"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func popularityFixture() *recommend.PopularityModel {
	return &recommend.PopularityModel{
		Ranked: []recommend.Rec{
			{MovieID: 318, Score: 4.3},
			{MovieID: 296, Score: 4.2},
			{MovieID: 2959, Score: 4.1},
		},
	}
}

func contentModelFixture() *recommend.ContentModel {
	return recommend.TrainContent([]catalog.Item{
		{ID: 1, Title: "Toy Story (1995)", Genres: "Adventure|Children"},
		{ID: 3114, Title: "Toy Story 2 (1999)", Genres: "Adventure|Children"},
	})
}

// =============================================================================
// Model round trips
// =============================================================================

func TestStore_SaveLoadPopularity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	trained := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	err := s.SavePopularity(ctx, "run1", popularityFixture(), ModelMetadata{
		TrainedAt:          trained,
		RatingCount:        100836,
		ItemCount:          3,
		TrainingDurationMS: 412,
	})
	if err != nil {
		t.Fatalf("SavePopularity: %v", err)
	}

	m, meta, err := s.LoadPopularity(ctx, "run1")
	if err != nil {
		t.Fatalf("LoadPopularity: %v", err)
	}

	if m.Len() != 3 {
		t.Errorf("loaded model Len() = %d, want 3", m.Len())
	}
	if m.Ranked[0].MovieID != 318 {
		t.Errorf("top ranked movie = %d, want 318", m.Ranked[0].MovieID)
	}

	if meta.Name != PopularityModelName {
		t.Errorf("metadata name = %q, want %q", meta.Name, PopularityModelName)
	}
	if meta.RunID != "run1" {
		t.Errorf("metadata run id = %q, want %q", meta.RunID, "run1")
	}
	if !meta.TrainedAt.Equal(trained) {
		t.Errorf("trained at = %v, want %v", meta.TrainedAt, trained)
	}
	if meta.RatingCount != 100836 {
		t.Errorf("rating count = %d, want 100836", meta.RatingCount)
	}
	if meta.Checksum == "" {
		t.Error("checksum not populated")
	}
	if meta.SizeBytes <= 0 {
		t.Errorf("size bytes = %d, want > 0", meta.SizeBytes)
	}
	if meta.SavedAt.IsZero() {
		t.Error("saved at not populated")
	}
}

func TestStore_SaveLoadContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveContent(ctx, "run1", contentModelFixture(), ModelMetadata{ItemCount: 2}); err != nil {
		t.Fatalf("SaveContent: %v", err)
	}

	m, meta, err := s.LoadContent(ctx, "run1")
	if err != nil {
		t.Fatalf("LoadContent: %v", err)
	}
	if meta.Name != ContentModelName {
		t.Errorf("metadata name = %q, want %q", meta.Name, ContentModelName)
	}
	if m.Len() != 2 {
		t.Errorf("loaded model Len() = %d, want 2", m.Len())
	}

	// The decoded model must serve queries without retraining.
	similar := m.SimilarItems(1, 1)
	if len(similar) != 1 || similar[0].MovieID != 3114 {
		t.Errorf("SimilarItems after load = %v, want movie 3114", similar)
	}
}

func TestStore_OverwriteReplacesModel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &recommend.PopularityModel{Ranked: []recommend.Rec{{MovieID: 1, Score: 1}}}
	second := &recommend.PopularityModel{Ranked: []recommend.Rec{{MovieID: 2, Score: 2}}}

	if err := s.SavePopularity(ctx, "run1", first, ModelMetadata{}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.SavePopularity(ctx, "run1", second, ModelMetadata{}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	m, _, err := s.LoadPopularity(ctx, "run1")
	if err != nil {
		t.Fatalf("LoadPopularity: %v", err)
	}
	if m.Ranked[0].MovieID != 2 {
		t.Errorf("loaded movie = %d, want 2 (the later save)", m.Ranked[0].MovieID)
	}
}

// =============================================================================
// Failure modes
// =============================================================================

func TestStore_LoadMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, _, err := s.LoadPopularity(ctx, "nosuchrun"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadPopularity on missing run = %v, want ErrNotFound", err)
	}
	if _, _, err := s.LoadContent(ctx, "nosuchrun"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadContent on missing run = %v, want ErrNotFound", err)
	}

	// A run with only a popularity model reports the content model
	// as not found, not as corrupt.
	if err := s.SavePopularity(ctx, "run1", popularityFixture(), ModelMetadata{}); err != nil {
		t.Fatalf("SavePopularity: %v", err)
	}
	if _, _, err := s.LoadContent(ctx, "run1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadContent without artifact = %v, want ErrNotFound", err)
	}
}

func TestStore_LoadGarbageFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	path := s.modelPath("run1", popularityFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("not a model"), 0o600); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	_, _, err := s.LoadPopularity(ctx, "run1")
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("LoadPopularity on garbage = %v, want ErrCorrupt", err)
	}
}

func TestStore_ChecksumMismatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SavePopularity(ctx, "run1", popularityFixture(), ModelMetadata{}); err != nil {
		t.Fatalf("SavePopularity: %v", err)
	}

	// Rewrite the envelope with a forged checksum.
	path := s.modelPath("run1", popularityFile)
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var env envelope
	if err := gob.NewDecoder(f).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	_ = f.Close()

	env.Metadata.Checksum = strings.Repeat("0", 64)
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		t.Fatalf("encode envelope: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	_, _, err = s.LoadPopularity(ctx, "run1")
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("LoadPopularity with bad checksum = %v, want ErrCorrupt", err)
	}
}

func TestStore_NoTempFilesLeftBehind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SavePopularity(ctx, "run1", popularityFixture(), ModelMetadata{}); err != nil {
		t.Fatalf("SavePopularity: %v", err)
	}
	if err := s.WriteManifest("run1", Manifest{Dataset: "movielens-latest-small"}); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	var leftovers []string
	err := filepath.WalkDir(s.RunDir("run1"), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.Contains(d.Name(), ".tmp-") {
			leftovers = append(leftovers, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

// =============================================================================
// Content presence
// =============================================================================

func TestStore_HasContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if s.HasContent("run1") {
		t.Error("HasContent before save = true, want false")
	}
	if err := s.SaveContent(ctx, "run1", contentModelFixture(), ModelMetadata{}); err != nil {
		t.Fatalf("SaveContent: %v", err)
	}
	if !s.HasContent("run1") {
		t.Error("HasContent after save = false, want true")
	}
}
