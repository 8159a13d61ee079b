// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// buildDatasetZip assembles a minimal MovieLens-shaped archive in memory.
func buildDatasetZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestDownloadFrom(t *testing.T) {
	archive := buildDatasetZip(t, map[string]string{
		"ml-latest-small/ratings.csv": "userId,movieId,rating,timestamp\n1,31,2.5,1260759144\n",
		"ml-latest-small/movies.csv":  "movieId,title,genres\n31,Dangerous Minds (1995),Drama\n",
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write(archive) //nolint:errcheck // test server
	}))
	defer srv.Close()

	dataDir := t.TempDir()
	got, err := DownloadFrom(context.Background(), srv.URL, dataDir)
	if err != nil {
		t.Fatalf("DownloadFrom() error = %v", err)
	}

	want := filepath.Join(dataDir, DatasetDirName)
	if got != want {
		t.Errorf("DownloadFrom() = %q, want %q", got, want)
	}

	// Extracted files are readable through the loaders
	ratings, err := LoadRatings(got)
	if err != nil {
		t.Fatalf("LoadRatings() after extraction: %v", err)
	}
	if len(ratings) != 1 || ratings[0].MovieID != 31 {
		t.Errorf("ratings = %+v, want single row for movie 31", ratings)
	}

	// The archive file is kept alongside the extracted directory
	if _, err := os.Stat(filepath.Join(dataDir, DatasetDirName+".zip")); err != nil {
		t.Errorf("expected archive to be retained: %v", err)
	}
}

func TestDownloadFrom_SkipsWhenPresent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dataDir := t.TempDir()
	extractDir := filepath.Join(dataDir, DatasetDirName)
	if err := os.MkdirAll(extractDir, 0o750); err != nil {
		t.Fatalf("failed to pre-create dataset dir: %v", err)
	}

	got, err := DownloadFrom(context.Background(), srv.URL, dataDir)
	if err != nil {
		t.Fatalf("DownloadFrom() error = %v", err)
	}
	if got != extractDir {
		t.Errorf("DownloadFrom() = %q, want %q", got, extractDir)
	}
	if hits.Load() != 0 {
		t.Errorf("server was hit %d times, want 0 when dataset exists", hits.Load())
	}
}

func TestDownloadFrom_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := DownloadFrom(context.Background(), srv.URL, t.TempDir())
	if err == nil {
		t.Fatal("DownloadFrom() should fail on non-200 response")
	}
}

func TestDownloadFrom_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("never")) //nolint:errcheck // test server
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DownloadFrom(ctx, srv.URL, t.TempDir())
	if err == nil {
		t.Fatal("DownloadFrom() should fail with a canceled context")
	}
}

func TestExtractArchive_RejectsPathTraversal(t *testing.T) {
	archive := buildDatasetZip(t, map[string]string{
		"../evil.txt": "escaped",
	})

	dataDir := t.TempDir()
	zipPath := filepath.Join(dataDir, "bad.zip")
	if err := os.WriteFile(zipPath, archive, 0o600); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}

	destDir := filepath.Join(dataDir, "out")
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		t.Fatalf("failed to create dest dir: %v", err)
	}

	if err := extractArchive(zipPath, destDir); err == nil {
		t.Fatal("extractArchive() should reject entries escaping the destination")
	}

	if _, err := os.Stat(filepath.Join(dataDir, "evil.txt")); !os.IsNotExist(err) {
		t.Error("path traversal entry must not be written outside the destination")
	}
}
