// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package dataset

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marekv42/reelrank/internal/logging"
	"github.com/marekv42/reelrank/internal/metrics"
)

// MovieLensURL is the upstream location of the ml-latest-small archive.
const MovieLensURL = "https://files.grouplens.org/datasets/movielens/ml-latest-small.zip"

const (
	downloadTimeout = 60 * time.Second

	// Limit extraction size to prevent decompression bombs (max 1GB per file)
	maxExtractedFileSize = 1 << 30
)

// Download fetches the MovieLens ml-latest-small archive into dataDir and
// extracts it. Returns the extracted dataset directory. If the dataset
// directory already exists the download is skipped entirely.
func Download(ctx context.Context, dataDir string) (string, error) {
	return DownloadFrom(ctx, MovieLensURL, dataDir)
}

// DownloadFrom fetches a dataset archive from the given URL into dataDir
// and extracts it. The archive file is kept next to the extracted
// directory so repeated runs can be diffed against the original.
func DownloadFrom(ctx context.Context, url, dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	extractDir := filepath.Join(dataDir, DatasetDirName)
	if dirExists(extractDir) {
		logging.Debug().Str("dir", extractDir).Msg("Dataset already present, skipping download")
		return extractDir, nil
	}

	zipPath := filepath.Join(dataDir, DatasetDirName+".zip")

	start := time.Now()
	if err := fetchArchive(ctx, url, zipPath); err != nil {
		return "", err
	}
	metrics.RecordDatasetDownload(time.Since(start))

	if err := extractArchive(zipPath, dataDir); err != nil {
		return "", err
	}

	logging.Info().
		Str("url", url).
		Str("dir", extractDir).
		Dur("duration", time.Since(start)).
		Msg("Dataset downloaded and extracted")

	return extractDir, nil
}

// fetchArchive downloads the archive at url to destPath.
func fetchArchive(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	client := &http.Client{Timeout: downloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download dataset: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dataset download returned status %d", resp.StatusCode)
	}

	if err := saveReaderToFile(resp.Body, destPath); err != nil {
		return fmt.Errorf("failed to save dataset archive: %w", err)
	}

	return nil
}

// extractArchive extracts a zip archive into destDir.
//
//nolint:gosec // G304: zipPath is constructed from the configured data directory
func extractArchive(zipPath, destDir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open dataset archive: %w", err)
	}
	defer zr.Close() //nolint:errcheck // Best effort cleanup

	for _, f := range zr.File {
		if err := extractZipEntry(f, destDir); err != nil {
			return err
		}
	}

	return nil
}

// extractZipEntry extracts a single zip entry into destDir.
func extractZipEntry(f *zip.File, destDir string) error {
	destPath, err := validateAndBuildDestPath(destDir, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(destPath, 0o750)
	}

	if f.UncompressedSize64 > maxExtractedFileSize {
		return fmt.Errorf("archive entry too large: %s (%d bytes)", f.Name, f.UncompressedSize64)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", f.Name, err)
	}
	defer rc.Close() //nolint:errcheck // Best effort cleanup

	//nolint:gosec // G110: entry size is validated above, copy is bounded
	if err := saveReaderToFile(io.LimitReader(rc, maxExtractedFileSize), destPath); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}

	return nil
}

// validateAndBuildDestPath validates and builds the destination path for extraction
func validateAndBuildDestPath(destDir, fileName string) (string, error) {
	destPath := filepath.Join(destDir, fileName)

	// Validate path to prevent directory traversal (G305)
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid file path in archive: %s", fileName)
	}

	return destPath, nil
}

// saveReaderToFile saves data from a reader to a file
func saveReaderToFile(reader io.Reader, destPath string) error {
	outFile, err := os.Create(destPath) //nolint:gosec // G304: destPath is validated by caller
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	_, err = io.Copy(outFile, reader)
	closeErr := outFile.Close()

	if err != nil {
		os.Remove(destPath) //nolint:errcheck // Best effort cleanup on error
		return err
	}

	if closeErr != nil {
		os.Remove(destPath) //nolint:errcheck // Best effort cleanup on error
		return closeErr
	}

	return nil
}

// dirExists reports whether path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
