// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/marekv42/reelrank/internal/logging"
	"github.com/marekv42/reelrank/internal/metrics"
)

// LoadRatings parses ratings.csv from datasetDir. Rows that fail to parse
// are skipped with a warning. The file itself must exist.
func LoadRatings(datasetDir string) ([]Rating, error) {
	path := filepath.Join(datasetDir, "ratings.csv")

	file, err := os.Open(path) //nolint:gosec // G304: path is under the configured data directory
	if err != nil {
		return nil, fmt.Errorf("failed to open ratings file: %w", err)
	}
	defer file.Close() //nolint:errcheck // Best effort cleanup

	reader := csv.NewReader(file)
	header, err := readHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read ratings header: %w", err)
	}

	cols, err := requireColumns(header, "userId", "movieId", "rating", "timestamp")
	if err != nil {
		return nil, fmt.Errorf("ratings.csv: %w", err)
	}

	var (
		ratings []Rating
		skipped int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return nil, fmt.Errorf("failed to read ratings row: %w", err)
		}

		rating, ok := parseRatingRow(record, cols)
		if !ok {
			skipped++
			continue
		}
		ratings = append(ratings, rating)
	}

	if skipped > 0 {
		logging.Warn().Int("skipped", skipped).Msg("Skipped malformed ratings rows")
	}
	metrics.SetDatasetRows("ratings", len(ratings))

	return ratings, nil
}

// parseRatingRow converts a CSV record into a Rating.
func parseRatingRow(record []string, cols map[string]int) (Rating, bool) {
	userID, err1 := strconv.ParseInt(field(record, cols["userId"]), 10, 64)
	movieID, err2 := strconv.ParseInt(field(record, cols["movieId"]), 10, 64)
	value, err3 := strconv.ParseFloat(field(record, cols["rating"]), 64)
	ts, err4 := strconv.ParseInt(field(record, cols["timestamp"]), 10, 64)

	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return Rating{}, false
	}

	return Rating{UserID: userID, MovieID: movieID, Rating: value, Timestamp: ts}, true
}

// LoadMovies parses movies.csv from datasetDir, preserving file order.
// A missing file yields an empty slice, matching the serving-side tolerance
// for running without catalog metadata. Rows without a parseable id are
// skipped.
func LoadMovies(datasetDir string) ([]Movie, error) {
	path := filepath.Join(datasetDir, "movies.csv")

	file, err := os.Open(path) //nolint:gosec // G304: path is under the configured data directory
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warn().Str("path", path).Msg("Movies file not found, catalog will be empty")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open movies file: %w", err)
	}
	defer file.Close() //nolint:errcheck // Best effort cleanup

	reader := csv.NewReader(file)
	header, err := readHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read movies header: %w", err)
	}

	idCol, ok := header["movieId"]
	if !ok {
		// Some exports use snake_case
		idCol, ok = header["movie_id"]
	}
	if !ok {
		return nil, fmt.Errorf("movies.csv: missing column %q", "movieId")
	}
	titleCol, hasTitle := header["title"]
	genresCol, hasGenres := header["genres"]

	var (
		movies  []Movie
		skipped int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return nil, fmt.Errorf("failed to read movies row: %w", err)
		}

		rawID := strings.TrimSpace(field(record, idCol))
		if rawID == "" {
			skipped++
			continue
		}
		movieID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			skipped++
			continue
		}

		movie := Movie{MovieID: movieID}
		if hasTitle {
			movie.Title = strings.TrimSpace(field(record, titleCol))
		}
		if hasGenres {
			movie.Genres = strings.TrimSpace(field(record, genresCol))
		}
		movies = append(movies, movie)
	}

	if skipped > 0 {
		logging.Warn().Int("skipped", skipped).Msg("Skipped malformed movies rows")
	}
	metrics.SetDatasetRows("movies", len(movies))

	return movies, nil
}

// readHeader reads the first CSV record and maps column names to indices.
func readHeader(reader *csv.Reader) (map[string]int, error) {
	record, err := reader.Read()
	if err != nil {
		return nil, err
	}

	header := make(map[string]int, len(record))
	for i, name := range record {
		header[strings.TrimSpace(name)] = i
	}
	return header, nil
}

// requireColumns resolves the given column names, erroring on any absence.
func requireColumns(header map[string]int, names ...string) (map[string]int, error) {
	cols := make(map[string]int, len(names))
	for _, name := range names {
		idx, ok := header[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		cols[name] = idx
	}
	return cols, nil
}

// field returns record[idx] or "" when the index is out of range.
func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
