// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

// Package dataset acquires and loads the MovieLens source data.
//
// The package downloads the ml-latest-small archive on first use, extracts
// it under the configured data directory, and parses the ratings and movies
// CSV files into typed rows. Loading is lenient: rows that fail to parse are
// skipped with a warning rather than aborting the whole load.
package dataset

import "time"

// DatasetDirName is the directory the MovieLens archive extracts to.
const DatasetDirName = "ml-latest-small"

// Rating is one row of ratings.csv: a user's score for a movie at a point
// in time. Timestamps are Unix seconds as shipped by MovieLens.
type Rating struct {
	UserID    int64
	MovieID   int64
	Rating    float64
	Timestamp int64
}

// Time returns the rating timestamp as a time.Time in UTC.
func (r Rating) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// Movie is one row of movies.csv. Genres is the raw pipe-separated tag
// string ("Adventure|Animation|Children"); empty when the source has none.
type Movie struct {
	MovieID int64
	Title   string
	Genres  string
}
