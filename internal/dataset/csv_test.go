// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

// writeDatasetFile writes a CSV file into a temp dataset directory.
func writeDatasetFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoadRatings(t *testing.T) {
	dir := t.TempDir()
	writeDatasetFile(t, dir, "ratings.csv",
		"userId,movieId,rating,timestamp\n"+
			"1,31,2.5,1260759144\n"+
			"1,1029,3.0,1260759179\n"+
			"7,50,4.5,851866703\n")

	ratings, err := LoadRatings(dir)
	if err != nil {
		t.Fatalf("LoadRatings() error = %v", err)
	}

	if len(ratings) != 3 {
		t.Fatalf("len(ratings) = %d, want 3", len(ratings))
	}

	first := ratings[0]
	if first.UserID != 1 || first.MovieID != 31 || first.Rating != 2.5 || first.Timestamp != 1260759144 {
		t.Errorf("ratings[0] = %+v, want {1 31 2.5 1260759144}", first)
	}
	last := ratings[2]
	if last.UserID != 7 || last.MovieID != 50 {
		t.Errorf("ratings[2] = %+v, want user 7 movie 50", last)
	}
}

func TestLoadRatings_SkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	writeDatasetFile(t, dir, "ratings.csv",
		"userId,movieId,rating,timestamp\n"+
			"1,31,2.5,1260759144\n"+
			"not-a-number,31,2.5,1260759144\n"+
			"2,notanid,3.0,1260759179\n"+
			"3,50,bad,851866703\n"+
			"4,50,4.0,851866703\n")

	ratings, err := LoadRatings(dir)
	if err != nil {
		t.Fatalf("LoadRatings() error = %v", err)
	}

	if len(ratings) != 2 {
		t.Fatalf("len(ratings) = %d, want 2 (malformed rows skipped)", len(ratings))
	}
	if ratings[0].UserID != 1 || ratings[1].UserID != 4 {
		t.Errorf("kept rows = %+v, want users 1 and 4", ratings)
	}
}

func TestLoadRatings_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeDatasetFile(t, dir, "ratings.csv",
		"userId,movieId,rating\n"+
			"1,31,2.5\n")

	_, err := LoadRatings(dir)
	if err == nil {
		t.Fatal("LoadRatings() should fail when a column is missing")
	}
}

func TestLoadRatings_MissingFile(t *testing.T) {
	_, err := LoadRatings(t.TempDir())
	if err == nil {
		t.Fatal("LoadRatings() should fail when ratings.csv is absent")
	}
}

func TestLoadMovies(t *testing.T) {
	dir := t.TempDir()
	writeDatasetFile(t, dir, "movies.csv",
		"movieId,title,genres\n"+
			"1,Toy Story (1995),Adventure|Animation|Children|Comedy|Fantasy\n"+
			"11,\"American President, The (1995)\",Comedy|Drama|Romance\n"+
			"2,Jumanji (1995),Adventure|Children|Fantasy\n")

	movies, err := LoadMovies(dir)
	if err != nil {
		t.Fatalf("LoadMovies() error = %v", err)
	}

	if len(movies) != 3 {
		t.Fatalf("len(movies) = %d, want 3", len(movies))
	}

	// File order is preserved, not id order
	wantIDs := []int64{1, 11, 2}
	for i, want := range wantIDs {
		if movies[i].MovieID != want {
			t.Errorf("movies[%d].MovieID = %d, want %d", i, movies[i].MovieID, want)
		}
	}

	// Quoted title containing a comma survives parsing
	if movies[1].Title != "American President, The (1995)" {
		t.Errorf("movies[1].Title = %q, want quoted title intact", movies[1].Title)
	}
	if movies[0].Genres != "Adventure|Animation|Children|Comedy|Fantasy" {
		t.Errorf("movies[0].Genres = %q", movies[0].Genres)
	}
}

func TestLoadMovies_MissingFile(t *testing.T) {
	movies, err := LoadMovies(t.TempDir())
	if err != nil {
		t.Fatalf("LoadMovies() error = %v, want nil for missing file", err)
	}
	if len(movies) != 0 {
		t.Errorf("len(movies) = %d, want 0", len(movies))
	}
}

func TestLoadMovies_SkipsBadIDs(t *testing.T) {
	dir := t.TempDir()
	writeDatasetFile(t, dir, "movies.csv",
		"movieId,title,genres\n"+
			",Missing ID (1999),Drama\n"+
			"abc,Bad ID (2000),Comedy\n"+
			"5,Father of the Bride Part II (1995),Comedy\n")

	movies, err := LoadMovies(dir)
	if err != nil {
		t.Fatalf("LoadMovies() error = %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("len(movies) = %d, want 1", len(movies))
	}
	if movies[0].MovieID != 5 {
		t.Errorf("movies[0].MovieID = %d, want 5", movies[0].MovieID)
	}
}

func TestLoadMovies_SnakeCaseHeader(t *testing.T) {
	dir := t.TempDir()
	writeDatasetFile(t, dir, "movies.csv",
		"movie_id,title,genres\n"+
			"42,Some Movie (2001),Thriller\n")

	movies, err := LoadMovies(dir)
	if err != nil {
		t.Fatalf("LoadMovies() error = %v", err)
	}
	if len(movies) != 1 || movies[0].MovieID != 42 {
		t.Errorf("movies = %+v, want single movie 42", movies)
	}
}

func TestLoadMovies_EmptyGenres(t *testing.T) {
	dir := t.TempDir()
	writeDatasetFile(t, dir, "movies.csv",
		"movieId,title,genres\n"+
			"9,No Genres Listed (2010),\n")

	movies, err := LoadMovies(dir)
	if err != nil {
		t.Fatalf("LoadMovies() error = %v", err)
	}
	if movies[0].Genres != "" {
		t.Errorf("Genres = %q, want empty", movies[0].Genres)
	}
}

func TestRatingTime(t *testing.T) {
	r := Rating{Timestamp: 1260759144}
	got := r.Time()
	if got.Unix() != 1260759144 {
		t.Errorf("Time().Unix() = %d, want 1260759144", got.Unix())
	}
	if got.Location().String() != "UTC" {
		t.Errorf("Time() location = %s, want UTC", got.Location())
	}
}
