// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package recommend

import "sort"

// Strategy names accepted by the recommendation endpoints.
const (
	StrategyPopularity = "popularity"
	StrategyContent    = "content"
)

// Rec is a single scored recommendation.
type Rec struct {
	MovieID int64
	Score   float64
}

// Recommender produces a ranked top-k list for a user. Both bundled
// strategies are user-agnostic today, but the user id stays in the
// contract so personalized strategies can slot in behind the same API.
type Recommender interface {
	Recommend(userID int64, k int) []Rec
}

// sortRecs orders recommendations by score descending. Equal scores are
// broken by ascending movie id so rankings are stable across runs.
func sortRecs(recs []Rec) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].MovieID < recs[j].MovieID
	})
}

// topK truncates a ranked slice to at most k entries. A k larger than
// the slice returns the whole slice.
func topK(recs []Rec, k int) []Rec {
	if k < 0 {
		k = 0
	}
	if k < len(recs) {
		recs = recs[:k]
	}
	return recs
}
