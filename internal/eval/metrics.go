// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

// Package eval measures recommendation quality offline: a per-user
// chronological train/test split, precision and recall at k, catalog
// coverage, and a human-readable run report.
//
// The numbers are honest about what an offline split can show. Both
// bundled strategies are user-agnostic, so precision here is a floor,
// not a ceiling.
package eval

import (
	"github.com/marekv42/reelrank/internal/dataset"
	"github.com/marekv42/reelrank/internal/recommend"
)

// Result holds the offline metrics for one model at a fixed k.
type Result struct {
	// PrecisionAtK is the mean fraction of the top k that the user
	// actually rated in the test window.
	PrecisionAtK float64 `json:"precision_at_k"`

	// RecallAtK is the mean fraction of the user's test ratings that
	// appeared in the top k.
	RecallAtK float64 `json:"recall_at_k"`

	// Coverage is the share of distinct training items that showed
	// up in at least one recommendation list.
	Coverage float64 `json:"coverage"`
}

// RunMetrics is the metrics.json document for a training run.
type RunMetrics struct {
	RunID      string `json:"run_id"`
	Popularity Result `json:"popularity"`
	Content    Result `json:"content_tfidf"`
}

// Evaluate scores a model against the held-out test set. For every
// user present in the test set it requests k recommendations and
// compares them with the items that user went on to rate. Users with
// no test ratings are skipped; an empty test set yields zeros.
func Evaluate(model recommend.Recommender, train, test []dataset.Rating, k int) Result {
	truth := make(map[int64]map[int64]struct{})
	for _, r := range test {
		set := truth[r.UserID]
		if set == nil {
			set = make(map[int64]struct{})
			truth[r.UserID] = set
		}
		set[r.MovieID] = struct{}{}
	}

	recommended := make(map[int64]struct{})
	var precisionSum, recallSum float64
	var evaluated int

	denomK := k
	if denomK < 1 {
		denomK = 1
	}

	for userID, set := range truth {
		if len(set) == 0 {
			continue
		}
		var hits int
		for _, rec := range model.Recommend(userID, k) {
			recommended[rec.MovieID] = struct{}{}
			if _, ok := set[rec.MovieID]; ok {
				hits++
			}
		}
		precisionSum += float64(hits) / float64(denomK)
		recallSum += float64(hits) / float64(len(set))
		evaluated++
	}

	var result Result
	if evaluated > 0 {
		result.PrecisionAtK = precisionSum / float64(evaluated)
		result.RecallAtK = recallSum / float64(evaluated)
	}

	trainItems := make(map[int64]struct{})
	for _, r := range train {
		trainItems[r.MovieID] = struct{}{}
	}
	if len(trainItems) > 0 {
		result.Coverage = float64(len(recommended)) / float64(len(trainItems))
	}
	return result
}
