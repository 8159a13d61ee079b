// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package eval

import (
	"sort"

	"github.com/marekv42/reelrank/internal/dataset"
)

// minRatingsForSplit is the per-user floor below which all of a user's
// ratings go to the training set. A test set built from one or two
// ratings says nothing.
const minRatingsForSplit = 5

// DefaultTestRatio is the fraction of each user's history held out for
// evaluation.
const DefaultTestRatio = 0.2

// Split holds a train/test partition of the ratings.
type Split struct {
	Train []dataset.Rating
	Test  []dataset.Rating
}

// ChronologicalSplit partitions ratings per user along time: each
// user's earliest ratings train, the most recent testRatio of them
// test. Users with fewer than five ratings contribute to training
// only. The input slice is not modified.
func ChronologicalSplit(ratings []dataset.Rating, testRatio float64) Split {
	sorted := make([]dataset.Rating, len(ratings))
	copy(sorted, ratings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].UserID != sorted[j].UserID {
			return sorted[i].UserID < sorted[j].UserID
		}
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	var split Split
	for start := 0; start < len(sorted); {
		end := start
		for end < len(sorted) && sorted[end].UserID == sorted[start].UserID {
			end++
		}
		user := sorted[start:end]

		n := end - start
		if n < minRatingsForSplit {
			split.Train = append(split.Train, user...)
			start = end
			continue
		}

		cut := int(float64(n) * (1 - testRatio))
		if cut < 1 {
			cut = 1
		}
		split.Train = append(split.Train, user[:cut]...)
		split.Test = append(split.Test, user[cut:]...)
		start = end
	}
	return split
}
