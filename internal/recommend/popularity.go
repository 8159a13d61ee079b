// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package recommend

import (
	"github.com/marekv42/reelrank/internal/dataset"
)

// shrinkageStrength is the Bayesian prior weight applied to every item.
// Items with few ratings are pulled toward the global mean so a single
// five-star vote cannot dominate the ranking.
const shrinkageStrength = 50.0

// PopularityModel ranks the whole catalog once at training time using
// shrunk mean ratings:
//
//	score = (sum + C*mu) / (count + C)
//
// where sum and count aggregate an item's ratings, mu is the global mean
// rating across the training set, and C is shrinkageStrength. Serving is
// a slice of the precomputed ranking, so Recommend is O(k).
type PopularityModel struct {
	// Ranked holds every rated item ordered by score descending,
	// ties broken by ascending movie id.
	Ranked []Rec
}

// TrainPopularity builds a popularity ranking from raw ratings. Items
// that never appear in the ratings are absent from the model. An empty
// input yields an empty model rather than an error.
func TrainPopularity(ratings []dataset.Rating) *PopularityModel {
	if len(ratings) == 0 {
		return &PopularityModel{}
	}

	type itemStats struct {
		sum   float64
		count float64
	}

	stats := make(map[int64]*itemStats)
	var globalSum float64
	for _, r := range ratings {
		s := stats[r.MovieID]
		if s == nil {
			s = &itemStats{}
			stats[r.MovieID] = s
		}
		s.sum += r.Rating
		s.count++
		globalSum += r.Rating
	}
	globalMean := globalSum / float64(len(ratings))

	ranked := make([]Rec, 0, len(stats))
	for id, s := range stats {
		score := (s.sum + shrinkageStrength*globalMean) / (s.count + shrinkageStrength)
		ranked = append(ranked, Rec{MovieID: id, Score: score})
	}
	sortRecs(ranked)

	return &PopularityModel{Ranked: ranked}
}

// Recommend returns the top k items from the precomputed ranking. The
// user id is ignored: popularity is the same for everyone. Asking for
// more items than the model holds returns the full ranking.
func (m *PopularityModel) Recommend(_ int64, k int) []Rec {
	if k <= 0 || len(m.Ranked) == 0 {
		return nil
	}
	if k > len(m.Ranked) {
		k = len(m.Ranked)
	}
	out := make([]Rec, k)
	copy(out, m.Ranked[:k])
	return out
}

// Len reports how many items the model ranked.
func (m *PopularityModel) Len() int {
	return len(m.Ranked)
}
