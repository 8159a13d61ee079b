// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package recommend

import (
	"sync"

	"github.com/marekv42/reelrank/internal/catalog"
)

// ContentModel scores items by TF-IDF similarity over their title and
// genre text. It answers two questions: which items resemble a given
// seed item, and which items sit closest to the catalog's center of
// mass when no seed is available.
//
// Exported fields are the persistent state; the lookup index and the
// centrality ranking are derived lazily and rebuilt after a decode.
type ContentModel struct {
	// MovieIDs holds the item id for each matrix row, in training
	// corpus order.
	MovieIDs []int64

	// Matrix is the dense TF-IDF feature matrix, one L2-normalized
	// row per item. Items whose text contains no vocabulary term
	// have an all-zero row and score zero against everything.
	Matrix [][]float64

	// Vectorizer is the fitted feature space, kept so future item
	// text can be projected without retraining.
	Vectorizer *Vectorizer

	indexOnce sync.Once
	index     map[int64]int

	centralityOnce sync.Once
	centrality     []float64
}

// TrainContent fits a TF-IDF space over the catalog and embeds every
// item in it. An empty catalog yields an empty model.
func TrainContent(items []catalog.Item) *ContentModel {
	docs := make([]string, len(items))
	ids := make([]int64, len(items))
	for i, item := range items {
		docs[i] = buildDocument(item.Title, item.Genres)
		ids[i] = item.ID
	}

	vec := fitVectorizer(docs)
	return &ContentModel{
		MovieIDs:   ids,
		Matrix:     vec.Transform(docs),
		Vectorizer: vec,
	}
}

// SimilarItems ranks the catalog by cosine similarity to the seed item,
// excluding the seed itself. A seed id the model has never seen returns
// an empty result rather than an error. Ties are broken by ascending
// movie id; k beyond the catalog size returns everything but the seed.
func (m *ContentModel) SimilarItems(movieID int64, k int) []Rec {
	if k <= 0 {
		return nil
	}
	seedRow, ok := m.itemIndex()[movieID]
	if !ok {
		return nil
	}

	seed := m.Matrix[seedRow]
	recs := make([]Rec, 0, len(m.MovieIDs)-1)
	for i, row := range m.Matrix {
		if i == seedRow {
			continue
		}
		recs = append(recs, Rec{MovieID: m.MovieIDs[i], Score: dot(seed, row)})
	}
	sortRecs(recs)
	return topK(recs, k)
}

// Recommend returns the items most similar to the catalog as a whole,
// ranked by mean cosine similarity to every other item. The user id is
// ignored: the ranking depends only on the catalog. The centrality
// scores are computed once per model and cached.
func (m *ContentModel) Recommend(_ int64, k int) []Rec {
	if k <= 0 || len(m.MovieIDs) == 0 {
		return nil
	}

	cent := m.centralityScores()
	recs := make([]Rec, len(m.MovieIDs))
	for i, id := range m.MovieIDs {
		recs[i] = Rec{MovieID: id, Score: cent[i]}
	}
	sortRecs(recs)
	return topK(recs, k)
}

// centralityScores returns each item's mean similarity to the rest of
// the catalog, with self-similarity zeroed. The sum over all pairwise
// dot products with row i equals dot(row i, sum of all rows), so the
// scores are computed against a single accumulated vector instead of
// the full pairwise matrix.
func (m *ContentModel) centralityScores() []float64 {
	m.centralityOnce.Do(func() {
		n := len(m.Matrix)
		cent := make([]float64, n)
		if n == 0 {
			m.centrality = cent
			return
		}

		var cols int
		if m.Vectorizer != nil {
			cols = m.Vectorizer.Terms()
		} else if len(m.Matrix) > 0 {
			cols = len(m.Matrix[0])
		}
		rowSum := make([]float64, cols)
		for _, row := range m.Matrix {
			for j, x := range row {
				rowSum[j] += x
			}
		}

		for i, row := range m.Matrix {
			cent[i] = (dot(row, rowSum) - dot(row, row)) / float64(n)
		}
		m.centrality = cent
	})
	return m.centrality
}

// itemIndex maps movie ids to matrix rows, built on first use. When an
// id appears more than once the earliest row wins.
func (m *ContentModel) itemIndex() map[int64]int {
	m.indexOnce.Do(func() {
		idx := make(map[int64]int, len(m.MovieIDs))
		for i, id := range m.MovieIDs {
			if _, ok := idx[id]; !ok {
				idx[id] = i
			}
		}
		m.index = idx
	})
	return m.index
}

// Len reports how many items the model embeds.
func (m *ContentModel) Len() int {
	return len(m.MovieIDs)
}

// Has reports whether the model can answer similarity queries for the
// given item.
func (m *ContentModel) Has(movieID int64) bool {
	_, ok := m.itemIndex()[movieID]
	return ok
}
