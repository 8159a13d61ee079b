// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

// Package recommend implements the two ranking strategies behind the
// recommendation API: a Bayesian-shrunk popularity ranking and a TF-IDF
// content model over movie titles and genres.
//
// # Strategies
//
// PopularityModel ranks every rated item once at training time. Each
// item's mean rating is shrunk toward the global mean with a fixed
// prior weight, so sparsely rated items cannot crowd out broadly
// liked ones. Serving slices the precomputed ranking.
//
// ContentModel embeds each catalog item in a TF-IDF space built from
// unigrams and bigrams of the lowercased title and genre text. It
// serves two queries: SimilarItems ranks the catalog by cosine
// similarity to a seed item (the seed itself is never returned), and
// Recommend ranks items by their mean similarity to the whole catalog,
// a centrality score cached after its first computation.
//
// # Determinism
//
// All rankings order by score descending with ties broken by ascending
// movie id, so identical inputs always produce identical output.
//
// # Persistence
//
// Both model types carry their full state in exported fields and are
// encoded with encoding/gob by the artifact package. Derived lookup
// structures are rebuilt lazily after decoding.
package recommend
