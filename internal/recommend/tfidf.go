// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package recommend

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	// minDocFreq drops terms that appear in fewer than this many
	// documents before the vocabulary cap is applied.
	minDocFreq = 2

	// maxVocabulary caps the vocabulary at the most frequent terms,
	// measured by total occurrences across the corpus.
	maxVocabulary = 30000
)

// tokenPattern matches runs of two or more word characters. Single-char
// tokens ("a", "2") carry no signal for title matching and are dropped.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vectorizer maps documents onto a fixed TF-IDF feature space learned
// from a training corpus. All fields are exported so the fitted state
// survives a gob round trip through the artifact store.
type Vectorizer struct {
	// Vocabulary maps a term to its column index. Indices are
	// assigned in lexicographic term order.
	Vocabulary map[string]int

	// IDF holds the inverse document frequency per column:
	// ln((1+N)/(1+df)) + 1, the smoothed variant that never zeroes
	// a term out entirely.
	IDF []float64
}

// fitVectorizer learns a vocabulary and IDF weights from the corpus.
// Terms are unigrams and bigrams over tokenized text.
func fitVectorizer(docs []string) *Vectorizer {
	return newVectorizer(docs, minDocFreq, maxVocabulary)
}

func newVectorizer(docs []string, minDF, maxTerms int) *Vectorizer {
	docFreq := make(map[string]int)
	corpusFreq := make(map[string]int)
	for _, doc := range docs {
		counts := termCounts(doc)
		for term, c := range counts {
			docFreq[term]++
			corpusFreq[term] += c
		}
	}

	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df >= minDF {
			kept = append(kept, term)
		}
	}

	if len(kept) > maxTerms {
		// Keep the terms with the highest corpus frequency;
		// ties favor the lexicographically smaller term.
		sort.Slice(kept, func(i, j int) bool {
			if corpusFreq[kept[i]] != corpusFreq[kept[j]] {
				return corpusFreq[kept[i]] > corpusFreq[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:maxTerms]
	}
	sort.Strings(kept)

	n := float64(len(docs))
	vocab := make(map[string]int, len(kept))
	idf := make([]float64, len(kept))
	for i, term := range kept {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return &Vectorizer{Vocabulary: vocab, IDF: idf}
}

// Transform projects documents onto the fitted feature space. Each row
// is L2-normalized; documents with no known terms stay all-zero.
func (v *Vectorizer) Transform(docs []string) [][]float64 {
	matrix := make([][]float64, len(docs))
	for i, doc := range docs {
		row := make([]float64, len(v.IDF))
		for term, c := range termCounts(doc) {
			if col, ok := v.Vocabulary[term]; ok {
				row[col] = float64(c) * v.IDF[col]
			}
		}
		l2Normalize(row)
		matrix[i] = row
	}
	return matrix
}

// Terms reports the size of the fitted vocabulary.
func (v *Vectorizer) Terms() int {
	return len(v.IDF)
}

// termCounts tokenizes a document and counts unigrams and bigrams.
func termCounts(doc string) map[string]int {
	tokens := tokenPattern.FindAllString(doc, -1)
	counts := make(map[string]int, 2*len(tokens))
	for i, tok := range tokens {
		counts[tok]++
		if i+1 < len(tokens) {
			counts[tok+" "+tokens[i+1]]++
		}
	}
	return counts
}

// l2Normalize scales a vector to unit Euclidean length in place.
// Zero vectors are left untouched.
func l2Normalize(row []float64) {
	var sumSquares float64
	for _, x := range row {
		sumSquares += x * x
	}
	if sumSquares == 0 {
		return
	}
	norm := math.Sqrt(sumSquares)
	for i := range row {
		row[i] /= norm
	}
}

// dot returns the inner product of two equal-length vectors. Rows
// produced by Transform are unit length, so this doubles as cosine
// similarity: a zero row yields zero against everything.
func dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// buildDocument assembles the text an item is indexed under: the
// lowercased title followed by its genres with the pipe separators
// replaced by spaces.
func buildDocument(title, genres string) string {
	return strings.ToLower(title + " " + strings.ReplaceAll(genres, "|", " "))
}
