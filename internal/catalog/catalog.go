// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

// Package catalog provides an immutable movie metadata lookup.
//
// The catalog is built once per process from the MovieLens movies file and
// joined into recommendation responses for display fields only; it never
// influences scoring. Iteration order is the source file order, which the
// search endpoint exposes as its match order.
package catalog

import (
	"strings"

	"github.com/marekv42/reelrank/internal/dataset"
)

// Item is the display metadata for one movie.
type Item struct {
	ID     int64
	Title  string
	Genres string
}

// Catalog maps movie ids to display metadata while preserving insertion
// order. It is read-only after construction and safe for concurrent use.
type Catalog struct {
	order []int64
	items map[int64]Item
}

// New builds a catalog from items. Duplicate ids keep their first position
// but take the last value, matching map-insert semantics.
func New(items []Item) *Catalog {
	c := &Catalog{
		order: make([]int64, 0, len(items)),
		items: make(map[int64]Item, len(items)),
	}
	for _, item := range items {
		if _, seen := c.items[item.ID]; !seen {
			c.order = append(c.order, item.ID)
		}
		c.items[item.ID] = item
	}
	return c
}

// FromMovies builds a catalog from raw dataset rows.
func FromMovies(movies []dataset.Movie) *Catalog {
	items := make([]Item, len(movies))
	for i, m := range movies {
		items[i] = Item{ID: m.MovieID, Title: m.Title, Genres: m.Genres}
	}
	return New(items)
}

// Load reads movies.csv from datasetDir and builds a catalog. A missing
// movies file yields an empty catalog, not an error.
func Load(datasetDir string) (*Catalog, error) {
	movies, err := dataset.LoadMovies(datasetDir)
	if err != nil {
		return nil, err
	}
	return FromMovies(movies), nil
}

// Get returns the metadata for id. The second return is false when the id
// is absent, which callers treat as missing display fields, not an error.
func (c *Catalog) Get(id int64) (Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.items)
}

// IDs returns the catalog ids in insertion order. The returned slice is a
// copy and may be modified by the caller.
func (c *Catalog) IDs() []int64 {
	ids := make([]int64, len(c.order))
	copy(ids, c.order)
	return ids
}

// Items returns all entries in insertion order.
func (c *Catalog) Items() []Item {
	items := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, c.items[id])
	}
	return items
}

// Search returns up to limit items whose title contains query,
// case-insensitively, in catalog order. A non-positive limit yields nil.
// An empty query matches every title.
func (c *Catalog) Search(query string, limit int) []Item {
	if limit <= 0 {
		return nil
	}

	q := strings.ToLower(query)
	var results []Item
	for _, id := range c.order {
		item := c.items[id]
		if strings.Contains(strings.ToLower(item.Title), q) {
			results = append(results, item)
			if len(results) >= limit {
				break
			}
		}
	}
	return results
}
