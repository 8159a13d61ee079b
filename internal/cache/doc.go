// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

// Package cache provides the in-process result cache for the serving
// layer.
//
// Similar-item queries scan every row of the content model's TF-IDF
// matrix, which makes them the most expensive operation the server
// runs. The ranked list for a given seed movie and k never changes
// while a model is loaded, so a small LRU in front of the scan turns
// repeat lookups into map hits.
//
// Entries carry no TTL. Models are immutable for the lifetime of the
// process; a new training run only becomes visible after a restart,
// which starts with an empty cache anyway.
package cache
