// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package api

import (
	"net/http"
	"strconv"
)

// queryInt64 parses an integer query parameter. present reports whether
// the parameter appeared in the URL at all; err is non-nil when it
// appeared but is not an integer. Values like "3.5" or "abc" are
// rejected rather than coerced.
func queryInt64(r *http.Request, key string) (val int64, present bool, err error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, nil
	}

	val, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, true, err
	}
	return val, true, nil
}

// queryInt is queryInt64 for parameters that fit in int, such as k and
// limit.
func queryInt(r *http.Request, key string) (val int, present bool, err error) {
	v64, present, err := queryInt64(r, key)
	return int(v64), present, err
}
