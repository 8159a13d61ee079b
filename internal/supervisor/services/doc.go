// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

// Package services wraps Reelrank's long-running components as
// suture.Service implementations for the supervisor tree.
//
// Each wrapper translates a component's own lifecycle idiom into suture's
// context-aware Serve contract:
//
//   - HTTPServerService: bridges http.Server's blocking ListenAndServe
//     and graceful Shutdown.
//   - LatencySweepService: runs a ticker loop that reports slow requests
//     from the in-memory latency window.
//
// Wrappers return ctx.Err() on graceful shutdown so suture stops them
// instead of restarting.
package services
