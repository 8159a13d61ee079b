// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

/*
Package middleware provides HTTP middleware for the serving API.

The middleware here is transport plumbing shared by every route: request
identity, Prometheus instrumentation, response compression, and an
in-process latency monitor. Routing-specific middleware (CORS, rate
limiting, security headers) lives in the api package next to the router
that configures it.

Components:

  - RequestID: assigns an X-Request-ID to each request and threads it
    through the context so log lines can be correlated per request
  - PrometheusMetrics: records request counts, durations, and in-flight
    gauge per method and route pattern
  - Compression: gzip response compression with a pooled writer
  - LatencyMonitor: sliding window of per-route latencies with
    percentile aggregation and slow request logging

Middleware written as func(http.HandlerFunc) http.HandlerFunc composes
with Chi through the api package's adapter; LatencyMonitor.Middleware
uses the func(http.Handler) http.Handler form Chi accepts directly.
*/
package middleware
