// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/marekv42/reelrank/internal/logging"
)

// slowRequestThreshold is the latency above which a request is logged
// immediately instead of waiting for the periodic slow request sweep.
const slowRequestThreshold = time.Second

// sample is one observed request.
type sample struct {
	route      string
	method     string
	status     int
	durationMS int64
	at         time.Time
}

// LatencyMonitor keeps a fixed-size sliding window of request latencies
// and aggregates them per route. Prometheus histograms answer fleet-wide
// questions; the monitor answers "which exact requests were slow in the
// last few minutes" without leaving the process.
type LatencyMonitor struct {
	mu     sync.RWMutex
	window []sample
	next   int
	filled bool
}

// RouteStats is the latency aggregate for one method+route pair.
type RouteStats struct {
	Route string  `json:"route"`
	Count int     `json:"count"`
	AvgMS float64 `json:"avg_ms"`
	P50MS int64   `json:"p50_ms"`
	P95MS int64   `json:"p95_ms"`
	P99MS int64   `json:"p99_ms"`
	MaxMS int64   `json:"max_ms"`
}

// NewLatencyMonitor creates a monitor holding the most recent size requests.
func NewLatencyMonitor(size int) *LatencyMonitor {
	if size < 1 {
		size = 1
	}
	return &LatencyMonitor{window: make([]sample, size)}
}

// Observe records one request into the window, overwriting the oldest
// entry once the window is full.
func (m *LatencyMonitor) Observe(route, method string, status int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.window[m.next] = sample{
		route:      route,
		method:     method,
		status:     status,
		durationMS: duration.Milliseconds(),
		at:         time.Now(),
	}
	m.next++
	if m.next == len(m.window) {
		m.next = 0
		m.filled = true
	}
}

// samples returns the populated part of the window. Callers hold m.mu.
func (m *LatencyMonitor) samples() []sample {
	if m.filled {
		return m.window
	}
	return m.window[:m.next]
}

// Stats aggregates the current window per method+route, most requested
// first.
func (m *LatencyMonitor) Stats() []RouteStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byRoute := make(map[string][]int64)
	for _, s := range m.samples() {
		key := s.method + " " + s.route
		byRoute[key] = append(byRoute[key], s.durationMS)
	}

	stats := make([]RouteStats, 0, len(byRoute))
	for route, durations := range byRoute {
		sorted := make([]int64, len(durations))
		copy(sorted, durations)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, d := range sorted {
			sum += d
		}

		stats = append(stats, RouteStats{
			Route: route,
			Count: len(sorted),
			AvgMS: float64(sum) / float64(len(sorted)),
			P50MS: percentile(sorted, 0.50),
			P95MS: percentile(sorted, 0.95),
			P99MS: percentile(sorted, 0.99),
			MaxMS: sorted[len(sorted)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	return stats
}

// LogSlow logs every request in the window slower than threshold.
// Meant to be called periodically by a maintenance task.
func (m *LatencyMonitor) LogSlow(threshold time.Duration) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	thresholdMS := threshold.Milliseconds()
	logged := 0
	for _, s := range m.samples() {
		if s.durationMS > thresholdMS {
			logging.Warn().
				Str("method", s.method).
				Str("route", s.route).
				Int("status", s.status).
				Int64("duration_ms", s.durationMS).
				Time("at", s.at).
				Msg("Slow request in latency window")
			logged++
		}
	}
	return logged
}

// Middleware observes every request passing through it.
func (m *LatencyMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)
		m.Observe(routeLabel(r), r.Method, wrapper.statusCode, duration)

		if duration > slowRequestThreshold {
			logging.Warn().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int64("duration_ms", duration.Milliseconds()).
				Msg("Slow request")
		}
	})
}

// percentile picks the p-th percentile from an ascending slice using
// nearest-rank on the lower side.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	index := int(float64(len(sorted)-1) * p)
	return sorted[index]
}
