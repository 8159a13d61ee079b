// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/marekv42/reelrank/internal/logging"
	"github.com/marekv42/reelrank/internal/middleware"
)

const (
	defaultSweepInterval  = time.Minute
	defaultSweepThreshold = time.Second
)

// LatencySweepService periodically scans the in-memory request latency
// window and surfaces requests slower than the threshold. The HTTP
// middleware already warns about slow requests inline as they finish;
// the sweep catches bursts that scrolled past and keeps a heartbeat in
// the logs even when traffic is quiet.
type LatencySweepService struct {
	monitor   *middleware.LatencyMonitor
	interval  time.Duration
	threshold time.Duration
	name      string
	logger    zerolog.Logger
}

// NewLatencySweepService creates a sweep service over the given monitor.
// Non-positive interval or threshold fall back to one minute and one
// second respectively.
func NewLatencySweepService(monitor *middleware.LatencyMonitor, interval, threshold time.Duration) *LatencySweepService {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if threshold <= 0 {
		threshold = defaultSweepThreshold
	}
	return &LatencySweepService{
		monitor:   monitor,
		interval:  interval,
		threshold: threshold,
		name:      "latency-sweep",
		logger:    logging.WithComponent("latency-sweep"),
	}
}

// Serve implements suture.Service. It sweeps once per interval until the
// context is canceled.
func (s *LatencySweepService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("threshold", s.threshold).
		Msg("latency sweep started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("latency sweep stopping")
			return ctx.Err()
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep runs one pass over the latency window.
func (s *LatencySweepService) sweep() {
	slow := s.monitor.LogSlow(s.threshold)
	if slow == 0 {
		s.logger.Debug().Msg("latency sweep clean")
		return
	}
	s.logger.Warn().
		Int("slow_requests", slow).
		Dur("threshold", s.threshold).
		Msg("slow requests in latency window")
}

// String implements fmt.Stringer. Suture uses it to name the service in
// supervision events.
func (s *LatencySweepService) String() string {
	return s.name
}
