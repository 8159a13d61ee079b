// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

// Package service orchestrates the serving side of Reelrank: it owns
// the readiness state machine over the trained models, dispatches
// requests to the right strategy, and enriches raw recommendations
// with catalog metadata.
//
// The popularity model is loaded eagerly at startup and is mandatory
// for the service to report ready. The content model is loaded lazily
// on the first request that needs it; exactly one load attempt is made
// per process, and its outcome (model or unavailability) is cached.
// Popularity serving is never affected by content availability.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/marekv42/reelrank/internal/artifact"
	"github.com/marekv42/reelrank/internal/cache"
	"github.com/marekv42/reelrank/internal/catalog"
	"github.com/marekv42/reelrank/internal/logging"
	"github.com/marekv42/reelrank/internal/metrics"
	"github.com/marekv42/reelrank/internal/recommend"
)

// State tracks model readiness. Transitions only move forward:
// Uninitialized to PopularityReady on a successful startup load, then
// to FullyReady once the content model loads. LoadFailed is terminal
// and means the mandatory popularity artifact was missing or broken.
type State int32

const (
	StateUninitialized State = iota
	StatePopularityReady
	StateFullyReady
	StateLoadFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StatePopularityReady:
		return "popularity_ready"
	case StateFullyReady:
		return "fully_ready"
	case StateLoadFailed:
		return "load_failed"
	default:
		return "unknown"
	}
}

var (
	// ErrNotLoaded means the mandatory popularity model is not
	// available. Surfaced as 503: the caller should train first.
	ErrNotLoaded = errors.New("models not loaded")

	// ErrStrategyUnavailable means the content model was requested
	// but its artifact is absent or broken. Surfaced as 400: the
	// popularity strategy still works.
	ErrStrategyUnavailable = errors.New("content model is not available")
)

// Recommendation is one enriched result row. Title and Genres are nil
// when the catalog has no entry for the item; that is expected, not an
// error.
type Recommendation struct {
	MovieID int64   `json:"movie_id"`
	Title   *string `json:"title"`
	Genres  *string `json:"genres"`
	Score   float64 `json:"score"`
}

// Movie is a catalog entry as served by the movie endpoints.
type Movie struct {
	MovieID int64  `json:"movie_id"`
	Title   string `json:"title"`
	Genres  string `json:"genres"`
}

// Health is the health endpoint body.
type Health struct {
	Status       string `json:"status"`
	RunID        string `json:"run_id"`
	ModelsLoaded bool   `json:"models_loaded"`
}

// ModelInfo describes the run backing the service. Manifest and
// Metrics are omitted when the run directory does not carry them.
type ModelInfo struct {
	RunID        string             `json:"run_id"`
	ModelsLoaded bool               `json:"models_loaded"`
	Manifest     *artifact.Manifest `json:"manifest"`
	Metrics      json.RawMessage    `json:"metrics"`
}

// Service is the single surface request handlers talk to. All model
// state is immutable after load and shared across requests without
// locking; the only guarded mutation is the one-time content load.
type Service struct {
	log zerolog.Logger

	runID   string
	store   *artifact.Store
	catalog *catalog.Catalog

	state atomic.Int32

	popularity *recommend.PopularityModel

	contentMu    sync.Mutex
	contentTried bool
	content      *recommend.ContentModel
	contentErr   error

	// similar caches ranked similar-item lists. Entries stay valid for
	// the process lifetime because models never change after load.
	similar *cache.RecListCache
}

// similarCacheSize bounds the similar-items LRU. Rankings are a few
// hundred bytes each, so even the full cache stays under a megabyte.
const similarCacheSize = 2048

// New creates a Service bound to one run id. Call LoadModels before
// serving traffic.
func New(store *artifact.Store, cat *catalog.Catalog, runID string) *Service {
	return &Service{
		log:     logging.WithComponent("service"),
		runID:   runID,
		store:   store,
		catalog: cat,
		similar: cache.NewRecListCache(similarCacheSize),
	}
}

// RunID returns the training run the service serves from.
func (s *Service) RunID() string {
	return s.runID
}

// State returns the current readiness state.
func (s *Service) State() State {
	return State(s.state.Load())
}

// ModelsLoaded reports whether the mandatory popularity model is
// ready to serve.
func (s *Service) ModelsLoaded() bool {
	st := s.State()
	return st == StatePopularityReady || st == StateFullyReady
}

// LoadModels eagerly loads the popularity model. A missing or corrupt
// artifact moves the service to LoadFailed; it keeps running and
// reports not-ready rather than exiting. The content model is not
// touched here.
func (s *Service) LoadModels(ctx context.Context) {
	start := time.Now()
	model, meta, err := s.store.LoadPopularity(ctx, s.runID)
	metrics.RecordModelLoad(artifact.PopularityModelName, time.Since(start), err)
	if err != nil {
		s.state.Store(int32(StateLoadFailed))
		if errors.Is(err, artifact.ErrNotFound) {
			s.log.Warn().
				Str("run_id", s.runID).
				Msg("Popularity artifact missing; train a run before serving")
			return
		}
		s.log.Error().
			Err(err).
			Str("run_id", s.runID).
			Msg("Failed to load popularity model")
		return
	}

	s.popularity = model
	s.state.Store(int32(StatePopularityReady))
	metrics.SetModelItems(artifact.PopularityModelName, model.Len())
	s.log.Info().
		Str("run_id", s.runID).
		Int("items", model.Len()).
		Time("trained_at", meta.TrainedAt).
		Dur("load_duration", time.Since(start)).
		Msg("Popularity model loaded")
}

// Recommend returns the top k recommendations for a user under the
// given strategy. Returns ErrNotLoaded when the popularity model is
// missing and ErrStrategyUnavailable when the content strategy is
// requested but its artifact cannot be loaded.
func (s *Service) Recommend(ctx context.Context, userID int64, k int, strategy string) ([]Recommendation, error) {
	if !s.ModelsLoaded() {
		return nil, ErrNotLoaded
	}

	start := time.Now()
	var recs []recommend.Rec
	switch strategy {
	case recommend.StrategyPopularity:
		recs = s.popularity.Recommend(userID, k)
	case recommend.StrategyContent:
		content, err := s.contentModel(ctx)
		if err != nil {
			return nil, err
		}
		recs = content.Recommend(userID, k)
	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
	metrics.RecordRecommendation(strategy, time.Since(start))

	return s.enrich(recs), nil
}

// SimilarItems returns the k items most similar to the given movie.
// An id the content model has never seen yields an empty list. The
// popularity gate applies here too: a service that never loaded its
// mandatory model serves nothing.
func (s *Service) SimilarItems(ctx context.Context, movieID int64, k int) ([]Recommendation, error) {
	if !s.ModelsLoaded() {
		return nil, ErrNotLoaded
	}

	content, err := s.contentModel(ctx)
	if err != nil {
		return nil, err
	}

	recs, ok := s.similar.Get(movieID, k)
	if !ok {
		recs = content.SimilarItems(movieID, k)
		s.similar.Add(movieID, k, recs)
	}
	metrics.RecordSimilarItemQuery()
	return s.enrich(recs), nil
}

// Movie looks up one catalog entry.
func (s *Service) Movie(id int64) (Movie, bool) {
	item, ok := s.catalog.Get(id)
	if !ok {
		return Movie{}, false
	}
	return Movie{MovieID: item.ID, Title: item.Title, Genres: item.Genres}, true
}

// SearchMovies finds catalog entries whose title contains the query,
// case-insensitively, in catalog order, capped at limit.
func (s *Service) SearchMovies(query string, limit int) []Movie {
	metrics.RecordCatalogSearch()
	items := s.catalog.Search(query, limit)
	results := make([]Movie, 0, len(items))
	for _, item := range items {
		results = append(results, Movie{MovieID: item.ID, Title: item.Title, Genres: item.Genres})
	}
	return results
}

// Health reports liveness. It never errors: a service with no models
// is alive, just not ready.
func (s *Service) Health() Health {
	return Health{
		Status:       "ok",
		RunID:        s.runID,
		ModelsLoaded: s.ModelsLoaded(),
	}
}

// ModelInfo reports the run id, readiness, and whatever run documents
// exist. Missing or unreadable documents are omitted, never an error.
func (s *Service) ModelInfo() ModelInfo {
	info := ModelInfo{
		RunID:        s.runID,
		ModelsLoaded: s.ModelsLoaded(),
	}
	if manifest, err := s.store.ReadManifest(s.runID); err == nil {
		info.Manifest = manifest
	}
	if raw, err := s.store.ReadMetrics(s.runID); err == nil {
		info.Metrics = raw
	}
	return info
}

// contentModel returns the lazily loaded content model. The first
// caller performs the load; everyone else gets the cached outcome,
// success or failure. A run trained without a content model is a
// permanent, per-request-reported condition, not a retry loop.
func (s *Service) contentModel(ctx context.Context) (*recommend.ContentModel, error) {
	s.contentMu.Lock()
	defer s.contentMu.Unlock()

	if s.content != nil {
		return s.content, nil
	}
	if s.contentTried {
		return nil, s.contentErr
	}
	s.contentTried = true

	start := time.Now()
	model, meta, err := s.store.LoadContent(ctx, s.runID)
	metrics.RecordModelLoad(artifact.ContentModelName, time.Since(start), err)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			s.log.Warn().
				Str("run_id", s.runID).
				Msg("Content artifact absent; content strategy disabled for this run")
		} else {
			s.log.Error().
				Err(err).
				Str("run_id", s.runID).
				Msg("Content model failed to load; content strategy disabled")
		}
		s.contentErr = fmt.Errorf("%w: %v", ErrStrategyUnavailable, err)
		return nil, s.contentErr
	}

	s.content = model
	s.state.Store(int32(StateFullyReady))
	metrics.SetModelItems(artifact.ContentModelName, model.Len())
	s.log.Info().
		Str("run_id", s.runID).
		Int("items", model.Len()).
		Time("trained_at", meta.TrainedAt).
		Dur("load_duration", time.Since(start)).
		Msg("Content model loaded")
	return model, nil
}

// enrich joins recommendations with catalog metadata. Entries without
// a positive item id are dropped; catalog misses keep nil display
// fields.
func (s *Service) enrich(recs []recommend.Rec) []Recommendation {
	out := make([]Recommendation, 0, len(recs))
	for _, rec := range recs {
		if rec.MovieID <= 0 {
			continue
		}
		r := Recommendation{MovieID: rec.MovieID, Score: rec.Score}
		if item, ok := s.catalog.Get(rec.MovieID); ok {
			title := item.Title
			genres := item.Genres
			r.Title = &title
			r.Genres = &genres
		}
		out = append(out, r)
	}
	return out
}
