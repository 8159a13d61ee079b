// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marekv42/reelrank/internal/config"
	"github.com/marekv42/reelrank/internal/recommend"
	"github.com/marekv42/reelrank/internal/service"
	"github.com/marekv42/reelrank/internal/validation"
)

// requestTimeout bounds a single request's work, including the one-time
// lazy content model load that the first content request may trigger.
const requestTimeout = 10 * time.Second

// Handler holds the request handlers for all serving endpoints.
type Handler struct {
	svc *service.Service
	api config.APIConfig
}

// NewHandler creates a Handler serving from svc with the given
// parameter bounds.
func NewHandler(svc *service.Service, apiCfg config.APIConfig) *Handler {
	return &Handler{svc: svc, api: apiCfg}
}

// recommendationsRequest is the validated query surface of
// GET /v1/recommendations. The k bound lives in config, not here.
type recommendationsRequest struct {
	UserID   int64  `validate:"required,min=1"`
	Strategy string `validate:"required,oneof=popularity content"`
}

// similarItemsRequest is the validated query surface of
// GET /v1/similar-items.
type similarItemsRequest struct {
	MovieID int64 `validate:"required,min=1"`
}

// searchRequest is the validated query surface of GET /v1/movies/search.
type searchRequest struct {
	Query string `validate:"required"`
}

type rootResponse struct {
	Name        string `json:"name"`
	Health      string `json:"health"`
	ExampleRecs string `json:"example_recs"`
}

type searchResponse struct {
	Q       string          `json:"q"`
	Limit   int             `json:"limit"`
	Results []service.Movie `json:"results"`
}

type recommendationsResponse struct {
	UserID          int64                    `json:"user_id"`
	K               int                      `json:"k"`
	Strategy        string                   `json:"strategy"`
	Recommendations []service.Recommendation `json:"recommendations"`
}

type similarItemsResponse struct {
	MovieID      int64                    `json:"movie_id"`
	K            int                      `json:"k"`
	SimilarItems []service.Recommendation `json:"similar_items"`
}

// Root handles GET /. A one-page description so that hitting the bare
// host answers "what is this and where do I start".
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &rootResponse{
		Name:        "Reelrank movie recommendation API",
		Health:      "/health",
		ExampleRecs: "/v1/recommendations?user_id=1&k=10",
	})
}

// Health handles GET /health. Always 200: a process that cannot load
// its models still reports, with models_loaded false.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Health())
}

// ModelInfo handles GET /v1/model-info. Manifest and metrics are
// best-effort and null when the run directory does not carry them.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.ModelInfo())
}

// GetMovie handles GET /v1/movies/{id}.
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "movie id must be an integer", nil)
		return
	}

	movie, ok := h.svc.Movie(id)
	if !ok {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Movie not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, movie)
}

// SearchMovies handles GET /v1/movies/search.
func (h *Handler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	limit, present, err := queryInt(r, "limit")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "limit must be an integer", nil)
		return
	}
	if !present {
		limit = h.api.DefaultSearchLimit
	}
	if limit < 1 || limit > h.api.MaxSearchLimit {
		msg := fmt.Sprintf("limit must be between 1 and %d", h.api.MaxSearchLimit)
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, msg, nil)
		return
	}

	req := searchRequest{Query: q}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	results := h.svc.SearchMovies(q, limit)
	if results == nil {
		results = []service.Movie{}
	}

	respondJSON(w, http.StatusOK, &searchResponse{Q: q, Limit: limit, Results: results})
}

// Recommendations handles GET /v1/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, _, err := queryInt64(r, "user_id")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "user_id must be an integer", nil)
		return
	}

	k, ok := h.parseK(w, r)
	if !ok {
		return
	}

	strategy := r.URL.Query().Get("strategy")
	if strategy == "" {
		strategy = recommend.StrategyPopularity
	}

	req := recommendationsRequest{UserID: userID, Strategy: strategy}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	recs, err := h.svc.Recommend(ctx, userID, k, strategy)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if recs == nil {
		recs = []service.Recommendation{}
	}

	respondJSON(w, http.StatusOK, &recommendationsResponse{
		UserID:          userID,
		K:               k,
		Strategy:        strategy,
		Recommendations: recs,
	})
}

// SimilarItems handles GET /v1/similar-items. A seed the content model
// has never seen yields an empty list, not an error.
func (h *Handler) SimilarItems(w http.ResponseWriter, r *http.Request) {
	movieID, _, err := queryInt64(r, "movie_id")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "movie_id must be an integer", nil)
		return
	}

	k, ok := h.parseK(w, r)
	if !ok {
		return
	}

	req := similarItemsRequest{MovieID: movieID}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	items, err := h.svc.SimilarItems(ctx, movieID, k)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []service.Recommendation{}
	}

	respondJSON(w, http.StatusOK, &similarItemsResponse{
		MovieID:      movieID,
		K:            k,
		SimilarItems: items,
	})
}

// parseK reads the k parameter, applying the configured default and
// bounds. Returns ok=false after writing the error response.
func (h *Handler) parseK(w http.ResponseWriter, r *http.Request) (int, bool) {
	k, present, err := queryInt(r, "k")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "k must be an integer", nil)
		return 0, false
	}
	if !present {
		return h.api.DefaultK, true
	}
	if k < 1 || k > h.api.MaxK {
		msg := fmt.Sprintf("k must be between 1 and %d", h.api.MaxK)
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, msg, nil)
		return 0, false
	}
	return k, true
}

// respondServiceError maps service errors onto the availability model:
// no popularity model means the service cannot serve at all (503), no
// content model only removes one strategy (400).
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotLoaded):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeModelsNotLoaded,
			"Models not loaded. Train first.", nil)
	case errors.Is(err, service.ErrStrategyUnavailable):
		respondError(w, r, http.StatusBadRequest, ErrCodeContentUnavailable,
			"Content model is not available.", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal,
			"Internal server error", err)
	}
}
