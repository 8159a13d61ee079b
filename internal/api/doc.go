// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

/*
Package api provides the HTTP serving layer for Reelrank.

The API is read-only: all model state is produced offline by the trainer
and loaded from artifacts at startup. Handlers translate HTTP into calls
on service.Service and translate its errors back into status codes.

Routes:

	GET /                    service description and example links
	GET /health              liveness plus model load state
	GET /metrics             Prometheus metrics
	GET /v1/model-info       run id, manifest, and evaluation metrics
	GET /v1/movies/{id}      one catalog entry
	GET /v1/movies/search    substring title search
	GET /v1/recommendations  ranked movies for a user
	GET /v1/similar-items    movies similar to a seed movie

Response conventions:

Success bodies are flat JSON documents whose shape is part of the
published interface. Error bodies share one envelope:

	{"error": {"code": "MODELS_NOT_LOADED", "message": "...", "request_id": "..."}}

Status codes follow the availability model: 503 when the mandatory
popularity model is not loaded, 400 when the optional content model is
requested but unavailable, 404 for unknown movies, 400 for parameter
errors, 500 for anything unexpected.

The router composes Chi with go-chi/cors for CORS, go-chi/httprate for
per-IP rate limiting, and the middleware package for request IDs,
Prometheus instrumentation, compression, and latency tracking.
*/
package api
