// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring serving performance, model readiness,
and offline training runs.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Model artifact load outcomes and durations
  - Recommendation serving per strategy
  - Dataset loading and training pipeline statistics

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

HTTP Metrics:
  - http_requests_total: Total HTTP requests (counter)
    Labels: method, endpoint, status_code
  - http_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - http_requests_in_flight: Active requests (gauge)
  - rate_limit_rejections_total: Rate limit rejections (counter)
    Labels: endpoint

Model Metrics:
  - model_loaded: Artifact load state, 1=loaded 0=not (gauge)
    Labels: model (popularity, content_tfidf)
  - model_load_duration_seconds: Artifact load time (histogram)
    Labels: model
  - model_load_errors_total: Failed artifact loads (counter)
    Labels: model, error_type
  - model_items: Items held by a loaded model (gauge)
    Labels: model

Serving Metrics:
  - recommendations_served_total: Recommendation responses (counter)
    Labels: strategy (popularity, content)
  - recommendation_compute_duration_seconds: In-memory ranking time (histogram)
    Labels: strategy
  - similar_item_queries_total: Similar-item lookups (counter)
  - catalog_searches_total: Catalog title searches (counter)

Training Metrics:
  - dataset_download_duration_seconds: Archive download time (histogram)
  - dataset_rows_loaded: Rows loaded per dataset file (gauge)
    Labels: file (ratings, movies)
  - training_duration_seconds: Model training time (histogram)
    Labels: model
  - eval_score: Offline evaluation scores (gauge)
    Labels: model, metric (precision_at_k, recall_at_k, coverage)

# Usage Example

Basic setup in main.go:

	import (
	    "github.com/marekv42/reelrank/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    http.Handle("/metrics", promhttp.Handler())

	    metrics.RecordHTTPRequest("GET", "/v1/recommendations", "200", 23*time.Millisecond)
	    metrics.RecordModelLoad("popularity", 150*time.Millisecond, nil)
	    metrics.RecordRecommendation("popularity", 800*time.Microsecond)
	}

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use route patterns, never raw URLs with IDs
  - Strategy and model labels are limited to predefined constants
  - User-specific labels are avoided

# See Also

  - internal/middleware: HTTP middleware with metrics integration
  - internal/service: Model load metrics recording
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
