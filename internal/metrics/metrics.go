// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - API endpoint latency and throughput
// - Model artifact loading (popularity, content TF-IDF)
// - Recommendation serving per strategy
// - Offline training and evaluation runs

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Model Artifact Metrics
	ModelLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "Whether a model artifact is loaded (1) or not (0)",
		},
		[]string{"model"}, // "popularity", "content_tfidf"
	)

	ModelLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "model_load_duration_seconds",
			Help:    "Duration of model artifact loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	ModelLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_load_errors_total",
			Help: "Total number of model artifact load failures",
		},
		[]string{"model", "error_type"},
	)

	ModelItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_items",
			Help: "Number of items held by a loaded model",
		},
		[]string{"model"},
	)

	// Recommendation Serving Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation responses served",
		},
		[]string{"strategy"}, // "popularity", "content"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_compute_duration_seconds",
			Help:    "Duration of in-memory recommendation computation in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"strategy"},
	)

	SimilarItemQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "similar_item_queries_total",
			Help: "Total number of similar-item queries",
		},
	)

	CatalogSearches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_searches_total",
			Help: "Total number of catalog title searches",
		},
	)

	// Training Pipeline Metrics
	DatasetDownloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataset_download_duration_seconds",
			Help:    "Duration of dataset archive downloads in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600}, // Downloads can take minutes
		},
	)

	DatasetRowsLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dataset_rows_loaded",
			Help: "Number of rows loaded from a dataset file",
		},
		[]string{"file"}, // "ratings", "movies"
	)

	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Duration of model training in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"model"},
	)

	EvalScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eval_score",
			Help: "Offline evaluation score for a trained model",
		},
		[]string{"model", "metric"}, // metric: "precision_at_k", "recall_at_k", "coverage"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackInFlightRequest tracks active HTTP requests.
func TrackInFlightRequest(inc bool) {
	if inc {
		HTTPRequestsInFlight.Inc()
	} else {
		HTTPRequestsInFlight.Dec()
	}
}

// RecordModelLoad records a model artifact load attempt.
func RecordModelLoad(model string, duration time.Duration, err error) {
	ModelLoadDuration.WithLabelValues(model).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		ModelLoadErrors.WithLabelValues(model, errorType).Inc()
		ModelLoaded.WithLabelValues(model).Set(0)
		return
	}
	ModelLoaded.WithLabelValues(model).Set(1)
}

// SetModelItems records the item count of a loaded model.
func SetModelItems(model string, count int) {
	ModelItems.WithLabelValues(model).Set(float64(count))
}

// RecordRecommendation records a served recommendation response.
func RecordRecommendation(strategy string, duration time.Duration) {
	RecommendationsServed.WithLabelValues(strategy).Inc()
	RecommendationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordSimilarItemQuery records a similar-item lookup.
func RecordSimilarItemQuery() {
	SimilarItemQueries.Inc()
}

// RecordCatalogSearch records a catalog title search.
func RecordCatalogSearch() {
	CatalogSearches.Inc()
}

// RecordDatasetDownload records a dataset archive download.
func RecordDatasetDownload(duration time.Duration) {
	DatasetDownloadDuration.Observe(duration.Seconds())
}

// SetDatasetRows records the row count loaded from a dataset file.
func SetDatasetRows(file string, rows int) {
	DatasetRowsLoaded.WithLabelValues(file).Set(float64(rows))
}

// RecordTraining records the duration of a model training run.
func RecordTraining(model string, duration time.Duration) {
	TrainingDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// SetEvalScore records an offline evaluation score.
func SetEvalScore(model, metric string, value float64) {
	EvalScore.WithLabelValues(model, metric).Set(value)
}

// SetAppInfo records application build information.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
