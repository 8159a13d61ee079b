// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

// Package main is the entry point for the Reelrank trainer.
//
// The trainer is a batch job. One invocation runs the full training
// pipeline and writes a self-contained artifact directory that the
// server (reelrank-server) loads at startup:
//
//  1. Fetch the MovieLens ml-latest-small dataset (skipped when the
//     extracted directory already exists)
//  2. Load ratings.csv and movies.csv
//  3. Split ratings chronologically into train and test windows
//  4. Train the popularity model on the train window and the TF-IDF
//     content model on the full movie catalog
//  5. Evaluate both models offline (precision@k, recall@k, coverage)
//  6. Save models, metrics.json, report.md, and manifest.json under
//     {artifacts.dir}/{run_id}
//
// The run id comes from configuration (RUN_ID or artifacts.run_id).
// Writing a run the server already serves is safe: every artifact is
// written atomically, and the running server keeps its in-memory models
// until it restarts.
//
// # Example Usage
//
//	export ARTIFACTS_DIR=/var/lib/reelrank/artifacts
//	export DATA_DIR=/var/lib/reelrank/data
//	export RUN_ID=2026-08-23
//	./reelrank-trainer
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marekv42/reelrank/internal/artifact"
	"github.com/marekv42/reelrank/internal/catalog"
	"github.com/marekv42/reelrank/internal/config"
	"github.com/marekv42/reelrank/internal/dataset"
	"github.com/marekv42/reelrank/internal/eval"
	"github.com/marekv42/reelrank/internal/logging"
	"github.com/marekv42/reelrank/internal/metrics"
	"github.com/marekv42/reelrank/internal/recommend"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

const (
	// testRatio is the chronological share of ratings held out for
	// offline evaluation.
	testRatio = 0.2

	// evalK is the list length used for precision@k and recall@k.
	evalK = 10
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting Reelrank trainer")
	metrics.SetAppInfo(version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	start := time.Now()
	if err := run(ctx, cfg); err != nil {
		logging.Fatal().Err(err).Msg("Training run failed")
	}
	logging.Info().
		Str("run_id", cfg.Artifacts.RunID).
		Dur("duration", time.Since(start)).
		Msg("Training run complete")
}

// run executes the training pipeline end to end.
func run(ctx context.Context, cfg *config.Config) error {
	runID := cfg.Artifacts.RunID

	logging.Info().
		Str("run_id", runID).
		Str("data_dir", cfg.Data.Dir).
		Str("artifacts_dir", cfg.Artifacts.Dir).
		Msg("Training pipeline started")

	datasetDir, err := dataset.Download(ctx, cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("fetch dataset: %w", err)
	}

	ratings, err := dataset.LoadRatings(datasetDir)
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}
	movies, err := dataset.LoadMovies(datasetDir)
	if err != nil {
		return fmt.Errorf("load movies: %w", err)
	}
	metrics.SetDatasetRows("ratings", len(ratings))
	metrics.SetDatasetRows("movies", len(movies))
	logging.Info().
		Int("ratings", len(ratings)).
		Int("movies", len(movies)).
		Msg("Dataset loaded")

	split := eval.ChronologicalSplit(ratings, testRatio)
	logging.Info().
		Int("train", len(split.Train)).
		Int("test", len(split.Test)).
		Float64("test_ratio", testRatio).
		Msg("Ratings split chronologically")

	cat := catalog.FromMovies(movies)

	store, err := artifact.NewStore(cfg.Artifacts.Dir)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}

	popStart := time.Now()
	pop := recommend.TrainPopularity(split.Train)
	popDur := time.Since(popStart)
	metrics.RecordTraining(artifact.PopularityModelName, popDur)
	logging.Info().
		Int("items", pop.Len()).
		Dur("duration", popDur).
		Msg("Popularity model trained")

	contentStart := time.Now()
	content := recommend.TrainContent(cat.Items())
	contentDur := time.Since(contentStart)
	metrics.RecordTraining(artifact.ContentModelName, contentDur)
	logging.Info().
		Int("items", content.Len()).
		Dur("duration", contentDur).
		Msg("Content model trained")

	popResult := eval.Evaluate(pop, split.Train, split.Test, evalK)
	contentResult := eval.Evaluate(content, split.Train, split.Test, evalK)
	recordEvalScores(artifact.PopularityModelName, popResult)
	recordEvalScores(artifact.ContentModelName, contentResult)
	logging.Info().
		Float64("precision_at_k", popResult.PrecisionAtK).
		Float64("recall_at_k", popResult.RecallAtK).
		Float64("coverage", popResult.Coverage).
		Msg("Popularity model evaluated")
	logging.Info().
		Float64("precision_at_k", contentResult.PrecisionAtK).
		Float64("recall_at_k", contentResult.RecallAtK).
		Float64("coverage", contentResult.Coverage).
		Msg("Content model evaluated")

	trainedAt := time.Now().UTC()

	if err := store.SavePopularity(ctx, runID, pop, artifact.ModelMetadata{
		TrainedAt:          trainedAt,
		RatingCount:        len(split.Train),
		ItemCount:          pop.Len(),
		TrainingDurationMS: popDur.Milliseconds(),
	}); err != nil {
		return fmt.Errorf("save popularity model: %w", err)
	}

	if err := store.SaveContent(ctx, runID, content, artifact.ModelMetadata{
		TrainedAt:          trainedAt,
		ItemCount:          content.Len(),
		TrainingDurationMS: contentDur.Milliseconds(),
	}); err != nil {
		return fmt.Errorf("save content model: %w", err)
	}

	if err := store.WriteMetrics(runID, eval.RunMetrics{
		RunID:      runID,
		Popularity: popResult,
		Content:    contentResult,
	}); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	report := eval.RenderReport(runID, trainedAt, popResult, contentResult)
	if err := store.WriteReport(runID, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if err := store.WriteManifest(runID, artifact.Manifest{
		Dataset:   dataset.DatasetDirName,
		CreatedAt: trainedAt,
		Rows: artifact.RowCounts{
			RatingsTrain: len(split.Train),
			RatingsTest:  len(split.Test),
			Movies:       len(movies),
		},
		Models: []string{artifact.PopularityModelName, artifact.ContentModelName},
	}); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	logging.Info().Str("dir", store.RunDir(runID)).Msg("Artifacts written")
	return nil
}

// recordEvalScores exports one model's offline metrics as gauges.
func recordEvalScores(model string, r eval.Result) {
	metrics.SetEvalScore(model, "precision_at_k", r.PrecisionAtK)
	metrics.SetEvalScore(model, "recall_at_k", r.RecallAtK)
	metrics.SetEvalScore(model, "coverage", r.Coverage)
}
