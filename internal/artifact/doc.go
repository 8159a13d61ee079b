// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

// Package artifact stores and loads the outputs of a training run: the
// serialized models the API serves plus the run's manifest, evaluation
// metrics, and report.
//
// # Overview
//
// The artifact store provides:
//   - Gob serialization for efficient Go type encoding
//   - Gzip compression to reduce storage footprint
//   - SHA-256 checksums for data integrity verification
//   - Atomic writes so readers never see partial files
//   - JSON run documents for manifests and metrics
//
// # Directory Layout
//
// Each training run owns a directory named by its run id:
//
//	/data/artifacts/
//	  2026-08-20-full/
//	    manifest.json
//	    metrics.json
//	    report.md
//	    models/
//	      popularity.gob.gz
//	      content_tfidf.gob.gz
//
// The serving process is pointed at one run id and loads from that
// directory only. A new run never disturbs an old one, so rolling back
// is a config change.
//
// # Model File Format
//
// Model files hold a single gob-encoded envelope:
//
//	structure:
//	  - Metadata (ModelMetadata)
//	  - CompressedData (gzip-compressed gob-encoded model state)
//
// On load the store decompresses the payload, verifies its SHA-256
// against the stored checksum, and only then decodes the model.
// A checksum or decode failure surfaces as ErrCorrupt; a missing file
// surfaces as ErrNotFound. The serving layer treats the two
// differently: a run without a content model is a valid degraded
// state, a corrupt one is not.
//
// # Usage Example
//
// Saving after training:
//
//	store, err := artifact.NewStore("/data/artifacts")
//	if err != nil {
//	    log.Fatal().Err(err).Msg("open artifact store")
//	}
//
//	meta := artifact.ModelMetadata{
//	    TrainedAt:   time.Now().UTC(),
//	    RatingCount: len(train),
//	    ItemCount:   model.Len(),
//	}
//	err = store.SavePopularity(ctx, runID, model, meta)
//
// Loading in the serving process:
//
//	model, meta, err := store.LoadPopularity(ctx, runID)
//	if errors.Is(err, artifact.ErrNotFound) {
//	    // run was never trained
//	}
//
// # Atomicity
//
// Every file (models and documents alike) is written to a temp file in
// the destination directory and renamed into place. Rename is atomic
// on POSIX filesystems, so a serving process reading mid-write sees
// either the old complete file or the new complete file.
//
// # Thread Safety
//
// All store operations are safe for concurrent use. Saves take a write
// lock; loads share a read lock and can run concurrently.
//
// # See Also
//
//   - internal/recommend: the model types stored here
//   - internal/service: loads models at startup and on demand
package artifact
