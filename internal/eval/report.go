// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package eval

import (
	"fmt"
	"time"
)

// RenderReport produces the markdown report.md for a training run.
func RenderReport(runID string, generatedAt time.Time, popularity, content Result) string {
	ts := generatedAt.UTC().Format("2006-01-02T15:04:05.000000") + "Z"
	return fmt.Sprintf(`# Offline Evaluation Report

Run ID: `+"`%s`"+`
Generated: `+"`%s`"+`

## Results (k=10)

| Model | Precision@10 | Recall@10 | Coverage |
|---|---:|---:|---:|
| Popularity | %.4f | %.4f | %.4f |
| Content TF-IDF | %.4f | %.4f | %.4f |

## Notes
- Chronological per-user split; each user's most recent ratings are held out.
- Offline numbers understate user-agnostic strategies; treat them as a floor.
`,
		runID, ts,
		popularity.PrecisionAtK, popularity.RecallAtK, popularity.Coverage,
		content.PrecisionAtK, content.RecallAtK, content.Coverage,
	)
}
