// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/marekv42/reelrank/internal/logging"
	"github.com/marekv42/reelrank/internal/middleware"
	"github.com/marekv42/reelrank/internal/validation"
)

// Error codes returned in the error envelope. The code is the stable,
// machine-readable half of an error; the message may be reworded.
const (
	// ErrCodeValidation covers missing, malformed, and out-of-range
	// request parameters. Matches the code the validation package emits.
	ErrCodeValidation = "VALIDATION_ERROR"

	// ErrCodeNotFound means the requested movie is not in the catalog.
	ErrCodeNotFound = "NOT_FOUND"

	// ErrCodeModelsNotLoaded means the mandatory popularity model is
	// absent or corrupt. Returned with 503; train first, then restart.
	ErrCodeModelsNotLoaded = "MODELS_NOT_LOADED"

	// ErrCodeContentUnavailable means the optional content model could
	// not be loaded. Returned with 400; popularity still works.
	ErrCodeContentUnavailable = "CONTENT_UNAVAILABLE"

	// ErrCodeRateLimited means the per-IP request budget was exhausted.
	ErrCodeRateLimited = "RATE_LIMITED"

	// ErrCodeInternal is the catch-all for unexpected failures.
	ErrCodeInternal = "INTERNAL_ERROR"
)

// APIError is the error half of the error envelope.
type APIError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// errorEnvelope wraps APIError for the wire. Success responses are
// flat documents and never use it, so success is always false here.
type errorEnvelope struct {
	Success   bool      `json:"success"`
	Error     *APIError `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

func newErrorEnvelope(apiErr *APIError) *errorEnvelope {
	return &errorEnvelope{
		Success:   false,
		Error:     apiErr,
		Timestamp: time.Now().UTC(),
	}
}

// respondJSON writes v as the complete response body.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes the error envelope. The wrapped err, when
// non-nil, is logged but never sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	apiErr := &APIError{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetRequestID(r.Context()),
	}

	event := logging.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logging.Ctx(r.Context()).Error()
	}
	if err != nil {
		event = event.Str("error", sanitizeLogValue(err.Error()))
	}
	event.
		Int("status", status).
		Str("code", sanitizeLogValue(code)).
		Str("path", r.URL.Path).
		Msg("Request failed")

	respondJSON(w, status, newErrorEnvelope(apiErr))
}

// respondValidationError converts a validation failure into a 400.
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondJSON(w, http.StatusBadRequest, newErrorEnvelope(&APIError{
		Code:      apiErr.Code,
		Message:   apiErr.Message,
		Details:   apiErr.Details,
		RequestID: middleware.GetRequestID(r.Context()),
	}))
}

// generateETag creates a weak validator from the body using FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// sanitizeLogValue replaces control characters so request-derived
// strings cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
