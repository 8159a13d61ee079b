// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package api

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

func TestRouter_AssignsRequestID(t *testing.T) {
	h := newReadyServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	id := rec.Header().Get("X-Request-ID")
	if id == "" {
		t.Fatal("no X-Request-ID on response")
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("X-Request-ID %q is not a UUID: %v", id, err)
	}
}

func TestRouter_SecurityHeadersOnV1(t *testing.T) {
	h := newReadyServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/model-info", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	h := newReadyServer(t)

	// Generate some traffic first so request metrics exist.
	doGet(t, h, "/health")
	doGet(t, h, "/v1/recommendations?user_id=1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "# HELP") {
		t.Error("metrics output does not look like Prometheus exposition format")
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Error("http_requests_total not present in metrics output")
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := newReadyServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/recommendations", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("405 body is not the error envelope: %q", rec.Body.String())
	}
	if success, _ := body["success"].(bool); success {
		t.Error("405 body success = true, want false")
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	h := newReadyServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("404 body is not the error envelope: %q", rec.Body.String())
	}
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("404 body has no error object: %v", body)
	}
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("404 code = %v, want NOT_FOUND", errObj["code"])
	}
}

func TestRouter_GzipOnV1(t *testing.T) {
	h := newReadyServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/model-info", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}

	gz, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer gz.Close()
	raw, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("reading gzip body: %v", err)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decompressed body is not JSON: %v", err)
	}
	if body["run_id"] != testRunID {
		t.Errorf("run_id = %v, want %s", body["run_id"], testRunID)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	dir := t.TempDir()
	trainArtifacts(t, dir, true, false)

	cfg := testConfig(dir)
	cfg.Security.RateLimitDisabled = false
	cfg.Security.RateLimitReqs = 2
	cfg.Security.RateLimitWindow = time.Minute

	h := routerForConfig(t, dir, cfg)

	var lastCode int
	var lastBody []byte
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/recommendations?user_id=1", nil))
		lastCode = rec.Code
		lastBody = rec.Body.Bytes()
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", lastCode)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(lastBody, &body); err != nil {
		t.Fatalf("429 body is not JSON: %v", err)
	}
	if code := errorCode(t, body); code != ErrCodeRateLimited {
		t.Errorf("code = %s, want %s", code, ErrCodeRateLimited)
	}
}

func TestRouter_HealthNotRateLimitedWithAPI(t *testing.T) {
	dir := t.TempDir()
	trainArtifacts(t, dir, true, false)

	cfg := testConfig(dir)
	cfg.Security.RateLimitDisabled = false
	cfg.Security.RateLimitReqs = 1
	cfg.Security.RateLimitWindow = time.Minute

	h := routerForConfig(t, dir, cfg)

	// Exhaust the data endpoint budget.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/model-info", nil))

	// Health has its own, far larger budget and still answers.
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("health probe %d status = %d, want 200", i, rec.Code)
		}
	}
}
