// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package validation

import (
	"strings"
	"testing"
)

// ===================================================================================================
// Singleton Validator Tests
// ===================================================================================================

func TestGetValidator_Singleton(t *testing.T) {
	// Test that GetValidator returns the same instance
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}

	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

// ===================================================================================================
// ValidateStruct Tests
// ===================================================================================================

// recommendationsParams mirrors the query parameter surface of the
// recommendations endpoint.
type recommendationsParams struct {
	UserID   int64  `validate:"required,min=1"`
	K        int    `validate:"min=1,max=50"`
	Strategy string `validate:"oneof=popularity content"`
}

// searchParams mirrors the query parameter surface of the search endpoint.
type searchParams struct {
	Query string `validate:"required,min=1"`
	Limit int    `validate:"min=1,max=50"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input recommendationsParams
	}{
		{
			name: "all valid fields",
			input: recommendationsParams{
				UserID:   42,
				K:        10,
				Strategy: "popularity",
			},
		},
		{
			name: "minimum values",
			input: recommendationsParams{
				UserID:   1,
				K:        1,
				Strategy: "content",
			},
		},
		{
			name: "maximum k",
			input: recommendationsParams{
				UserID:   99999,
				K:        50,
				Strategy: "popularity",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     recommendationsParams
		wantField string
		wantTag   string
	}{
		{
			name: "missing user id",
			input: recommendationsParams{
				K:        10,
				Strategy: "popularity",
			},
			wantField: "UserID",
			wantTag:   "required",
		},
		{
			name: "negative user id",
			input: recommendationsParams{
				UserID:   -5,
				K:        10,
				Strategy: "popularity",
			},
			wantField: "UserID",
			wantTag:   "min",
		},
		{
			name: "k too low",
			input: recommendationsParams{
				UserID:   1,
				K:        0,
				Strategy: "popularity",
			},
			wantField: "K",
			wantTag:   "min",
		},
		{
			name: "k too high",
			input: recommendationsParams{
				UserID:   1,
				K:        51,
				Strategy: "popularity",
			},
			wantField: "K",
			wantTag:   "max",
		},
		{
			name: "unknown strategy",
			input: recommendationsParams{
				UserID:   1,
				K:        10,
				Strategy: "collaborative",
			},
			wantField: "Strategy",
			wantTag:   "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}

			errs := err.Errors()
			if len(errs) == 0 {
				t.Fatal("ValidationErrors should contain at least one error")
			}

			found := false
			for _, e := range errs {
				if e.Field() == tt.wantField && e.Tag() == tt.wantTag {
					found = true
					break
				}
			}

			if !found {
				t.Errorf("Expected error on field %s with tag %s, got: %v", tt.wantField, tt.wantTag, errs)
			}
		})
	}
}

func TestValidateStruct_SearchParams(t *testing.T) {
	valid := searchParams{Query: "toy story", Limit: 20}
	if err := ValidateStruct(&valid); err != nil {
		t.Errorf("ValidateStruct() returned unexpected error: %v", err)
	}

	empty := searchParams{Query: "", Limit: 20}
	err := ValidateStruct(&empty)
	if err == nil {
		t.Fatal("ValidateStruct() should reject an empty query")
	}
	if errs := err.Errors(); len(errs) != 1 || errs[0].Field() != "Query" {
		t.Errorf("expected single error on Query, got: %v", errs)
	}
}

// ===================================================================================================
// ToAPIError Tests
// ===================================================================================================

func TestToAPIError_SingleError(t *testing.T) {
	input := recommendationsParams{
		UserID:   0, // required field missing
		K:        10,
		Strategy: "popularity",
	}

	err := ValidateStruct(&input)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()

	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message == "" {
		t.Error("Message should not be empty")
	}
	if apiErr.Details == nil {
		t.Fatal("Details should be populated for a single error")
	}
	if apiErr.Details["field"] != "UserID" {
		t.Errorf("Details[field] = %v, want UserID", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	input := recommendationsParams{
		UserID:   0,
		K:        100,
		Strategy: "magic",
	}

	err := ValidateStruct(&input)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	if len(err.Errors()) < 2 {
		t.Fatalf("expected multiple errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()

	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] has unexpected type %T", apiErr.Details["fields"])
	}
	if len(fields) != len(err.Errors()) {
		t.Errorf("Details lists %d fields, want %d", len(fields), len(err.Errors()))
	}
	// Combined message should mention each failing field
	for _, e := range err.Errors() {
		if !strings.Contains(apiErr.Message, e.Field()) {
			t.Errorf("Message %q missing field %s", apiErr.Message, e.Field())
		}
	}
}

func TestToAPIError_Empty(t *testing.T) {
	ve := &RequestValidationError{}

	apiErr := ve.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "Validation failed" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "Validation failed")
	}
}

// ===================================================================================================
// Error Message Translation Tests
// ===================================================================================================

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		wantMsg string
	}{
		{
			name: "min on integer",
			input: &recommendationsParams{
				UserID:   -1,
				K:        10,
				Strategy: "popularity",
			},
			wantMsg: "UserID must be at least 1",
		},
		{
			name: "max on integer",
			input: &recommendationsParams{
				UserID:   1,
				K:        500,
				Strategy: "popularity",
			},
			wantMsg: "K must be at most 50",
		},
		{
			name: "oneof includes allowed values",
			input: &recommendationsParams{
				UserID:   1,
				K:        10,
				Strategy: "hybrid",
			},
			wantMsg: "Strategy must be one of: popularity content",
		},
		{
			name: "required",
			input: &searchParams{
				Query: "",
				Limit: 10,
			},
			wantMsg: "Query is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("Expected validation error")
			}

			found := false
			for _, e := range err.Errors() {
				if e.Error() == tt.wantMsg {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected message %q, got: %v", tt.wantMsg, err.Error())
			}
		})
	}
}

// TestValidationError_Accessors verifies the structured error accessors
func TestValidationError_Accessors(t *testing.T) {
	input := recommendationsParams{
		UserID:   1,
		K:        99,
		Strategy: "popularity",
	}

	err := ValidateStruct(&input)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	e := err.Errors()[0]
	if e.Field() != "K" {
		t.Errorf("Field() = %q, want K", e.Field())
	}
	if e.Tag() != "max" {
		t.Errorf("Tag() = %q, want max", e.Tag())
	}
	if e.Param() != "50" {
		t.Errorf("Param() = %q, want 50", e.Param())
	}
	if e.Value() != 99 {
		t.Errorf("Value() = %v, want 99", e.Value())
	}
}
