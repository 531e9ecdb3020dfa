package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alikamatu/medi-rides-sub003/internal/common/response"
	"github.com/alikamatu/medi-rides-sub003/internal/lifecycle"
	"github.com/alikamatu/medi-rides-sub003/internal/repository"
	"github.com/alikamatu/medi-rides-sub003/internal/rides"
)

func TestWriteRideErrorMapping(t *testing.T) {
	app := &Config{}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			"invalid transition is 422",
			fmt.Errorf("%w: COMPLETED -> PENDING", lifecycle.ErrInvalidTransition),
			http.StatusUnprocessableEntity, "INVALID_TRANSITION", "status",
		},
		{
			"missing assignment has its own code",
			fmt.Errorf("%w: cannot reach CONFIRMED", lifecycle.ErrMissingAssignment),
			http.StatusUnprocessableEntity, "MISSING_ASSIGNMENT", "status",
		},
		{
			"premature final price has its own code",
			fmt.Errorf("%w: attempted on transition to ASSIGNED", lifecycle.ErrFinalPriceNotAllowed),
			http.StatusUnprocessableEntity, "FINAL_PRICE_NOT_ALLOWED", "final_price",
		},
		{
			"missing record is 404",
			fmt.Errorf("loading ride: %w", repository.ErrNotFound),
			http.StatusNotFound, "", "",
		},
		{
			"unavailable driver is 400",
			fmt.Errorf("%w: driver d1", rides.ErrDriverUnavailable),
			http.StatusBadRequest, "", "",
		},
		{
			"unknown error is 500",
			fmt.Errorf("connection reset"),
			http.StatusInternalServerError, "", "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.writeRideError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode == "" {
				return
			}

			var body response.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if len(body.Details) != 1 {
				t.Fatalf("details = %d entries, want 1", len(body.Details))
			}
			if body.Details[0].Code != tt.wantCode {
				t.Errorf("detail code = %q, want %q", body.Details[0].Code, tt.wantCode)
			}
			if body.Details[0].Field != tt.wantField {
				t.Errorf("detail field = %q, want %q", body.Details[0].Field, tt.wantField)
			}
		})
	}
}
