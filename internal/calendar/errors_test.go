package calendar

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestMapErrorNil(t *testing.T) {
	if got := MapError(nil); got != nil {
		t.Errorf("MapError(nil) = %v", got)
	}
}

func TestMapErrorEnvelopeMessageWins(t *testing.T) {
	err := &googleapi.Error{
		Code:    http.StatusForbidden,
		Message: "outer message",
		Body:    `{"error":{"code":403,"message":"Forbidden"}}`,
	}

	got := MapError(err)
	if got.Status != http.StatusForbidden {
		t.Errorf("Status = %d, want 403", got.Status)
	}
	if got.Message != "Forbidden" {
		t.Errorf("Message = %q, want Forbidden", got.Message)
	}
}

func TestMapErrorWrappedUpstream(t *testing.T) {
	inner := &googleapi.Error{Code: http.StatusNotFound, Message: "Not Found"}
	got := MapError(fmt.Errorf("failed to get calendar: %w", inner))
	if got.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", got.Status)
	}
	if got.Message != "Not Found" {
		t.Errorf("Message = %q", got.Message)
	}
}

func TestMapErrorFallsBackToErrorMessage(t *testing.T) {
	got := MapError(&googleapi.Error{Code: http.StatusBadGateway, Body: "not json"})
	if got.Status != http.StatusBadGateway {
		t.Errorf("Status = %d", got.Status)
	}
	// No envelope, no Message field: falls through to err.Error(), which
	// googleapi formats from the code.
	if got.Message == "" {
		t.Error("Message should never be empty")
	}
}

func TestMapErrorGenericError(t *testing.T) {
	got := MapError(errors.New("connection refused"))
	if got.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", got.Status)
	}
	if got.Message != "connection refused" {
		t.Errorf("Message = %q", got.Message)
	}
}

func TestMapErrorZeroCodeDefaultsTo500(t *testing.T) {
	got := MapError(&googleapi.Error{Message: "broken pipe"})
	if got.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", got.Status)
	}
	if got.Message != "broken pipe" {
		t.Errorf("Message = %q", got.Message)
	}
}
