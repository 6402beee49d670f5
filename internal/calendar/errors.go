package calendar

import (
	"encoding/json"
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// FallbackErrorMessage is used when the upstream failure carries no usable
// message at all.
const FallbackErrorMessage = "calendar request failed"

// UpstreamError is the typed result of mapping an upstream failure: the
// HTTP status to respond with and a human-readable message.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// errorEnvelope mirrors the JSON error body the Calendar API returns:
// {"error": {"code": ..., "message": ...}}.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// MapError converts any upstream failure into an UpstreamError.
//
// Message precedence: the message nested in the upstream error envelope,
// then the error's own message, then FallbackErrorMessage. Status
// precedence: the status carried on the upstream error, then 500.
func MapError(err error) *UpstreamError {
	if err == nil {
		return nil
	}

	mapped := &UpstreamError{Status: http.StatusInternalServerError}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code != 0 {
			mapped.Status = gerr.Code
		}
		mapped.Message = envelopeMessage(gerr.Body)
		if mapped.Message == "" {
			mapped.Message = gerr.Message
		}
	}

	if mapped.Message == "" {
		mapped.Message = err.Error()
	}
	if mapped.Message == "" {
		mapped.Message = FallbackErrorMessage
	}
	return mapped
}

func envelopeMessage(body string) string {
	if body == "" {
		return ""
	}
	var envelope errorEnvelope
	if jsonErr := json.Unmarshal([]byte(body), &envelope); jsonErr != nil {
		return ""
	}
	return envelope.Error.Message
}
