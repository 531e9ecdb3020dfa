package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies API failures so callers can branch without parsing
// messages or status codes.
type Kind string

const (
	// Unauthenticated means no token was available or the token was
	// rejected. The session is cleared before this surfaces.
	Unauthenticated Kind = "UNAUTHENTICATED"
	// Unauthorized means the identity is valid but the role may not
	// access the resource.
	Unauthorized Kind = "UNAUTHORIZED"
	// ValidationFailed covers malformed input and illegal ride
	// lifecycle transitions.
	ValidationFailed Kind = "VALIDATION_FAILED"
	// NotFound means the requested record does not exist.
	NotFound Kind = "NOT_FOUND"
	// TransientNetworkFailure means no response was received at all.
	TransientNetworkFailure Kind = "TRANSIENT_NETWORK_FAILURE"
	// ServerFault covers 5xx responses.
	ServerFault Kind = "SERVER_FAULT"
)

// FieldError is a field- or transition-level detail from the server.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error is the typed failure every call returns on the unhappy path.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details []FieldError
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf extracts the kind from an error, or "" for non-API errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// kindForStatus maps an HTTP status onto the taxonomy.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return Unauthenticated
	case status == http.StatusForbidden:
		return Unauthorized
	case status == http.StatusNotFound:
		return NotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ValidationFailed
	case status >= 500:
		return ServerFault
	default:
		return ServerFault
	}
}

// fallbackMessage is used when the server body carried no message.
func fallbackMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Your session has expired, please log in again"
	case http.StatusForbidden:
		return "You do not have permission to do that"
	case http.StatusNotFound:
		return "The requested record was not found"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "The request was not valid"
	default:
		return "Something went wrong, please try again"
	}
}
