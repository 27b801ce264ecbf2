package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTransport    = errors.New("note store unreachable")
	ErrServer       = errors.New("note store error")
	ErrNotFound     = errors.New("note not found")
	ErrValidation   = errors.New("invalid note")
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError is a non-2xx answer from the note store.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Unwrap exposes the sentinel matching the status code.
func (e *StatusError) Unwrap() []error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return []error{ErrNotFound}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return []error{ErrValidation}
	case http.StatusUnauthorized, http.StatusForbidden:
		return []error{ErrServer, ErrUnauthorized}
	default:
		return []error{ErrServer}
	}
}
