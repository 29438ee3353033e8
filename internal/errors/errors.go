package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common error types for the BFF
var (
	// Credential errors
	ErrMissingAccessToken  = errors.New("missing access token")
	ErrMissingRefreshToken = errors.New("no refresh token")

	// Callback errors
	ErrMissingCode  = errors.New("missing authorization code")
	ErrInvalidState = errors.New("invalid state")

	// Request errors
	ErrInvalidRequest = errors.New("invalid request")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrUpstream = errors.New("upstream request failed")
	ErrInternal = errors.New("internal error")
)

// UpstreamError is returned when a downstream service answers with a non-success status.
// Status and Body are passed through to the caller where feasible.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
	// Code is the OAuth2 "error" field when the upstream is the token endpoint.
	Code string
}

func (e *UpstreamError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s responded %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s responded %d: %s", e.Service, e.Status, body)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// StatusCode maps an error onto the HTTP status the API flows respond with.
func StatusCode(err error) int {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &upstream):
		return upstream.Status
	case errors.Is(err, ErrMissingAccessToken), errors.Is(err, ErrMissingRefreshToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrMissingCode), errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors
func Join(errs ...error) error {
	return errors.Join(errs...)
}
