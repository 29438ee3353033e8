package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-analytics-bff/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"missing access token", errors.ErrMissingAccessToken, http.StatusUnauthorized},
		{"wrapped missing refresh token", fmt.Errorf("refresh: %w", errors.ErrMissingRefreshToken), http.StatusUnauthorized},
		{"missing code", errors.ErrMissingCode, http.StatusBadRequest},
		{"invalid request", errors.Wrapf(errors.ErrInvalidRequest, "officeId"), http.StatusBadRequest},
		{"not found", errors.ErrNotFound, http.StatusNotFound},
		{"upstream passthrough", &errors.UpstreamError{Service: "analytics", Status: http.StatusTeapot}, http.StatusTeapot},
		{"transport failure", errors.Wrapf(errors.ErrUpstream, "directory"), http.StatusBadGateway},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, errors.StatusCode(tt.err))
		})
	}
}

func TestUpstreamError(t *testing.T) {
	err := &errors.UpstreamError{Service: "directory", Status: http.StatusForbidden, Body: " forbidden \n"}
	require.Equal(t, "directory responded 403: forbidden", err.Error())
	require.True(t, errors.Is(err, errors.ErrUpstream))

	var upstream *errors.UpstreamError
	require.True(t, errors.As(errors.Wrapf(err, "search"), &upstream))
	require.Equal(t, http.StatusForbidden, upstream.Status)
}

func TestWrapf(t *testing.T) {
	require.NoError(t, errors.Wrapf(nil, "context"))
	err := errors.Wrapf(errors.ErrNotFound, "office %s", "Canada")
	require.EqualError(t, err, "office Canada: not found")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}
