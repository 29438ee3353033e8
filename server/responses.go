package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-analytics-bff/internal/errors"
	"github.com/rs/zerolog"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
)

// detailResponse is the error body of API flows. The SPA reads "detail".
type detailResponse struct {
	Detail string `json:"detail"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRawJSON writes an upstream JSON body through unchanged.
func writeRawJSON(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

func writeDetail(w http.ResponseWriter, statusCode int, detail string) {
	writeJSON(w, statusCode, detailResponse{Detail: detail})
}

// writeError maps err onto a status code and a detail message. Upstream rejections
// keep the downstream status and body text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.StatusCode(err)
	detail := http.StatusText(status)

	var upstream *errors.UpstreamError
	switch {
	case errors.As(err, &upstream):
		detail = upstream.Body
		if detail == "" {
			detail = http.StatusText(status)
		}
	case errors.Is(err, errors.ErrMissingAccessToken):
		detail = "Missing access token"
	case errors.Is(err, errors.ErrMissingRefreshToken):
		detail = "No refresh token"
	case errors.Is(err, errors.ErrMissingCode):
		detail = "Missing authorization code"
	case errors.Is(err, errors.ErrNotFound):
		detail = "No office found."
	case errors.Is(err, errors.ErrInvalidRequest):
		detail = err.Error()
	}

	evt := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		evt = zerolog.Ctx(r.Context()).Error()
	}
	evt.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")

	writeDetail(w, status, detail)
}

// isJSON reports whether body is a JSON document, so it can be passed through as is.
func isJSON(body string) bool {
	b := bytes.TrimSpace([]byte(body))
	return len(b) > 0 && json.Valid(b)
}
