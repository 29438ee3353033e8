package server

import (
	"net/http"

	"github.com/jrsteele09/go-analytics-bff/analytics"
	"github.com/jrsteele09/go-analytics-bff/directory"
)

// OfficeSearchHandler serves GET /office?q=. It runs behind RequireAccessToken.
func (s *Server) OfficeSearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken := accessTokenFrom(r.Context())

		offices, err := s.offices.Search(r.Context(), r.URL.Query().Get("q"), accessToken)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, directory.OfficeList{Offices: offices})
	}
}

// AnalyticsHandler serves GET /analytics and passes the analytics payload through.
// It runs behind RequireAccessToken.
func (s *Server) AnalyticsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken := accessTokenFrom(r.Context())

		req, err := analytics.ParseRequest(r.URL.Query())
		if err != nil {
			writeError(w, r, err)
			return
		}

		body, err := s.analytics.Fetch(r.Context(), req, accessToken)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeRawJSON(w, http.StatusOK, body)
	}
}
