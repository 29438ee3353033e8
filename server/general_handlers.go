package server

import (
	"net/http"
)

const timestampLayout = "2006-01-02 15:04:05 MST"

type RootResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, RootResponse{Message: "Server hello"})
	}
}

// HealthHandler reports liveness with the server's local time.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:    "ok",
			Message:   "Server is healthy",
			Timestamp: s.now().Local().Format(timestampLayout),
		})
	}
}

// PreflightHandler only runs when CorsMiddleware let an OPTIONS request through,
// which it never does for requests carrying an Origin.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	}
}
