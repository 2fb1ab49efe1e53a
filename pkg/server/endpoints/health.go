package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/zkmarket/broker/pkg/server"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RegisterHealthEndpoints registers the health endpoint. No auth required.
func RegisterHealthEndpoints(s *server.Server) {
	s.Router.HandleFunc("/health", handleHealth(s)).Methods("GET")
}

func handleHealth(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if s.Health != nil {
			if err := s.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(HealthResponse{Status: "error", Error: err.Error()})
				return
			}
		}
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
	}
}
