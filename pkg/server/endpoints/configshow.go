package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/zkmarket/broker/pkg/server"
	"github.com/zkmarket/broker/pkg/server/middleware"
)

// RegisterConfigEndpoints registers the effective-configuration endpoint.
func RegisterConfigEndpoints(s *server.Server, auth *middleware.APIAuthenticator) {
	s.Router.Handle("/config", auth.Middleware(handleConfigShow(s))).Methods("GET")
}

func handleConfigShow(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.Config.Snapshot().Attributes())
	}
}
