// Package endpoints registers the status API routes.
package endpoints

import (
	"github.com/zkmarket/broker/pkg/metrics"
	"github.com/zkmarket/broker/pkg/server"
	"github.com/zkmarket/broker/pkg/server/middleware"
)

// RegisterEndpoints wires all API routes onto the server's router. Health and
// metrics are unauthenticated; everything else requires a bearer token.
func RegisterEndpoints(s *server.Server, auth *middleware.APIAuthenticator) {
	RegisterHealthEndpoints(s)
	s.Router.Handle("/metrics", metrics.Handler()).Methods("GET")

	RegisterOrderEndpoints(s, auth)
	RegisterConfigEndpoints(s, auth)
}
