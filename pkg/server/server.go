// Package server exposes the broker's status API: health, order inspection,
// effective configuration and Prometheus metrics.
package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/zkmarket/broker/pkg/config"
	"github.com/zkmarket/broker/pkg/log"
	"github.com/zkmarket/broker/pkg/store"
)

// HealthCheck reports whether the broker's dependencies are reachable.
type HealthCheck func(ctx context.Context) error

type Server struct {
	Router *mux.Router
	Store  store.Store
	Config *config.Handle
	Health HealthCheck

	srv *http.Server
}

func NewServer(
	ordersStore store.Store,
	cfg *config.Handle,
	health HealthCheck,
	host string,
	port string,
) *Server {
	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler:      handlers.LoggingHandler(os.Stdout, router),
		Addr:         host + ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router: router,
		Store:  ordersStore,
		Config: cfg,
		Health: health,
		srv:    srv,
	}
}

// Name implements task.RetryTask.
func (s *Server) Name() string { return "api_server" }

// Run implements task.RetryTask: it serves until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	logger := log.WithComponent("api_server")

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.srv.Addr).Msg("api server listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	}
}
