// Package gatewayhttp implements the gateway daemon's HTTP surface:
// account/token/character/entry routes, the /social WebSocket upgrade,
// and /metrics (spec §4.5).
package gatewayhttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wraps the gateway's HTTP surface around its router and
// dependencies, grounded on la2go's cmd/gameserver listener-bootstrap
// shape (construct, wire routes, hand back a *http.Server to run).
type Server struct {
	httpServer *http.Server
}

// NewServer builds the gateway's router with every route from spec
// §4.5's table wired to its handler and auth tier.
func NewServer(addr string, deps *Deps) *Server {
	r := mux.NewRouter()

	r.HandleFunc("/account", withRequestID(deps.Log, deps.handleCreateAccount)).Methods(http.MethodPost)
	r.HandleFunc("/token", withRequestID(deps.Log, deps.handleLogin)).Methods(http.MethodPost)
	r.HandleFunc("/character", withRequestID(deps.Log, requireAccountJWT(deps.Issuer, deps.Log, deps.handleCharacters))).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/character/{id}/select", withRequestID(deps.Log, requireAccountJWT(deps.Issuer, deps.Log, deps.handleSelectCharacter))).Methods(http.MethodPost)
	r.HandleFunc("/game/request-entry", withRequestID(deps.Log, requireAccountJWT(deps.Issuer, deps.Log, deps.handleRequestEntry))).Methods(http.MethodPost)
	r.HandleFunc("/social", withRequestID(deps.Log, requireCharacterJWT(deps.Issuer, deps.Log, deps.handleSocial))).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("gatewayhttp: listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
