package webd

import (
	"context"
	"errors"
	"github.com/gorilla/mux"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rotblauer/gpxnap/api"
	"github.com/rotblauer/gpxnap/params"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

type WebDaemon struct {
	Config *params.WebDaemonConfig

	simplifier *api.Simplifier
	cache      *ttlcache.Cache[string, *cachedResponse]
	logger     *slog.Logger
	started    time.Time
	requests   atomic.Int64
	cacheHits  atomic.Int64
}

// cachedResponse replays a simplified response for an identical request.
type cachedResponse struct {
	ContentType string
	Header      http.Header
	Body        []byte
}

// NewWebDaemon validates the simplify configuration up front,
// so a bad config fails at startup rather than per request.
func NewWebDaemon(config *params.WebDaemonConfig) (*WebDaemon, error) {
	if config == nil {
		config = params.DefaultWebDaemonConfig()
	}
	s, err := api.NewSimplifier(config.Simplify)
	if err != nil {
		return nil, err
	}
	d := &WebDaemon{
		Config:     config,
		simplifier: s,
		logger:     slog.With("d", "web"),
		started:    time.Now(),
	}
	if config.CacheTTL > 0 {
		d.cache = ttlcache.New[string, *cachedResponse](
			ttlcache.WithTTL[string, *cachedResponse](config.CacheTTL))
	}
	return d, nil
}

// Run serves HTTP on the configured listener until ctx is canceled,
// then shuts down gracefully.
func (s *WebDaemon) Run(ctx context.Context) error {
	listener, err := net.Listen(s.Config.Network, s.Config.Address)
	if err != nil {
		return err
	}
	server := &http.Server{
		Handler:           s.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if s.cache != nil {
		go s.cache.Start()
		defer s.cache.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	s.logger.Info("Web daemon started",
		slog.Group("listen", "network", s.Config.Network, "address", listener.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.logger.Info("Web daemon interrupted, shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Web daemon exiting")
	return nil
}

func (s *WebDaemon) NewRouter() *mux.Router {
	// StrictSlash false: "/simplify/" does not match "/simplify".
	router := mux.NewRouter().StrictSlash(false)
	router.Use(loggingMiddleware)
	router.Use(s.countingMiddleware)

	apiRoutes := router.NewRoute().Subrouter()
	apiRoutes.Use(permissiveCorsMiddleware)

	// /ping is a simple server healthcheck endpoint
	apiRoutes.Path("/ping").HandlerFunc(pingPong).Methods(http.MethodGet)
	apiRoutes.Path("/status").HandlerFunc(s.statusReport).Methods(http.MethodGet)

	simplifyRoutes := apiRoutes.NewRoute().Subrouter()
	simplifyRoutes.Use(tokenAuthenticationMiddlewareFunc(s.Config.Token))
	simplifyRoutes.Path("/simplify").HandlerFunc(s.handleSimplify).Methods(http.MethodPost)
	simplifyRoutes.Path("/simplify/report").HandlerFunc(s.handleSimplifyReport).Methods(http.MethodPost)

	return router
}
