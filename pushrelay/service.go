package pushrelay

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lanternhq/go-push-relay/internal/api"
	"github.com/lanternhq/go-push-relay/internal/registry"
	"github.com/lanternhq/go-push-relay/pkg/relay"
	"github.com/lanternhq/go-push-relay/pushrelay/config"
)

// Service wraps the dispatch client in an HTTP surface: device registration,
// push dispatch, health and metrics.
type Service struct {
	server *http.Server
	logger *slog.Logger
	ready  atomic.Bool
}

// NewService assembles the service.
func NewService(
	cfg *config.Config,
	r relay.Relay,
	store registry.Store,
	logger *slog.Logger,
) *Service {
	client := NewClient(r, logger)
	deviceAPI := api.NewDeviceAPI(client, store, cfg.PlatformApps, logger)

	svc := &Service{logger: logger}

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !svc.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/v1", func(r chi.Router) {
		r.Post("/devices", deviceAPI.RegisterDevice)
		r.Delete("/devices", deviceAPI.UnregisterDevice)
		r.Get("/devices", deviceAPI.ListDevices)
		r.Post("/push", deviceAPI.SendPush)
	})

	svc.server = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return svc
}

// Handler exposes the router, for tests and embedding.
func (s *Service) Handler() http.Handler { return s.server.Handler }

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Service) Start() error {
	s.ready.Store(true)
	s.logger.Info("Service is now ready.", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Service) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down service...")
	s.ready.Store(false)
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown failed.", "err", err)
		return err
	}
	s.logger.Info("Service shutdown complete.")
	return nil
}
