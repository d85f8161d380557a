package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Shishir-Kc/ThE-lIsT/internal/config"
	"github.com/Shishir-Kc/ThE-lIsT/internal/metrics"
	"github.com/Shishir-Kc/ThE-lIsT/internal/transport/http/middleware"
	"github.com/gorilla/mux"
)

type HTTPServer struct {
	server   *http.Server
	handlers *HTTPHandlers
	config   *config.Config
}

// NewHTTPServer wires the router. m may be nil, in which case no metrics are
// collected and the metrics route is not registered.
func NewHTTPServer(cfg *config.Config, handlers *HTTPHandlers, m *metrics.Metrics) *HTTPServer {
	return &HTTPServer{
		handlers: handlers,
		config:   cfg,
		server: &http.Server{
			Addr:         ":" + cfg.Server.HTTPPort,
			Handler:      NewRouter(cfg, handlers, m),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

func NewRouter(cfg *config.Config, handlers *HTTPHandlers, m *metrics.Metrics) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.PanicRecoveryMiddleware)
	router.Use(middleware.LoggingMiddleware)
	if m != nil {
		router.Use(middleware.MetricsMiddleware(m))
		router.Handle(cfg.Metrics.Path, m.Handler()).Methods(http.MethodGet)
	}

	handlers.SetupRoutes(router)

	return router
}

func (s *HTTPServer) StartServer() error {
	slog.Info("Starting HTTP server",
		slog.String("address", s.server.Addr),
	)

	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("HTTP server stopped")
			return nil
		}
		slog.Error("HTTP server error", slog.String("error", err.Error()))
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	slog.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}
