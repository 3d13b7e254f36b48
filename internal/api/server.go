package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/api/handlers"
	"github.com/amaumene/mewatch/internal/api/middleware"
	"github.com/amaumene/mewatch/internal/config"
	"github.com/amaumene/mewatch/internal/controllers"
	"github.com/amaumene/mewatch/internal/models"
	"github.com/amaumene/mewatch/internal/services/social"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	db *models.Database,
	searchCtrl *controllers.SearchController,
	watchCtrl *controllers.WatchController,
	authCtrl *controllers.AuthController,
	integrations []social.Integration,
	logger *logrus.Logger,
) *Server {
	router := NewRouter(db, searchCtrl, watchCtrl, authCtrl, integrations, logger)

	return &Server{
		server: &http.Server{
			Addr:         ":" + cfg.ServerPort,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second, // scraping happens inside the request cycle
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// NewRouter configures all HTTP routes
func NewRouter(
	db *models.Database,
	searchCtrl *controllers.SearchController,
	watchCtrl *controllers.WatchController,
	authCtrl *controllers.AuthController,
	integrations []social.Integration,
	logger *logrus.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(logger))

	// Operational endpoints
	healthHandler := handlers.NewHealthHandler(logger)
	r.Get("/health", healthHandler.ServeHTTP)
	statusHandler := handlers.NewStatusHandler(db, logger)
	r.Get("/status", statusHandler.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	// Authentication
	authHandler := handlers.NewAuthHandler(authCtrl, logger)
	r.Post("/auth/", authHandler.ObtainToken)
	for _, integration := range integrations {
		r.Get("/"+integration.Type()+"/init", authHandler.OAuthInit(integration))
		r.Get("/"+integration.Type()+"/callback", authHandler.OAuthCallback(integration))
	}

	// Token-protected picture endpoints
	picturesHandler := handlers.NewPicturesHandler(searchCtrl, watchCtrl, logger)
	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(db, logger))
		r.Get("/films/{name}/", picturesHandler.ListFilms)
		r.Get("/series/{name}/{season}/{episode}/", picturesHandler.ListSeries)
		r.Get("/search/{pictureName}/", picturesHandler.Search)
		r.Patch("/pictures/{name}/{season}/{episode}/finish/", picturesHandler.FinishEpisode)
		r.Get("/pictures/{name}/", picturesHandler.ListWatched)
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("addr", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
