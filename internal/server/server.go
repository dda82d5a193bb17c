package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/nulzo/netstats/internal/analytics"
	"github.com/nulzo/netstats/internal/config"
	"github.com/nulzo/netstats/internal/store"
	"github.com/nulzo/netstats/internal/version"
	"go.uber.org/zap"
)

type Server struct {
	router  *gin.Engine
	config  *config.Config
	logger  *zap.Logger
	service analytics.Service
	repo    store.Repository
	http    *http.Server
}

func New(cfg *config.Config, logger *zap.Logger, service analytics.Service, repo store.Repository) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// panics become a logged 500 instead of a dropped connection
	engine.Use(ginzap.RecoveryWithZap(logger, true))

	s := &Server{
		router:  engine,
		service: service,
		repo:    repo,
		logger:  logger,
		config:  cfg,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening",
			zap.String("addr", s.http.Addr),
			zap.String("version", version.String()),
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server", zap.Duration("timeout", s.config.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
