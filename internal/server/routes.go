package server

import (
	"github.com/gin-gonic/gin"
	"github.com/nulzo/netstats/internal/platform/metrics"
	"github.com/nulzo/netstats/internal/server/middleware"
	v1 "github.com/nulzo/netstats/internal/server/v1"
	"github.com/nulzo/netstats/internal/version"
)

func (s *Server) SetupRoutes() {
	// 1. Global Middleware
	s.router.Use(middleware.RequestID())
	if s.config.Tracing.Enabled {
		s.router.Use(middleware.Tracing(s.config.Tracing.ServiceName))
	}
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics())
	s.router.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.router.Use(middleware.ErrorHandler(s.logger))

	// 2. Operational endpoints
	healthHandler := v1.NewHealthHandler(s.repo, version.String())
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/ready", healthHandler.Ready)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// 3. Dashboard API, paths kept at the root for the existing front-end
	api := s.router.Group("/")
	if rl := s.config.RateLimit; rl.RequestsPerSecond > 0 {
		api.Use(middleware.NewRateLimiter(rl.RequestsPerSecond, rl.Burst, s.logger).Middleware())
	}
	{
		analyticsHandler := v1.NewAnalyticsHandler(s.service)
		api.GET("/total", analyticsHandler.GetTotals)
		api.GET("/items", analyticsHandler.GetItems)
	}
}
