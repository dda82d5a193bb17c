package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/netstats/pkg/api"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error attached by a handler as a Problem document.
// Causes are logged here and never written to the client.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		fields := []zap.Field{
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(RequestIDKey)),
		}

		var problem *api.Problem
		if errors.As(err, &problem) {
			if problem.Log != nil {
				logger.Error("Request failed", append(fields, zap.Int("status", problem.Status), zap.Error(problem.Log))...)
			}
			if problem.Instance == "" {
				problem.Instance = c.Request.URL.Path
			}
			c.AbortWithStatusJSON(problem.Status, problem)
			return
		}

		logger.Error("Unhandled error", append(fields, zap.Error(err))...)

		c.AbortWithStatusJSON(http.StatusInternalServerError, api.New(
			http.StatusInternalServerError,
			http.StatusText(http.StatusInternalServerError),
			"An unexpected error occurred.",
			api.WithInstance(c.Request.URL.Path),
		))
	}
}
