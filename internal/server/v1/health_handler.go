package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/netstats/pkg/api"
)

// Pinger is satisfied by store.Repository.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	startTime time.Time
	version   string
	store     Pinger
}

func NewHealthHandler(store Pinger, version string) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		version:   version,
		store:     store,
	}
}

// Health reports liveness. It never touches storage.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"uptime":  time.Since(h.startTime).String(),
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": h.version,
	})
}

// Ready reports whether storage answers a ping within two seconds.
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		_ = c.Error(api.ServiceUnavailableError("Storage is unreachable", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
