package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/netstats/internal/analytics"
	"github.com/nulzo/netstats/pkg/api"
)

type AnalyticsHandler struct {
	service analytics.Service
}

func NewAnalyticsHandler(service analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
	}
}

// GetTotals returns the summed usage over the optional "days" window.
//
// GET /total?days=30
func (h *AnalyticsHandler) GetTotals(c *gin.Context) {
	window := analytics.ParseWindow(c.Query("days"))

	totals, err := h.service.GetTotals(c.Request.Context(), window)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to fetch totals", err))
		return
	}

	c.JSON(http.StatusOK, totals)
}

// GetItems returns the raw daily records over the optional "days" window.
//
// GET /items?days=30
func (h *AnalyticsHandler) GetItems(c *gin.Context) {
	window := analytics.ParseWindow(c.Query("days"))

	items, err := h.service.GetItems(c.Request.Context(), window)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to fetch items", err))
		return
	}

	c.JSON(http.StatusOK, items)
}
