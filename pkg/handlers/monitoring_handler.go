package handlers

import (
	"net/http"

	"sales-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// MonitoringHandler serves the aggregated request dashboard.
type MonitoringHandler struct {
	Service *services.MonitoringService
}

// NewMonitoringHandler creates a new MonitoringHandler.
func NewMonitoringHandler(service *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{Service: service}
}

// GetDashboard returns aggregated request logs for the requested period.
func (h *MonitoringHandler) GetDashboard(c *gin.Context) {
	periodStr := c.DefaultQuery("period", "24h")
	var hours int

	switch periodStr {
	case "1h":
		hours = 1
	case "24h":
		hours = 24
	case "7d":
		hours = 24 * 7
	default:
		hours = 24
	}

	data := h.Service.GetDashboardData(hours)
	c.JSON(http.StatusOK, data)
}
