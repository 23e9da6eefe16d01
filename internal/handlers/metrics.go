package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/velvetdesk/agencyops-backend/internal/observability"
)

type MetricsHandler struct{}

func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

func (h *MetricsHandler) Metrics(c *gin.Context) {
	if !observability.Enabled() {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.Status(http.StatusOK)
	observability.Current().WritePrometheus(c.Writer)
}
