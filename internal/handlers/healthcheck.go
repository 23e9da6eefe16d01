package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/velvetdesk/agencyops-backend/internal/logger"
)

type HealthcheckHandler struct {
	log *logger.Logger
}

func NewHealthcheckHandler(log *logger.Logger) *HealthcheckHandler {
	return &HealthcheckHandler{log: log.With("handler", "HealthcheckHandler")}
}

func (h *HealthcheckHandler) Healthcheck(c *gin.Context) {
	RespondOK(c, gin.H{"status": "ok"})
}
