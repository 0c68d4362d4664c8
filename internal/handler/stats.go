package handler

import (
	"net/http"

	"relay-panel/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatsHandler interface {
	GetStats(c *gin.Context)
}

type statsHandler struct {
	service service.StatsService
	logger  *zap.Logger
}

func NewStatsHandler(service service.StatsService, logger *zap.Logger) StatsHandler {
	return &statsHandler{service: service, logger: logger}
}

// GetStats handles GET /api/stats
func (h *statsHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
