package handler

import (
	"net/http"

	"relay-panel/internal/models"
	"relay-panel/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TargetChannelHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type targetChannelHandler struct {
	service service.TargetChannelService
	logger  *zap.Logger
}

func NewTargetChannelHandler(service service.TargetChannelService, logger *zap.Logger) TargetChannelHandler {
	return &targetChannelHandler{service: service, logger: logger}
}

// List handles GET /api/target-channels
func (h *targetChannelHandler) List(c *gin.Context) {
	channels, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch target channels")
		return
	}
	c.JSON(http.StatusOK, channels)
}

// Create handles POST /api/target-channels
func (h *targetChannelHandler) Create(c *gin.Context) {
	var in models.CreateTargetChannelInput
	if !bindJSON(c, h.logger, &in) {
		return
	}

	ch, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err, "Failed to add target channel")
		return
	}
	c.JSON(http.StatusOK, ch)
}

// Update handles PUT /api/target-channels
func (h *targetChannelHandler) Update(c *gin.Context) {
	var in models.UpdateTargetChannelInput
	if !bindJSON(c, h.logger, &in) {
		return
	}

	ch, err := h.service.Update(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update target channel")
		return
	}
	c.JSON(http.StatusOK, ch)
}

// Delete handles DELETE /api/target-channels?id=
func (h *targetChannelHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), queryID(c)); err != nil {
		respondError(c, h.logger, err, "Failed to delete target channel")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
