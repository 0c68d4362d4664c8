package handler

import (
	"net/http"

	"relay-panel/internal/models"
	"relay-panel/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SourceChannelHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Stats(c *gin.Context)
}

type sourceChannelHandler struct {
	service service.SourceChannelService
	logger  *zap.Logger
}

func NewSourceChannelHandler(service service.SourceChannelService, logger *zap.Logger) SourceChannelHandler {
	return &sourceChannelHandler{service: service, logger: logger}
}

// List handles GET /api/channels
func (h *sourceChannelHandler) List(c *gin.Context) {
	channels, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch channels")
		return
	}
	c.JSON(http.StatusOK, channels)
}

// Create handles POST /api/channels
func (h *sourceChannelHandler) Create(c *gin.Context) {
	var in models.CreateSourceChannelInput
	if !bindJSON(c, h.logger, &in) {
		return
	}

	ch, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err, "Failed to add channel")
		return
	}
	c.JSON(http.StatusOK, ch)
}

// Update handles PUT /api/channels
func (h *sourceChannelHandler) Update(c *gin.Context) {
	var in models.UpdateSourceChannelInput
	if !bindJSON(c, h.logger, &in) {
		return
	}

	ch, err := h.service.Update(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update channel")
		return
	}
	c.JSON(http.StatusOK, ch)
}

// Delete handles DELETE /api/channels?id=
func (h *sourceChannelHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), queryID(c)); err != nil {
		respondError(c, h.logger, err, "Failed to delete channel")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Stats handles GET /api/channels/stats?id=
func (h *sourceChannelHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), queryID(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch channel stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
