package handler

import (
	"net/http"

	"relay-panel/internal/models"
	"relay-panel/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SettingsHandler interface {
	GetSettings(c *gin.Context)
	UpdateSetting(c *gin.Context)
}

type settingsHandler struct {
	service service.SettingsService
	logger  *zap.Logger
}

func NewSettingsHandler(service service.SettingsService, logger *zap.Logger) SettingsHandler {
	return &settingsHandler{service: service, logger: logger}
}

// GetSettings handles GET /api/settings
func (h *settingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSetting handles POST /api/settings
func (h *settingsHandler) UpdateSetting(c *gin.Context) {
	var in models.SettingInput
	if !bindJSON(c, h.logger, &in) {
		return
	}

	if err := h.service.Set(c.Request.Context(), in.Key, in.Value); err != nil {
		respondError(c, h.logger, err, "Failed to update setting")
		return
	}
	h.logger.Info("Setting changed", zap.String("key", in.Key), zap.String("value", in.Value))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
