package handler

import (
	"errors"
	"net/http"
	"strconv"

	"relay-panel/internal/models"
	"relay-panel/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// clientErrors are returned to the caller with their own message.
var clientErrors = []struct {
	err    error
	status int
}{
	{service.ErrChannelIDRequired, http.StatusBadRequest},
	{service.ErrNoFieldsToUpdate, http.StatusBadRequest},
	{service.ErrTargetChannelNotFound, http.StatusBadRequest},
	{service.ErrChatIDAndTitleRequired, http.StatusBadRequest},
	{service.ErrSourceChatIDRequired, http.StatusBadRequest},
	{service.ErrSourceChatIDImmutable, http.StatusBadRequest},
	{service.ErrSettingKeyRequired, http.StatusBadRequest},
	{service.ErrTargetChannelInUse, http.StatusBadRequest},
	{service.ErrChannelNotFound, http.StatusNotFound},
}

// respondError writes the status and message for err. Anything that is not
// a known client error is logged and answered with the generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error, message string) {
	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			c.JSON(ce.status, gin.H{"error": ce.err.Error()})
			return
		}
	}
	if errors.Is(err, service.ErrInvalidField) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Error(message, zap.Error(err), zap.String("request_id", c.GetString("request_id")))
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

// bindJSON decodes the body and answers 400 itself when it cannot.
func bindJSON(c *gin.Context, logger *zap.Logger, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		logger.Debug("Failed to bind request body", zap.Error(err))
		if errors.Is(err, models.ErrInvalidChatID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat id"})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

// queryID reads the "id" query parameter. A missing or malformed id is 0.
func queryID(c *gin.Context) int64 {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
