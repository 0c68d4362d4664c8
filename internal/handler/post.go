package handler

import (
	"net/http"
	"strconv"

	"relay-panel/internal/models"
	"relay-panel/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostHandler interface {
	List(c *gin.Context)
}

type postHandler struct {
	postRepo repository.PostRepository
	logger   *zap.Logger
}

func NewPostHandler(postRepo repository.PostRepository, logger *zap.Logger) PostHandler {
	return &postHandler{postRepo: postRepo, logger: logger}
}

// List handles GET /api/posts?limit=&channel_id=
func (h *postHandler) List(c *gin.Context) {
	filter := models.PostFilter{Limit: repository.DefaultPostLimit}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if raw := c.Query("channel_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel_id"})
			return
		}
		filter.SourceChannelID = id
	}

	posts, err := h.postRepo.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to get posts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}
