package repository

import (
	"context"
	"fmt"

	"relay-panel/internal/models"

	"go.uber.org/zap"
)

const (
	DefaultPostLimit = 50
	MaxPostLimit     = 500
)

type PostRepository interface {
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
}

type postRepository struct {
	db     DB
	logger *zap.Logger
}

func NewPostRepository(db DB, logger *zap.Logger) PostRepository {
	return &postRepository{db: db, logger: logger}
}

// List returns the most recent ledger rows, newest first, labelled with the
// titles of their source channel.
func (r *postRepository) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPostLimit
	}
	if limit > MaxPostLimit {
		limit = MaxPostLimit
	}

	query := `
		SELECT
			p.id, p.source_channel_id, p.source_link, p.source_chat_id,
			p.source_message_id, p.target_chat_id, p.target_message_id,
			p.message_text, COALESCE(p.has_media, FALSE) AS has_media, p.media_type,
			COALESCE(p.status, 'pending') AS status, p.error_message,
			COALESCE(p.created_at, CURRENT_TIMESTAMP) AS created_at,
			sc.source_title, sc.target_title
		FROM posts p
		LEFT JOIN source_channels sc ON p.source_channel_id = sc.id
	`
	args := []interface{}{}
	if filter.SourceChannelID > 0 {
		args = append(args, filter.SourceChannelID)
		query += fmt.Sprintf(" WHERE p.source_channel_id = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d", len(args))

	posts := []models.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}
