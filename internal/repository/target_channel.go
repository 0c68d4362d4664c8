package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"relay-panel/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type TargetChannelRepository interface {
	ListActive(ctx context.Context) ([]models.TargetChannel, error)
	GetByID(ctx context.Context, id int64) (*models.TargetChannel, error)
	Upsert(ctx context.Context, ch *models.TargetChannel) (*models.TargetChannel, error)
	Update(ctx context.Context, id int64, set []Assignment) (*models.TargetChannel, error)
	Delete(ctx context.Context, id int64) error
}

const targetChannelColumns = `id, chat_id, title, username,
	COALESCE(is_active, TRUE) AS is_active,
	COALESCE(created_at, CURRENT_TIMESTAMP) AS created_at,
	COALESCE(updated_at, CURRENT_TIMESTAMP) AS updated_at`

var targetChannelUpdatable = map[string]bool{
	"title":     true,
	"username":  true,
	"is_active": true,
}

type targetChannelRepository struct {
	db     DB
	logger *zap.Logger
}

func NewTargetChannelRepository(db DB, logger *zap.Logger) TargetChannelRepository {
	return &targetChannelRepository{db: db, logger: logger}
}

func (r *targetChannelRepository) ListActive(ctx context.Context) ([]models.TargetChannel, error) {
	channels := []models.TargetChannel{}
	query := `SELECT ` + targetChannelColumns + ` FROM target_channels
		WHERE is_active = TRUE
		ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &channels, query); err != nil {
		return nil, fmt.Errorf("failed to list target channels: %w", err)
	}
	return channels, nil
}

func (r *targetChannelRepository) GetByID(ctx context.Context, id int64) (*models.TargetChannel, error) {
	var ch models.TargetChannel
	query := `SELECT ` + targetChannelColumns + ` FROM target_channels WHERE id = $1`
	err := r.db.GetContext(ctx, &ch, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get target channel %d: %w", id, err)
	}
	return &ch, nil
}

// Upsert registers ch.ChatID, or merges ch into the existing registration
// following models.TargetChannelUpsertPolicy. Concurrent registrations of
// the same chat converge on one row.
func (r *targetChannelRepository) Upsert(ctx context.Context, ch *models.TargetChannel) (*models.TargetChannel, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var out models.TargetChannel
	insert := `INSERT INTO target_channels (chat_id, title, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id) DO NOTHING
		RETURNING ` + targetChannelColumns
	err = tx.GetContext(ctx, &out, insert, ch.ChatID, ch.Title, ch.Username)
	switch {
	case err == nil:
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit target channel: %w", err)
		}
		return &out, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to insert target channel: %w", err)
	}

	var existing models.TargetChannel
	lock := `SELECT ` + targetChannelColumns + ` FROM target_channels WHERE chat_id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &existing, lock, ch.ChatID); err != nil {
		return nil, fmt.Errorf("failed to load target channel %s: %w", ch.ChatID, err)
	}

	merged := models.MergeTargetChannel(existing, *ch)
	update := `UPDATE target_channels
		SET title = $2, username = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING ` + targetChannelColumns
	if err := tx.GetContext(ctx, &out, update, merged.ID, merged.Title, merged.Username); err != nil {
		return nil, fmt.Errorf("failed to update target channel %d: %w", merged.ID, err)
	}
	if merged.Title != existing.Title {
		if err := resyncTargetTitle(ctx, tx, out.ID, out.Title); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit target channel: %w", err)
	}
	r.logger.Debug("Target channel re-registered", zap.Int64("id", out.ID), zap.String("chat_id", out.ChatID))
	return &out, nil
}

// Update applies a partial update. A new title is copied into the mirrored
// target_title of every source channel that references the target.
// Returns nil when no row has the id.
func (r *targetChannelRepository) Update(ctx context.Context, id int64, set []Assignment) (*models.TargetChannel, error) {
	query, args, err := buildUpdate("target_channels", targetChannelUpdatable, id, set, targetChannelColumns)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ch models.TargetChannel
	if err := tx.GetContext(ctx, &ch, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update target channel %d: %w", id, err)
	}

	if hasColumn(set, "title") {
		if err := resyncTargetTitle(ctx, tx, ch.ID, ch.Title); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit target channel %d: %w", id, err)
	}
	return &ch, nil
}

// Delete removes the target unless a source channel references it. The
// reference check and the delete share one transaction, and the foreign key
// catches anything that slips between them.
func (r *targetChannelRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT id FROM target_channels WHERE id = $1 FOR UPDATE`, id); err != nil {
		return fmt.Errorf("failed to lock target channel %d: %w", id, err)
	}

	var refs int
	if err := tx.GetContext(ctx, &refs, `SELECT COUNT(*) FROM source_channels WHERE target_channel_id = $1`, id); err != nil {
		return fmt.Errorf("failed to count references to target channel %d: %w", id, err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: target channel %d is used by %d source channels", ErrInUse, id, refs)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM target_channels WHERE id = $1`, id); err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return fmt.Errorf("%w: target channel %d: %v", ErrInUse, id, err)
		}
		return fmt.Errorf("failed to delete target channel %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return fmt.Errorf("%w: target channel %d: %v", ErrInUse, id, err)
		}
		return fmt.Errorf("failed to commit delete of target channel %d: %w", id, err)
	}
	return nil
}

func resyncTargetTitle(ctx context.Context, tx sqlx.ExecerContext, targetID int64, title string) error {
	_, err := tx.ExecContext(ctx, `UPDATE source_channels
		SET target_title = $2, updated_at = CURRENT_TIMESTAMP
		WHERE target_channel_id = $1`, targetID, title)
	if err != nil {
		return fmt.Errorf("failed to resync target title for target channel %d: %w", targetID, err)
	}
	return nil
}
