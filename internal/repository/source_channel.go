package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"relay-panel/internal/models"

	"go.uber.org/zap"
)

type SourceChannelRepository interface {
	List(ctx context.Context) ([]models.SourceChannelView, error)
	GetByID(ctx context.Context, id int64) (*models.SourceChannel, error)
	Upsert(ctx context.Context, ch *models.SourceChannel) (*models.SourceChannel, error)
	Update(ctx context.Context, id int64, set []Assignment) (*models.SourceChannel, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context, id int64) (*models.ChannelStats, error)
}

// Legacy rows may carry NULLs in columns added later, hence the COALESCEs.
const sourceChannelColumnsTemplate = `{t}id, {t}source_chat_id, {t}source_title, {t}source_username,
	{t}target_chat_id, {t}target_channel_id, {t}target_title,
	COALESCE({t}append_link, '') AS append_link,
	COALESCE({t}append_link_text, '') AS append_link_text,
	COALESCE({t}daily_limit, 10) AS daily_limit,
	COALESCE({t}remove_links, TRUE) AS remove_links,
	COALESCE({t}remove_emojis, FALSE) AS remove_emojis,
	COALESCE({t}is_active, TRUE) AS is_active,
	COALESCE({t}listen_type, 'direct') AS listen_type,
	COALESCE({t}trigger_keywords, '') AS trigger_keywords,
	COALESCE({t}send_link_back, FALSE) AS send_link_back,
	COALESCE({t}created_at, CURRENT_TIMESTAMP) AS created_at,
	COALESCE({t}updated_at, CURRENT_TIMESTAMP) AS updated_at`

func sourceChannelColumns(alias string) string {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	return strings.ReplaceAll(sourceChannelColumnsTemplate, "{t}", prefix)
}

// source_chat_id is deliberately absent: it never changes after creation.
var sourceChannelUpdatable = map[string]bool{
	"source_title":      true,
	"source_username":   true,
	"target_chat_id":    true,
	"target_channel_id": true,
	"target_title":      true,
	"append_link":       true,
	"append_link_text":  true,
	"daily_limit":       true,
	"remove_links":      true,
	"remove_emojis":     true,
	"is_active":         true,
	"listen_type":       true,
	"trigger_keywords":  true,
	"send_link_back":    true,
}

type sourceChannelRepository struct {
	db     DB
	logger *zap.Logger
}

func NewSourceChannelRepository(db DB, logger *zap.Logger) SourceChannelRepository {
	return &sourceChannelRepository{db: db, logger: logger}
}

func (r *sourceChannelRepository) List(ctx context.Context) ([]models.SourceChannelView, error) {
	channels := []models.SourceChannelView{}
	query := `
		SELECT
			` + sourceChannelColumns("sc") + `,
			tc.title AS target_channel_title,
			tc.chat_id AS target_channel_chat_id,
			COALESCE(ps.today_posts, 0) AS today_posts,
			COALESCE(ps.total_posts, 0) AS total_posts
		FROM source_channels sc
		LEFT JOIN target_channels tc ON sc.target_channel_id = tc.id
		LEFT JOIN LATERAL (
			SELECT
				COUNT(*) FILTER (WHERE DATE(p.created_at) = CURRENT_DATE) AS today_posts,
				COUNT(*) AS total_posts
			FROM posts p
			WHERE p.source_channel_id = sc.id AND p.status = 'success'
		) ps ON TRUE
		ORDER BY sc.created_at DESC
	`
	if err := r.db.SelectContext(ctx, &channels, query); err != nil {
		return nil, fmt.Errorf("failed to list source channels: %w", err)
	}
	return channels, nil
}

func (r *sourceChannelRepository) GetByID(ctx context.Context, id int64) (*models.SourceChannel, error) {
	var ch models.SourceChannel
	query := `SELECT ` + sourceChannelColumns("") + ` FROM source_channels WHERE id = $1`
	err := r.db.GetContext(ctx, &ch, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get source channel %d: %w", id, err)
	}
	return &ch, nil
}

// Upsert registers ch.SourceChatID, or merges ch into the existing rule
// following models.SourceChannelUpsertPolicy. Concurrent registrations of
// the same source converge on one row.
func (r *sourceChannelRepository) Upsert(ctx context.Context, ch *models.SourceChannel) (*models.SourceChannel, error) {
	columns := make([]string, 0, len(models.SourceChannelUpsertPolicy))
	for _, p := range models.SourceChannelUpsertPolicy {
		columns = append(columns, p.Column)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	args := append([]interface{}{ch.SourceChatID}, sourceChannelArgs(ch, columns)...)
	insert := fmt.Sprintf(`INSERT INTO source_channels (source_chat_id, %s)
		VALUES (%s)
		ON CONFLICT (source_chat_id) DO NOTHING
		RETURNING %s`, strings.Join(columns, ", "), placeholders(1, len(args)), sourceChannelColumns(""))

	var out models.SourceChannel
	err = tx.GetContext(ctx, &out, insert, args...)
	switch {
	case err == nil:
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit source channel: %w", err)
		}
		return &out, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to insert source channel: %w", err)
	}

	var existing models.SourceChannel
	lock := `SELECT ` + sourceChannelColumns("") + ` FROM source_channels WHERE source_chat_id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &existing, lock, ch.SourceChatID); err != nil {
		return nil, fmt.Errorf("failed to load source channel %s: %w", ch.SourceChatID, err)
	}

	merged := models.MergeSourceChannel(existing, *ch)
	set := make([]Assignment, 0, len(columns))
	for i, v := range sourceChannelArgs(&merged, columns) {
		set = append(set, Assignment{Column: columns[i], Value: v})
	}
	update, updateArgs, err := buildUpdate("source_channels", sourceChannelUpdatable, merged.ID, set, sourceChannelColumns(""))
	if err != nil {
		return nil, err
	}
	if err := tx.GetContext(ctx, &out, update, updateArgs...); err != nil {
		return nil, fmt.Errorf("failed to update source channel %d: %w", merged.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit source channel: %w", err)
	}
	r.logger.Debug("Source channel re-registered",
		zap.Int64("id", out.ID),
		zap.Int64("source_chat_id", int64(out.SourceChatID)),
	)
	return &out, nil
}

// Update applies a partial update. Returns nil when no row has the id.
func (r *sourceChannelRepository) Update(ctx context.Context, id int64, set []Assignment) (*models.SourceChannel, error) {
	query, args, err := buildUpdate("source_channels", sourceChannelUpdatable, id, set, sourceChannelColumns(""))
	if err != nil {
		return nil, err
	}

	var ch models.SourceChannel
	if err := r.db.GetContext(ctx, &ch, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update source channel %d: %w", id, err)
	}
	return &ch, nil
}

// Delete removes the rule. Ledger rows written for it stay and are detached
// so that history and daily totals survive.
func (r *sourceChannelRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`UPDATE posts SET source_channel_id = NULL WHERE source_channel_id = $1`,
		`UPDATE daily_stats SET source_channel_id = NULL WHERE source_channel_id = $1`,
		`DELETE FROM source_channels WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to delete source channel %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete of source channel %d: %w", id, err)
	}
	return nil
}

type channelStatsRow struct {
	DailyLimit   int          `db:"daily_limit"`
	TodayPosts   int64        `db:"today_posts"`
	TotalPosts   int64        `db:"total_posts"`
	LastPostTime sql.NullTime `db:"last_post_time"`
}

// Stats returns the quota view of one channel, or nil when it does not exist.
func (r *sourceChannelRepository) Stats(ctx context.Context, id int64) (*models.ChannelStats, error) {
	var row channelStatsRow
	query := `
		SELECT
			COALESCE(sc.daily_limit, 10) AS daily_limit,
			COUNT(p.id) FILTER (WHERE DATE(p.created_at) = CURRENT_DATE) AS today_posts,
			COUNT(p.id) AS total_posts,
			MAX(p.created_at)::timestamptz AS last_post_time
		FROM source_channels sc
		LEFT JOIN posts p ON p.source_channel_id = sc.id AND p.status = 'success'
		WHERE sc.id = $1
		GROUP BY sc.id, sc.daily_limit
	`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stats of source channel %d: %w", id, err)
	}

	var last *time.Time
	if row.LastPostTime.Valid {
		last = &row.LastPostTime.Time
	}
	stats := models.NewChannelStats(row.TodayPosts, row.TotalPosts, row.DailyLimit, last)
	return &stats, nil
}

func sourceChannelArgs(ch *models.SourceChannel, columns []string) []interface{} {
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		var v interface{}
		switch column {
		case "source_title":
			v = ch.SourceTitle
		case "source_username":
			v = ch.SourceUsername
		case "target_chat_id":
			v = ch.TargetChatID
		case "target_channel_id":
			v = ch.TargetChannelID
		case "target_title":
			v = ch.TargetTitle
		case "append_link":
			v = ch.AppendLink
		case "append_link_text":
			v = ch.AppendLinkText
		case "daily_limit":
			v = ch.DailyLimit
		case "remove_links":
			v = ch.RemoveLinks
		case "remove_emojis":
			v = ch.RemoveEmojis
		case "listen_type":
			v = ch.ListenType
		case "trigger_keywords":
			v = ch.TriggerKeywords
		case "send_link_back":
			v = ch.SendLinkBack
		}
		args = append(args, v)
	}
	return args
}
