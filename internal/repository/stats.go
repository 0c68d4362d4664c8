package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"relay-panel/internal/models"

	"go.uber.org/zap"
)

// StatsRepository answers the read-only aggregate queries of the dashboard.
type StatsRepository interface {
	TodayTotals(ctx context.Context) (models.DailyTotals, error)
	TotalSuccessfulPosts(ctx context.Context) (int64, error)
	WeeklySeries(ctx context.Context) ([]models.WeeklyStat, error)
	ActiveChannelCount(ctx context.Context) (int64, error)
	LastSuccessfulPostTime(ctx context.Context) (*time.Time, error)
}

type statsRepository struct {
	db     DB
	logger *zap.Logger
}

func NewStatsRepository(db DB, logger *zap.Logger) StatsRepository {
	return &statsRepository{db: db, logger: logger}
}

func (r *statsRepository) TodayTotals(ctx context.Context) (models.DailyTotals, error) {
	var totals models.DailyTotals
	query := `
		SELECT
			COALESCE(SUM(post_count), 0) AS posts,
			COALESCE(SUM(success_count), 0) AS success,
			COALESCE(SUM(failed_count), 0) AS failed
		FROM daily_stats
		WHERE date = CURRENT_DATE
	`
	if err := r.db.GetContext(ctx, &totals, query); err != nil {
		return models.DailyTotals{}, fmt.Errorf("failed to get today's totals: %w", err)
	}
	return totals, nil
}

func (r *statsRepository) TotalSuccessfulPosts(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM posts WHERE status = 'success'`); err != nil {
		return 0, fmt.Errorf("failed to count successful posts: %w", err)
	}
	return total, nil
}

// WeeklySeries returns one point per day for the last seven days, oldest
// first. Days without daily_stats rows are zero.
func (r *statsRepository) WeeklySeries(ctx context.Context) ([]models.WeeklyStat, error) {
	series := []models.WeeklyStat{}
	query := `
		SELECT
			to_char(d.day, 'YYYY-MM-DD') AS date,
			COALESCE(SUM(ds.post_count), 0) AS posts,
			COALESCE(SUM(ds.success_count), 0) AS success
		FROM generate_series(CURRENT_DATE - 6, CURRENT_DATE, INTERVAL '1 day') AS d(day)
		LEFT JOIN daily_stats ds ON ds.date = d.day::date
		GROUP BY d.day
		ORDER BY d.day
	`
	if err := r.db.SelectContext(ctx, &series, query); err != nil {
		return nil, fmt.Errorf("failed to get weekly series: %w", err)
	}
	return series, nil
}

func (r *statsRepository) ActiveChannelCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM source_channels WHERE is_active = TRUE`); err != nil {
		return 0, fmt.Errorf("failed to count active channels: %w", err)
	}
	return count, nil
}

// LastSuccessfulPostTime returns nil when no post has succeeded yet.
// created_at is a wall-clock TIMESTAMP in the session time zone; the cast
// turns it into an instant.
func (r *statsRepository) LastSuccessfulPostTime(ctx context.Context) (*time.Time, error) {
	var last sql.NullTime
	if err := r.db.GetContext(ctx, &last, `SELECT MAX(created_at)::timestamptz FROM posts WHERE status = 'success'`); err != nil {
		return nil, fmt.Errorf("failed to get last post time: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}
