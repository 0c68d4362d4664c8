package service

import (
	"context"
	"time"

	"relay-panel/internal/models"
	"relay-panel/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type StatsService interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

type statsService struct {
	stats    repository.StatsRepository
	settings repository.SettingsRepository
	logger   *zap.Logger
}

func NewStatsService(stats repository.StatsRepository, settings repository.SettingsRepository, logger *zap.Logger) StatsService {
	return &statsService{stats: stats, settings: settings, logger: logger}
}

// Dashboard runs the independent aggregate queries concurrently and
// assembles them. The first failure cancels the rest.
func (s *statsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var (
		today      models.DailyTotals
		total      int64
		weekly     []models.WeeklyStat
		active     int64
		botStatus  string
		botEnabled string
		lastPost   *time.Time
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		today, err = s.stats.TodayTotals(ctx)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.stats.TotalSuccessfulPosts(ctx)
		return err
	})
	g.Go(func() (err error) {
		weekly, err = s.stats.WeeklySeries(ctx)
		return err
	})
	g.Go(func() (err error) {
		active, err = s.stats.ActiveChannelCount(ctx)
		return err
	})
	g.Go(func() (err error) {
		botStatus, _, err = s.settings.Get(ctx, models.SettingBotStatus)
		return err
	})
	g.Go(func() (err error) {
		botEnabled, _, err = s.settings.Get(ctx, models.SettingBotEnabled)
		return err
	})
	g.Go(func() (err error) {
		lastPost, err = s.stats.LastSuccessfulPostTime(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if weekly == nil {
		weekly = []models.WeeklyStat{}
	}
	if botStatus == "" {
		botStatus = models.BotStatusOffline
	}

	return &models.DashboardStats{
		TodayPosts:     today.Posts,
		TodaySuccess:   today.Success,
		TodayFailed:    today.Failed,
		TotalPosts:     total,
		ActiveChannels: active,
		WeeklyStats:    weekly,
		BotStatus:      botStatus,
		BotEnabled:     botEnabled == "true",
		LastPostTime:   models.FormatTimestamp(lastPost),
	}, nil
}
