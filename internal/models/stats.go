package models

import "time"

const (
	SettingBotEnabled = "bot_enabled"
	SettingBotStatus  = "bot_status"

	BotStatusOffline = "offline"
)

// DailyTotals is the sum of the daily_stats rows of one date.
type DailyTotals struct {
	Posts   int64 `db:"posts"`
	Success int64 `db:"success"`
	Failed  int64 `db:"failed"`
}

// WeeklyStat is one point of the dashboard chart.
type WeeklyStat struct {
	Date    string `db:"date" json:"date"`
	Posts   int64  `db:"posts" json:"posts"`
	Success int64  `db:"success" json:"success"`
}

// DashboardStats is the response of GET /api/stats. Every field has a
// usable zero value; nothing is null.
type DashboardStats struct {
	TodayPosts     int64        `json:"today_posts"`
	TodaySuccess   int64        `json:"today_success"`
	TodayFailed    int64        `json:"today_failed"`
	TotalPosts     int64        `json:"total_posts"`
	ActiveChannels int64        `json:"active_channels"`
	WeeklyStats    []WeeklyStat `json:"weekly_stats"`
	BotStatus      string       `json:"bot_status"`
	BotEnabled     bool         `json:"bot_enabled"`
	LastPostTime   string       `json:"last_post_time"`
}

// ChannelStats is the quota view of one source channel.
type ChannelStats struct {
	TodayPosts     int64  `json:"today_posts"`
	TotalPosts     int64  `json:"total_posts"`
	DailyLimit     int    `json:"daily_limit"`
	RemainingToday int64  `json:"remaining_today"`
	LastPostTime   string `json:"last_post_time"`
}

// NewChannelStats derives the remaining quota; it never goes below zero.
func NewChannelStats(todayPosts, totalPosts int64, dailyLimit int, lastPost *time.Time) ChannelStats {
	remaining := int64(dailyLimit) - todayPosts
	if remaining < 0 {
		remaining = 0
	}
	return ChannelStats{
		TodayPosts:     todayPosts,
		TotalPosts:     totalPosts,
		DailyLimit:     dailyLimit,
		RemainingToday: remaining,
		LastPostTime:   FormatTimestamp(lastPost),
	}
}

// FormatTimestamp renders t as RFC 3339 in UTC, or "" when t is nil.
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// SettingInput is the body of POST /api/settings.
type SettingInput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
