package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"relay-panel/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
)

var sourceColumns = []string{
	"id", "source_chat_id", "source_title", "source_username",
	"target_chat_id", "target_channel_id", "target_title",
	"append_link", "append_link_text", "daily_limit", "remove_links", "remove_emojis",
	"is_active", "listen_type", "trigger_keywords", "send_link_back", "created_at", "updated_at",
}

func sourceRow(id int64, title driver.Value, dailyLimit int, isActive bool) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, int64(-100100), title, nil,
		int64(-100200), nil, "Mirror",
		"", "", dailyLimit, true, false,
		isActive, "direct", "", false, now, now,
	}
}

func TestSourceChannelListJoinsTargetAndCounters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceChannelRepository(db, zap.NewNop())

	columns := append(append([]string{}, sourceColumns...),
		"target_channel_title", "target_channel_chat_id", "today_posts", "total_posts")
	row := append(sourceRow(3, "News", 10, true), "Promo", "-100200", int64(2), int64(17))

	mock.ExpectQuery(`LEFT JOIN target_channels tc ON sc\.target_channel_id = tc\.id` +
		`.*` + regexp.QuoteMeta(`COUNT(*) FILTER (WHERE DATE(p.created_at) = CURRENT_DATE) AS today_posts`) +
		`.*` + regexp.QuoteMeta(`WHERE p.source_channel_id = sc.id AND p.status = 'success'`)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(row...))

	channels, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(channels) != 1 {
		t.Fatalf("got %d channels, want 1", len(channels))
	}

	ch := channels[0]
	if ch.ID != 3 || ch.SourceChatID != -100100 {
		t.Errorf("id = %d source_chat_id = %d", ch.ID, ch.SourceChatID)
	}
	if ch.SourceTitle == nil || *ch.SourceTitle != "News" {
		t.Errorf("source_title = %v, want News", ch.SourceTitle)
	}
	if ch.TargetChannelTitle == nil || *ch.TargetChannelTitle != "Promo" {
		t.Errorf("target_channel_title = %v, want Promo", ch.TargetChannelTitle)
	}
	if ch.TargetChannelChatID == nil || *ch.TargetChannelChatID != "-100200" {
		t.Errorf("target_channel_chat_id = %v, want -100200", ch.TargetChannelChatID)
	}
	if ch.TodayPosts != 2 || ch.TotalPosts != 17 {
		t.Errorf("today_posts = %d total_posts = %d, want 2 and 17", ch.TodayPosts, ch.TotalPosts)
	}
	expectationsMet(t, mock)
}

func TestSourceChannelUpsertKeepsStoredTitle(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceChannelRepository(db, zap.NewNop())

	targetChat := models.ChatID(-100200)
	incoming := &models.SourceChannel{
		SourceChatID: -100100,
		TargetChatID: &targetChat,
		DailyLimit:   25,
		RemoveLinks:  true,
		ListenType:   models.ListenTypeDirect,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO source_channels (source_chat_id, target_chat_id, target_channel_id, source_title`)).
		WillReturnRows(sqlmock.NewRows(sourceColumns))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM source_channels WHERE source_chat_id = $1 FOR UPDATE`)).
		WithArgs(int64(-100100)).
		WillReturnRows(sqlmock.NewRows(sourceColumns).AddRow(sourceRow(3, "News", 10, false)...))
	// Arguments follow the policy order after the id: target_chat_id,
	// target_channel_id, source_title, source_username, target_title, ...
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE source_channels SET target_chat_id = $2, target_channel_id = $3, source_title = $4`)).
		WithArgs(int64(3), int64(-100200), nil, "News", nil, "Mirror",
			"", "", 25, true, false, "direct", "", false).
		WillReturnRows(sqlmock.NewRows(sourceColumns).AddRow(sourceRow(3, "News", 25, false)...))
	mock.ExpectCommit()

	ch, err := repo.Upsert(context.Background(), incoming)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if ch.SourceTitle == nil || *ch.SourceTitle != "News" {
		t.Errorf("source_title = %v, want News", ch.SourceTitle)
	}
	if ch.IsActive {
		t.Error("re-registration must not reactivate the rule")
	}
	if ch.DailyLimit != 25 {
		t.Errorf("daily_limit = %d, want 25", ch.DailyLimit)
	}
	expectationsMet(t, mock)
}

func TestSourceChannelUpsertInsertsNewRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceChannelRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (source_chat_id) DO NOTHING`)).
		WillReturnRows(sqlmock.NewRows(sourceColumns).AddRow(sourceRow(11, nil, 10, true)...))
	mock.ExpectCommit()

	ch, err := repo.Upsert(context.Background(), &models.SourceChannel{SourceChatID: -100100, DailyLimit: 10})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if ch.ID != 11 || ch.SourceChatID != -100100 {
		t.Errorf("unexpected row: %+v", ch)
	}
	if ch.TargetChatID == nil || *ch.TargetChatID != -100200 {
		t.Errorf("target_chat_id = %v", ch.TargetChatID)
	}
	expectationsMet(t, mock)
}

func TestSourceChannelUpdateUnknownID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceChannelRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE source_channels SET daily_limit = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`)).
		WithArgs(int64(404), 5).
		WillReturnRows(sqlmock.NewRows(sourceColumns))

	ch, err := repo.Update(context.Background(), 404, []Assignment{{Column: "daily_limit", Value: 5}})
	if err != nil || ch != nil {
		t.Fatalf("Update = %+v, %v; want nil, nil", ch, err)
	}
	expectationsMet(t, mock)
}

func TestSourceChannelDeleteDetachesLedger(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceChannelRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE posts SET source_channel_id = NULL WHERE source_channel_id = $1`)).
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE daily_stats SET source_channel_id = NULL WHERE source_channel_id = $1`)).
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM source_channels WHERE id = $1`)).
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	expectationsMet(t, mock)
}

func TestSourceChannelStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceChannelRepository(db, zap.NewNop())
	// A database running at UTC+3 hands back the instant with its offset.
	last := time.Date(2024, 3, 1, 15, 0, 0, 0, time.FixedZone("MSK", 3*60*60))

	mock.ExpectQuery(regexp.QuoteMeta(`COUNT(p.id) FILTER (WHERE DATE(p.created_at) = CURRENT_DATE) AS today_posts`) +
		`.*` + regexp.QuoteMeta(`MAX(p.created_at)::timestamptz AS last_post_time`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"daily_limit", "today_posts", "total_posts", "last_post_time"}).
			AddRow(10, 4, 90, last))

	stats, err := repo.Stats(context.Background(), 3)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TodayPosts != 4 || stats.TotalPosts != 90 || stats.RemainingToday != 6 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.LastPostTime != "2024-03-01T12:00:00Z" {
		t.Errorf("last_post_time = %q", stats.LastPostTime)
	}
	expectationsMet(t, mock)
}

func TestSourceChannelStatsUnknownChannel(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceChannelRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM source_channels sc`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"daily_limit", "today_posts", "total_posts", "last_post_time"}))

	stats, err := repo.Stats(context.Background(), 9)
	if err != nil || stats != nil {
		t.Fatalf("Stats = %+v, %v; want nil, nil", stats, err)
	}
	expectationsMet(t, mock)
}
