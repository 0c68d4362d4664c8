package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"relay-panel/internal/models"
	"relay-panel/internal/repository"
)

// fakeTargetRepo keeps target channels in memory.
type fakeTargetRepo struct {
	mu       sync.Mutex
	channels map[int64]*models.TargetChannel
	refs     map[int64]int
	nextID   int64
	updates  [][]repository.Assignment
}

func newFakeTargetRepo(channels ...models.TargetChannel) *fakeTargetRepo {
	r := &fakeTargetRepo{channels: map[int64]*models.TargetChannel{}, refs: map[int64]int{}}
	for i := range channels {
		ch := channels[i]
		r.channels[ch.ID] = &ch
		if ch.ID > r.nextID {
			r.nextID = ch.ID
		}
	}
	return r
}

func (r *fakeTargetRepo) ListActive(ctx context.Context) ([]models.TargetChannel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.TargetChannel{}
	for _, ch := range r.channels {
		if ch.IsActive {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func (r *fakeTargetRepo) GetByID(ctx context.Context, id int64) (*models.TargetChannel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[id]
	if !ok {
		return nil, nil
	}
	cp := *ch
	return &cp, nil
}

func (r *fakeTargetRepo) Upsert(ctx context.Context, ch *models.TargetChannel) (*models.TargetChannel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.channels {
		if existing.ChatID == ch.ChatID {
			merged := models.MergeTargetChannel(*existing, *ch)
			*existing = merged
			return &merged, nil
		}
	}
	r.nextID++
	saved := *ch
	saved.ID = r.nextID
	saved.IsActive = true
	r.channels[saved.ID] = &saved
	return &saved, nil
}

func (r *fakeTargetRepo) Update(ctx context.Context, id int64, set []repository.Assignment) (*models.TargetChannel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, set)
	ch, ok := r.channels[id]
	if !ok {
		return nil, nil
	}
	for _, a := range set {
		switch a.Column {
		case "title":
			ch.Title = a.Value.(string)
		case "username":
			ch.Username = a.Value.(*string)
		case "is_active":
			ch.IsActive = a.Value.(bool)
		}
	}
	cp := *ch
	return &cp, nil
}

func (r *fakeTargetRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refs[id] > 0 {
		return repository.ErrInUse
	}
	delete(r.channels, id)
	return nil
}

// fakeSourceRepo records what the service asks for.
type fakeSourceRepo struct {
	mu       sync.Mutex
	channels map[int64]*models.SourceChannel
	nextID   int64
	upserted []models.SourceChannel
	updates  [][]repository.Assignment
	deleted  []int64
	stats    map[int64]*models.ChannelStats
}

func newFakeSourceRepo(channels ...models.SourceChannel) *fakeSourceRepo {
	r := &fakeSourceRepo{channels: map[int64]*models.SourceChannel{}, stats: map[int64]*models.ChannelStats{}}
	for i := range channels {
		ch := channels[i]
		r.channels[ch.ID] = &ch
		if ch.ID > r.nextID {
			r.nextID = ch.ID
		}
	}
	return r
}

func (r *fakeSourceRepo) List(ctx context.Context) ([]models.SourceChannelView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.SourceChannelView{}
	for _, ch := range r.channels {
		out = append(out, models.SourceChannelView{SourceChannel: *ch})
	}
	return out, nil
}

func (r *fakeSourceRepo) GetByID(ctx context.Context, id int64) (*models.SourceChannel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[id]
	if !ok {
		return nil, nil
	}
	cp := *ch
	return &cp, nil
}

func (r *fakeSourceRepo) Upsert(ctx context.Context, ch *models.SourceChannel) (*models.SourceChannel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, *ch)
	for _, existing := range r.channels {
		if existing.SourceChatID == ch.SourceChatID {
			merged := models.MergeSourceChannel(*existing, *ch)
			merged.UpdatedAt = time.Now()
			*existing = merged
			return &merged, nil
		}
	}
	r.nextID++
	saved := *ch
	saved.ID = r.nextID
	saved.CreatedAt = time.Now()
	saved.UpdatedAt = saved.CreatedAt
	r.channels[saved.ID] = &saved
	return &saved, nil
}

func (r *fakeSourceRepo) Update(ctx context.Context, id int64, set []repository.Assignment) (*models.SourceChannel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, set)
	ch, ok := r.channels[id]
	if !ok {
		return nil, nil
	}
	ch.UpdatedAt = time.Now()
	cp := *ch
	return &cp, nil
}

func (r *fakeSourceRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	delete(r.channels, id)
	return nil
}

func (r *fakeSourceRepo) Stats(ctx context.Context, id int64) (*models.ChannelStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats[id], nil
}

type fakeResolver struct {
	info  *models.ChatInfo
	err   error
	calls int
}

func (r *fakeResolver) Resolve(ctx context.Context, chatID models.ChatID) (*models.ChatInfo, error) {
	r.calls++
	return r.info, r.err
}

type fakeStatsRepo struct {
	today   models.DailyTotals
	total   int64
	weekly  []models.WeeklyStat
	active  int64
	last    *time.Time
	failErr error
}

func (r *fakeStatsRepo) TodayTotals(ctx context.Context) (models.DailyTotals, error) {
	return r.today, nil
}

func (r *fakeStatsRepo) TotalSuccessfulPosts(ctx context.Context) (int64, error) {
	if r.failErr != nil {
		return 0, r.failErr
	}
	return r.total, nil
}

func (r *fakeStatsRepo) WeeklySeries(ctx context.Context) ([]models.WeeklyStat, error) {
	return r.weekly, nil
}

func (r *fakeStatsRepo) ActiveChannelCount(ctx context.Context) (int64, error) {
	return r.active, nil
}

func (r *fakeStatsRepo) LastSuccessfulPostTime(ctx context.Context) (*time.Time, error) {
	return r.last, nil
}

type fakeSettingsRepo struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeSettingsRepo(values map[string]string) *fakeSettingsRepo {
	if values == nil {
		values = map[string]string{}
	}
	return &fakeSettingsRepo{values: values}
}

func (r *fakeSettingsRepo) GetAll(ctx context.Context) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out, nil
}

func (r *fakeSettingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *fakeSettingsRepo) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

var errDatabaseDown = errors.New("connection refused")

func assignment(set []repository.Assignment, column string) (interface{}, bool) {
	for _, a := range set {
		if a.Column == column {
			return a.Value, true
		}
	}
	return nil, false
}
