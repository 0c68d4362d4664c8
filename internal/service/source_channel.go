package service

import (
	"context"
	"fmt"

	"relay-panel/internal/models"
	"relay-panel/internal/repository"

	"go.uber.org/zap"
)

// ChatResolver looks up display labels of a chat on the messaging platform.
type ChatResolver interface {
	Resolve(ctx context.Context, chatID models.ChatID) (*models.ChatInfo, error)
}

type SourceChannelService interface {
	List(ctx context.Context) ([]models.SourceChannelView, error)
	Create(ctx context.Context, in models.CreateSourceChannelInput) (*models.SourceChannel, error)
	Update(ctx context.Context, in models.UpdateSourceChannelInput) (*models.SourceChannel, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context, id int64) (*models.ChannelStats, error)
}

type sourceChannelService struct {
	repo     repository.SourceChannelRepository
	targets  repository.TargetChannelRepository
	resolver ChatResolver
	logger   *zap.Logger
}

// NewSourceChannelService wires the source registry. resolver may be nil.
func NewSourceChannelService(
	repo repository.SourceChannelRepository,
	targets repository.TargetChannelRepository,
	resolver ChatResolver,
	logger *zap.Logger,
) SourceChannelService {
	return &sourceChannelService{repo: repo, targets: targets, resolver: resolver, logger: logger}
}

func (s *sourceChannelService) List(ctx context.Context) ([]models.SourceChannelView, error) {
	return s.repo.List(ctx)
}

func (s *sourceChannelService) Create(ctx context.Context, in models.CreateSourceChannelInput) (*models.SourceChannel, error) {
	if in.SourceChatID == 0 {
		return nil, ErrSourceChatIDRequired
	}

	ch := models.SourceChannel{
		SourceChatID:    in.SourceChatID,
		SourceTitle:     nonEmpty(in.SourceTitle),
		SourceUsername:  nonEmpty(in.SourceUsername),
		AppendLink:      in.AppendLink,
		AppendLinkText:  in.AppendLinkText,
		DailyLimit:      models.DefaultDailyLimit,
		RemoveLinks:     boolOr(in.RemoveLinks, true),
		RemoveEmojis:    boolOr(in.RemoveEmojis, false),
		IsActive:        true,
		ListenType:      models.ListenTypeDirect,
		TriggerKeywords: in.TriggerKeywords,
		SendLinkBack:    boolOr(in.SendLinkBack, false),
	}
	if in.DailyLimit != nil && *in.DailyLimit > 0 {
		ch.DailyLimit = *in.DailyLimit
	}
	if in.ListenType != "" {
		if !validListenType(in.ListenType) {
			return nil, fmt.Errorf("%w: listen_type must be %q or %q", ErrInvalidField, models.ListenTypeDirect, models.ListenTypeLink)
		}
		ch.ListenType = in.ListenType
	}

	if in.TargetChannelID > 0 {
		target, err := s.resolveTarget(ctx, int64(in.TargetChannelID))
		if err != nil {
			return nil, err
		}
		if err := mirrorTarget(&ch, target); err != nil {
			return nil, err
		}
	} else {
		if in.TargetChatID != 0 {
			targetChatID := in.TargetChatID
			ch.TargetChatID = &targetChatID
		}
		ch.TargetTitle = nonEmpty(in.TargetTitle)
	}

	if ch.SourceTitle == nil {
		s.fillSourceLabels(ctx, &ch)
	}

	saved, err := s.repo.Upsert(ctx, &ch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Source channel saved",
		zap.Int64("id", saved.ID),
		zap.String("source_chat_id", saved.SourceChatID.String()),
	)
	return saved, nil
}

func (s *sourceChannelService) Update(ctx context.Context, in models.UpdateSourceChannelInput) (*models.SourceChannel, error) {
	if in.ID == 0 {
		return nil, ErrChannelIDRequired
	}
	id := int64(in.ID)

	if in.SourceChatID.Set {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, ErrChannelNotFound
		}
		if in.SourceChatID.Null || in.SourceChatID.Value != existing.SourceChatID {
			return nil, ErrSourceChatIDImmutable
		}
	}

	set, err := s.assignments(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	ch, err := s.repo.Update(ctx, id, set)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	return ch, nil
}

func (s *sourceChannelService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrChannelIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Source channel deleted", zap.Int64("id", id))
	return nil
}

func (s *sourceChannelService) Stats(ctx context.Context, id int64) (*models.ChannelStats, error) {
	if id <= 0 {
		return nil, ErrChannelIDRequired
	}
	stats, err := s.repo.Stats(ctx, id)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, ErrChannelNotFound
	}
	return stats, nil
}

// assignments turns the supplied fields of a partial update into column
// assignments. A resolved target_channel_id supplies target_chat_id and
// target_title itself, so raw values sent alongside it are ignored.
func (s *sourceChannelService) assignments(ctx context.Context, in models.UpdateSourceChannelInput) ([]repository.Assignment, error) {
	var set []repository.Assignment
	add := func(column string, value interface{}) {
		set = append(set, repository.Assignment{Column: column, Value: value})
	}

	targetResolved := false
	if in.TargetChannelID.Set {
		if in.TargetChannelID.Null || in.TargetChannelID.Value == 0 {
			add("target_channel_id", nil)
		} else {
			target, err := s.resolveTarget(ctx, int64(in.TargetChannelID.Value))
			if err != nil {
				return nil, err
			}
			var ch models.SourceChannel
			if err := mirrorTarget(&ch, target); err != nil {
				return nil, err
			}
			add("target_channel_id", *ch.TargetChannelID)
			add("target_chat_id", nullableChatID(ch.TargetChatID))
			add("target_title", *ch.TargetTitle)
			targetResolved = true
		}
	}

	if in.SourceTitle.Set {
		add("source_title", nullableString(in.SourceTitle))
	}
	if in.SourceUsername.Set {
		add("source_username", nullableString(in.SourceUsername))
	}
	if !targetResolved {
		if in.TargetChatID.Set {
			if in.TargetChatID.Null || in.TargetChatID.Value == 0 {
				add("target_chat_id", nil)
			} else {
				add("target_chat_id", int64(in.TargetChatID.Value))
			}
		}
		if in.TargetTitle.Set {
			add("target_title", nullableString(in.TargetTitle))
		}
	}

	for _, f := range []struct {
		column string
		value  models.Optional[string]
	}{
		{"append_link", in.AppendLink},
		{"append_link_text", in.AppendLinkText},
		{"trigger_keywords", in.TriggerKeywords},
	} {
		if !f.value.Set {
			continue
		}
		if f.value.Null {
			return nil, fmt.Errorf("%w: %s cannot be null", ErrInvalidField, f.column)
		}
		add(f.column, f.value.Value)
	}

	if in.DailyLimit.Set {
		if in.DailyLimit.Null || in.DailyLimit.Value <= 0 {
			return nil, fmt.Errorf("%w: daily_limit must be a positive number", ErrInvalidField)
		}
		add("daily_limit", in.DailyLimit.Value)
	}

	for _, f := range []struct {
		column string
		value  models.Optional[bool]
	}{
		{"remove_links", in.RemoveLinks},
		{"remove_emojis", in.RemoveEmojis},
		{"is_active", in.IsActive},
		{"send_link_back", in.SendLinkBack},
	} {
		if !f.value.Set {
			continue
		}
		if f.value.Null {
			return nil, fmt.Errorf("%w: %s cannot be null", ErrInvalidField, f.column)
		}
		add(f.column, f.value.Value)
	}

	if in.ListenType.Set {
		if in.ListenType.Null || !validListenType(in.ListenType.Value) {
			return nil, fmt.Errorf("%w: listen_type must be %q or %q", ErrInvalidField, models.ListenTypeDirect, models.ListenTypeLink)
		}
		add("listen_type", in.ListenType.Value)
	}

	return set, nil
}

func (s *sourceChannelService) resolveTarget(ctx context.Context, id int64) (*models.TargetChannel, error) {
	target, err := s.targets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrTargetChannelNotFound
	}
	return target, nil
}

// fillSourceLabels asks the resolver for the chat's title. Failures only
// cost the label.
func (s *sourceChannelService) fillSourceLabels(ctx context.Context, ch *models.SourceChannel) {
	if s.resolver == nil {
		return
	}
	info, err := s.resolver.Resolve(ctx, ch.SourceChatID)
	if err != nil {
		s.logger.Warn("Failed to resolve source chat",
			zap.String("source_chat_id", ch.SourceChatID.String()),
			zap.Error(err),
		)
		return
	}
	ch.SourceTitle = nonEmpty(&info.Title)
	if ch.SourceUsername == nil {
		ch.SourceUsername = nonEmpty(&info.Username)
	}
}

// mirrorTarget copies the registry's current values into the rule. A target
// whose chat_id is not numeric (rows saved raw, e.g. "@promo") cannot be
// mirrored and leaves ch untouched.
func mirrorTarget(ch *models.SourceChannel, target *models.TargetChannel) error {
	chatID, err := models.ParseChatID(target.ChatID)
	if err != nil {
		return fmt.Errorf("%w: target channel %d has non-numeric chat_id %q", ErrInvalidField, target.ID, target.ChatID)
	}
	id := target.ID
	title := target.Title
	ch.TargetChannelID = &id
	ch.TargetChatID = &chatID
	ch.TargetTitle = &title
	return nil
}

func nullableChatID(id *models.ChatID) interface{} {
	if id == nil {
		return nil
	}
	return int64(*id)
}

func validListenType(t string) bool {
	return t == models.ListenTypeDirect || t == models.ListenTypeLink
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

