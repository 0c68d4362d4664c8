package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"relay-panel/internal/models"
	"relay-panel/internal/repository"

	"go.uber.org/zap"
)

type TargetChannelService interface {
	List(ctx context.Context) ([]models.TargetChannel, error)
	Create(ctx context.Context, in models.CreateTargetChannelInput) (*models.TargetChannel, error)
	Update(ctx context.Context, in models.UpdateTargetChannelInput) (*models.TargetChannel, error)
	Delete(ctx context.Context, id int64) error
}

type targetChannelService struct {
	repo   repository.TargetChannelRepository
	logger *zap.Logger
}

func NewTargetChannelService(repo repository.TargetChannelRepository, logger *zap.Logger) TargetChannelService {
	return &targetChannelService{repo: repo, logger: logger}
}

func (s *targetChannelService) List(ctx context.Context) ([]models.TargetChannel, error) {
	return s.repo.ListActive(ctx)
}

func (s *targetChannelService) Create(ctx context.Context, in models.CreateTargetChannelInput) (*models.TargetChannel, error) {
	title := strings.TrimSpace(in.Title)
	if in.ChatID == 0 || title == "" {
		return nil, ErrChatIDAndTitleRequired
	}

	ch, err := s.repo.Upsert(ctx, &models.TargetChannel{
		ChatID:   in.ChatID.String(),
		Title:    title,
		Username: nonEmpty(in.Username),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Target channel saved", zap.Int64("id", ch.ID), zap.String("chat_id", ch.ChatID))
	return ch, nil
}

func (s *targetChannelService) Update(ctx context.Context, in models.UpdateTargetChannelInput) (*models.TargetChannel, error) {
	if in.ID == 0 {
		return nil, ErrChannelIDRequired
	}

	var set []repository.Assignment
	if in.Title.Set {
		title := strings.TrimSpace(in.Title.Value)
		if in.Title.Null || title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidField)
		}
		set = append(set, repository.Assignment{Column: "title", Value: title})
	}
	if in.Username.Set {
		set = append(set, repository.Assignment{Column: "username", Value: nullableString(in.Username)})
	}
	if in.IsActive.Set {
		if in.IsActive.Null {
			return nil, fmt.Errorf("%w: is_active cannot be null", ErrInvalidField)
		}
		set = append(set, repository.Assignment{Column: "is_active", Value: in.IsActive.Value})
	}
	if len(set) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	ch, err := s.repo.Update(ctx, int64(in.ID), set)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	return ch, nil
}

func (s *targetChannelService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrChannelIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			s.logger.Info("Refused to delete referenced target channel", zap.Int64("id", id), zap.Error(err))
			return ErrTargetChannelInUse
		}
		return err
	}
	return nil
}

// nonEmpty maps blank labels to nil so they are stored as NULL.
func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func nullableString(o models.Optional[string]) *string {
	if o.Null {
		return nil
	}
	return nonEmpty(&o.Value)
}
