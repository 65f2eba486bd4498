package service

import (
	"context"
	"errors"
	"time"

	"github.com/campuslink/campuslink-backend/internal/common"
	"github.com/campuslink/campuslink-backend/internal/domain"
	"github.com/campuslink/campuslink-backend/internal/repository"
	"gorm.io/gorm"
)

// ScheduledMessageService business logic for queueing future messages
type ScheduledMessageService interface {
	Create(ctx context.Context, channelID uint64, actor domain.Actor, req *domain.CreateScheduledRequest) (*domain.ScheduledMessage, error)
	List(channelID uint64) ([]*domain.ScheduledMessage, error)
}

type scheduledMessageService struct {
	repo        repository.ScheduledMessageRepository
	channelRepo repository.ChannelRepository
	channelSvc  ChannelService
	now         func() time.Time
}

// NewScheduledMessageService creates a new ScheduledMessageService
func NewScheduledMessageService(
	repo repository.ScheduledMessageRepository,
	channelRepo repository.ChannelRepository,
	channelSvc ChannelService,
) ScheduledMessageService {
	return &scheduledMessageService{
		repo:        repo,
		channelRepo: channelRepo,
		channelSvc:  channelSvc,
		now:         time.Now,
	}
}

// Create queues a message. The schedule time must be strictly in the
// future; student senders go through the same posting policy gate as a
// live post.
func (s *scheduledMessageService) Create(ctx context.Context, channelID uint64, actor domain.Actor, req *domain.CreateScheduledRequest) (*domain.ScheduledMessage, error) {
	if _, err := s.channelRepo.FindByID(channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrChannelNotFound
		}
		return nil, err
	}

	if actor.IsStudent() {
		settings, err := s.channelSvc.GetSettings(ctx, channelID)
		if err != nil {
			return nil, err
		}
		if !settings.StudentsCanSend {
			return nil, common.ErrForbidden
		}
	}

	body := domain.TruncateBody(req.Body)
	if body == "" {
		return nil, common.ErrInvalidInput
	}
	if !req.ScheduledAt.After(s.now()) {
		return nil, common.ErrInvalidInput
	}

	sm := &domain.ScheduledMessage{
		ChannelID:   channelID,
		SenderKind:  actor.SenderKind(),
		Body:        body,
		ScheduledAt: req.ScheduledAt,
		Status:      domain.SchedulePending,
	}
	if actor.IsStudent() {
		sm.SenderStudentID = &actor.StudentID
	} else {
		sm.SenderStaffID = &actor.StaffID
	}

	if err := s.repo.Create(sm); err != nil {
		return nil, err
	}
	return sm, nil
}

// List returns a channel's scheduled messages
func (s *scheduledMessageService) List(channelID uint64) ([]*domain.ScheduledMessage, error) {
	if _, err := s.channelRepo.FindByID(channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrChannelNotFound
		}
		return nil, err
	}
	return s.repo.FindByChannel(channelID)
}
