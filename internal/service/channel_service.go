package service

import (
	"context"
	"errors"
	"sort"

	"github.com/campuslink/campuslink-backend/internal/common"
	"github.com/campuslink/campuslink-backend/internal/domain"
	"github.com/campuslink/campuslink-backend/internal/repository"
	"github.com/campuslink/campuslink-backend/pkg/cache"
	"github.com/campuslink/campuslink-backend/pkg/logger"
	"gorm.io/gorm"
)

// ChannelService business logic for the channel directory and settings
type ChannelService interface {
	ListVisible(ctx context.Context, actor domain.Actor) ([]*domain.Channel, error)
	ByClubRef(ctx context.Context, clubID uint64) (*domain.Channel, error)
	Create(ctx context.Context, actor domain.Actor, req *domain.CreateChannelRequest) (*domain.Channel, error)
	Deactivate(ctx context.Context, actor domain.Actor, channelID uint64) error
	GetSettings(ctx context.Context, channelID uint64) (*domain.ChannelSettings, error)
	PutSettings(ctx context.Context, actor domain.Actor, channelID uint64, req *domain.UpdateSettingsRequest) (*domain.ChannelSettings, error)
}

type channelService struct {
	repo         repository.ChannelRepository
	settingsRepo repository.ChannelSettingsRepository
	roster       repository.RosterRepository
	cache        cache.Service
}

// NewChannelService creates a new ChannelService
func NewChannelService(
	repo repository.ChannelRepository,
	settingsRepo repository.ChannelSettingsRepository,
	roster repository.RosterRepository,
	cacheService cache.Service,
) ChannelService {
	return &channelService{
		repo:         repo,
		settingsRepo: settingsRepo,
		roster:       roster,
		cache:        cacheService,
	}
}

// ListVisible returns the channels the caller may see.
// Students: explicit memberships plus club channels where they hold an
// approved club membership. Admin staff: every active channel. Other
// staff: channels of their assigned colleges plus explicit memberships.
func (s *channelService) ListVisible(ctx context.Context, actor domain.Actor) ([]*domain.Channel, error) {
	cacheKey := s.cache.VisibleChannelsKey(actor.Key())
	var cached []*domain.Channel
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	var channels []*domain.Channel
	var err error
	switch {
	case actor.IsStudent():
		channels, err = s.visibleForStudent(actor.StudentID, actor.Key())
	case actor.IsAdmin():
		channels, err = s.repo.FindAllActive()
	default:
		channels, err = s.visibleForFaculty(actor.StaffID, actor.Key())
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, channels, cache.TTLChannels); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("channel list cache write failed")
	}
	return channels, nil
}

func (s *channelService) visibleForStudent(studentID uint64, actorKey string) ([]*domain.Channel, error) {
	member, err := s.repo.FindByMemberKey(actorKey)
	if err != nil {
		return nil, err
	}

	clubIDs, err := s.roster.ApprovedClubIDs(studentID)
	if err != nil {
		return nil, err
	}
	clubChannels, err := s.repo.FindByClubIDs(clubIDs)
	if err != nil {
		return nil, err
	}

	return mergeChannels(member, clubChannels), nil
}

func (s *channelService) visibleForFaculty(staffID uint64, actorKey string) ([]*domain.Channel, error) {
	collegeIDs, err := s.roster.StaffCollegeIDs(staffID)
	if err != nil {
		return nil, err
	}
	collegeChannels, err := s.repo.FindByCollegeIDs(collegeIDs)
	if err != nil {
		return nil, err
	}

	member, err := s.repo.FindByMemberKey(actorKey)
	if err != nil {
		return nil, err
	}

	return mergeChannels(collegeChannels, member), nil
}

// mergeChannels unions channel slices, dropping duplicates, ordered by id
func mergeChannels(lists ...[]*domain.Channel) []*domain.Channel {
	seen := make(map[uint64]bool)
	var out []*domain.Channel
	for _, list := range lists {
		for _, ch := range list {
			if seen[ch.ID] {
				continue
			}
			seen[ch.ID] = true
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByClubRef returns a club's active channel, or nil when it has none
func (s *channelService) ByClubRef(ctx context.Context, clubID uint64) (*domain.Channel, error) {
	cacheKey := s.cache.ClubChannelKey(clubID)
	var cached domain.Channel
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && cached.ID != 0 {
		return &cached, nil
	}

	ch, err := s.repo.FindByClubID(clubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, ch, cache.TTLChannels); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("club channel cache write failed")
	}
	return ch, nil
}

// Create validates and persists a channel. Club channels auto-enroll
// every currently approved club member; enrollment is best-effort and a
// duplicate is not an error.
func (s *channelService) Create(ctx context.Context, actor domain.Actor, req *domain.CreateChannelRequest) (*domain.Channel, error) {
	if !actor.CanModerate() {
		return nil, common.ErrForbidden
	}
	if !domain.ValidChannelType(req.Type) {
		return nil, common.ErrInvalidChannel
	}
	if req.Name == "" {
		return nil, common.ErrInvalidInput
	}

	ch := &domain.Channel{
		Type:             req.Type,
		Name:             req.Name,
		CollegeID:        req.CollegeID,
		IsActive:         true,
		CreatedByStaffID: actor.StaffID,
	}
	switch req.Type {
	case domain.ChannelSubject:
		ch.SubjectID = req.SubjectID
	case domain.ChannelClub:
		ch.ClubID = req.ClubID
	case domain.ChannelEvent:
		ch.EventID = req.EventID
	}
	if ch.RefID() == nil {
		return nil, common.ErrInvalidInput
	}

	if err := s.repo.Create(ch); err != nil {
		return nil, err
	}

	if ch.Type == domain.ChannelClub {
		s.enrollClubMembers(ch)
	}

	if err := s.cache.InvalidateDirectory(ctx); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("directory cache invalidation failed")
	}
	return ch, nil
}

// enrollClubMembers adds every approved club member to the new channel.
// A failed enrollment is logged and skipped, never fatal.
func (s *channelService) enrollClubMembers(ch *domain.Channel) {
	studentIDs, err := s.roster.ApprovedMemberIDs(*ch.ClubID)
	if err != nil {
		logger.GetLogger().Error().Err(err).
			Uint64("channel_id", ch.ID).
			Uint64("club_id", *ch.ClubID).
			Msg("club roster lookup failed, skipping auto-enrollment")
		return
	}
	for _, studentID := range studentIDs {
		if err := s.repo.AddMember(domain.StudentMembership(ch.ID, studentID)); err != nil {
			logger.GetLogger().Warn().Err(err).
				Uint64("channel_id", ch.ID).
				Uint64("student_id", studentID).
				Msg("club member auto-enrollment failed")
		}
	}
}

// Deactivate logically deletes a channel
func (s *channelService) Deactivate(ctx context.Context, actor domain.Actor, channelID uint64) error {
	if !actor.CanModerate() {
		return common.ErrForbidden
	}
	if err := s.repo.Deactivate(channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrChannelNotFound
		}
		return err
	}
	if err := s.cache.InvalidateDirectory(ctx); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("directory cache invalidation failed")
	}
	return nil
}

// GetSettings returns a channel's policy, falling back to the defaults
// when no settings row exists yet
func (s *channelService) GetSettings(ctx context.Context, channelID uint64) (*domain.ChannelSettings, error) {
	if _, err := s.repo.FindByID(channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrChannelNotFound
		}
		return nil, err
	}

	cacheKey := s.cache.SettingsKey(channelID)
	var cached domain.ChannelSettings
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && cached.ChannelID != 0 {
		return &cached, nil
	}

	settings, err := s.settingsRepo.Find(channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			settings = domain.DefaultChannelSettings(channelID)
		} else {
			return nil, err
		}
	}
	settings.AutoDeleteAfterDays = domain.ClampRetentionDays(settings.AutoDeleteAfterDays)

	if err := s.cache.Set(ctx, cacheKey, settings, cache.TTLSettings); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("settings cache write failed")
	}
	return settings, nil
}

// PutSettings upserts a channel's policy, clamping the retention window
func (s *channelService) PutSettings(ctx context.Context, actor domain.Actor, channelID uint64, req *domain.UpdateSettingsRequest) (*domain.ChannelSettings, error) {
	if !actor.CanModerate() {
		return nil, common.ErrForbidden
	}

	current, err := s.GetSettings(ctx, channelID)
	if err != nil {
		return nil, err
	}

	if req.StudentsCanSend != nil {
		current.StudentsCanSend = *req.StudentsCanSend
	}
	if req.AutoDeleteAfterDays != nil {
		current.AutoDeleteAfterDays = domain.ClampRetentionDays(*req.AutoDeleteAfterDays)
	}

	if err := s.settingsRepo.Upsert(current); err != nil {
		return nil, err
	}
	if err := s.cache.InvalidateSettings(ctx, channelID); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("settings cache invalidation failed")
	}
	return current, nil
}
