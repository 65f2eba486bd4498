package service

import (
	"context"
	"time"

	"github.com/campuslink/campuslink-backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// --- Mock ChannelRepository ---

type mockChannelRepo struct {
	mock.Mock
}

func (m *mockChannelRepo) Create(ch *domain.Channel) error {
	return m.Called(ch).Error(0)
}

func (m *mockChannelRepo) FindByID(id uint64) (*domain.Channel, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Channel), args.Error(1)
}

func (m *mockChannelRepo) FindByClubID(clubID uint64) (*domain.Channel, error) {
	args := m.Called(clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Channel), args.Error(1)
}

func (m *mockChannelRepo) FindAllActive() ([]*domain.Channel, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Channel), args.Error(1)
}

func (m *mockChannelRepo) FindAll() ([]*domain.Channel, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Channel), args.Error(1)
}

func (m *mockChannelRepo) FindByCollegeIDs(collegeIDs []uint64) ([]*domain.Channel, error) {
	args := m.Called(collegeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Channel), args.Error(1)
}

func (m *mockChannelRepo) FindByClubIDs(clubIDs []uint64) ([]*domain.Channel, error) {
	args := m.Called(clubIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Channel), args.Error(1)
}

func (m *mockChannelRepo) FindByMemberKey(memberKey string) ([]*domain.Channel, error) {
	args := m.Called(memberKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Channel), args.Error(1)
}

func (m *mockChannelRepo) Deactivate(id uint64) error {
	return m.Called(id).Error(0)
}

func (m *mockChannelRepo) AddMember(mb *domain.ChannelMembership) error {
	return m.Called(mb).Error(0)
}

// --- Mock ChannelSettingsRepository ---

type mockSettingsRepo struct {
	mock.Mock
}

func (m *mockSettingsRepo) Find(channelID uint64) (*domain.ChannelSettings, error) {
	args := m.Called(channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChannelSettings), args.Error(1)
}

func (m *mockSettingsRepo) Upsert(settings *domain.ChannelSettings) error {
	return m.Called(settings).Error(0)
}

func (m *mockSettingsRepo) FindAll() ([]*domain.ChannelSettings, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChannelSettings), args.Error(1)
}

// --- Mock MessageRepository ---

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Create(msg *domain.Message) error {
	return m.Called(msg).Error(0)
}

func (m *mockMessageRepo) FindByID(id uint64) (*domain.Message, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *mockMessageRepo) FindPage(channelID uint64, beforeID uint64, limit int) ([]*domain.Message, error) {
	args := m.Called(channelID, beforeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *mockMessageRepo) UpdateBody(id uint64, body string, editedAt time.Time) error {
	return m.Called(id, body, editedAt).Error(0)
}

func (m *mockMessageRepo) ReplacePoll(id uint64, question *string, optionsJSON, countsJSON *string) error {
	return m.Called(id, question, optionsJSON, countsJSON).Error(0)
}

func (m *mockMessageRepo) SetHidden(id uint64, hidden bool, staffID uint64, at time.Time) error {
	return m.Called(id, hidden, staffID, at).Error(0)
}

func (m *mockMessageRepo) SoftDelete(id uint64, deleterKey string, at time.Time) error {
	return m.Called(id, deleterKey, at).Error(0)
}

func (m *mockMessageRepo) DeleteBefore(channelID uint64, cutoff time.Time) (int64, error) {
	args := m.Called(channelID, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock PollVoteRepository ---

type mockVoteRepo struct {
	mock.Mock
}

func (m *mockVoteRepo) Cast(vote *domain.PollVote) error {
	return m.Called(vote).Error(0)
}

func (m *mockVoteRepo) FindByMessageAndVoter(messageID uint64, voterKey string) (*domain.PollVote, error) {
	args := m.Called(messageID, voterKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PollVote), args.Error(1)
}

func (m *mockVoteRepo) FindByMessages(messageIDs []uint64) ([]*domain.PollVote, error) {
	args := m.Called(messageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PollVote), args.Error(1)
}

func (m *mockVoteRepo) VotesByVoter(messageIDs []uint64, voterKey string) (map[uint64]*domain.PollVote, error) {
	args := m.Called(messageIDs, voterKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint64]*domain.PollVote), args.Error(1)
}

// --- Mock ScheduledMessageRepository ---

type mockScheduledRepo struct {
	mock.Mock
}

func (m *mockScheduledRepo) Create(sm *domain.ScheduledMessage) error {
	return m.Called(sm).Error(0)
}

func (m *mockScheduledRepo) FindByChannel(channelID uint64) ([]*domain.ScheduledMessage, error) {
	args := m.Called(channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScheduledMessage), args.Error(1)
}

func (m *mockScheduledRepo) FindDue(now time.Time) ([]*domain.ScheduledMessage, error) {
	args := m.Called(now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScheduledMessage), args.Error(1)
}

func (m *mockScheduledRepo) Claim(id uint64, at time.Time) (bool, error) {
	args := m.Called(id, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockScheduledRepo) MarkFailed(id uint64) error {
	return m.Called(id).Error(0)
}

// --- Mock RosterRepository ---

type mockRosterRepo struct {
	mock.Mock
}

func (m *mockRosterRepo) FindStudentByUserID(userID string) (*domain.Student, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *mockRosterRepo) FindStaffByUserID(userID string) (*domain.Staff, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Staff), args.Error(1)
}

func (m *mockRosterRepo) StudentNames(ids []uint64) (map[uint64]string, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint64]string), args.Error(1)
}

func (m *mockRosterRepo) StaffNames(ids []uint64) (map[uint64]string, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint64]string), args.Error(1)
}

func (m *mockRosterRepo) StaffCollegeIDs(staffID uint64) ([]uint64, error) {
	args := m.Called(staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}

func (m *mockRosterRepo) ApprovedClubIDs(studentID uint64) ([]uint64, error) {
	args := m.Called(studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}

func (m *mockRosterRepo) ApprovedMemberIDs(clubID uint64) ([]uint64, error) {
	args := m.Called(clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}

// --- Mock ChannelService ---

type mockChannelService struct {
	mock.Mock
}

func (m *mockChannelService) ListVisible(ctx context.Context, actor domain.Actor) ([]*domain.Channel, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Channel), args.Error(1)
}

func (m *mockChannelService) ByClubRef(ctx context.Context, clubID uint64) (*domain.Channel, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Channel), args.Error(1)
}

func (m *mockChannelService) Create(ctx context.Context, actor domain.Actor, req *domain.CreateChannelRequest) (*domain.Channel, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Channel), args.Error(1)
}

func (m *mockChannelService) Deactivate(ctx context.Context, actor domain.Actor, channelID uint64) error {
	return m.Called(ctx, actor, channelID).Error(0)
}

func (m *mockChannelService) GetSettings(ctx context.Context, channelID uint64) (*domain.ChannelSettings, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChannelSettings), args.Error(1)
}

func (m *mockChannelService) PutSettings(ctx context.Context, actor domain.Actor, channelID uint64, req *domain.UpdateSettingsRequest) (*domain.ChannelSettings, error) {
	args := m.Called(ctx, actor, channelID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChannelSettings), args.Error(1)
}

// --- Shared fixtures ---

func uptr(v uint64) *uint64 { return &v }

func studentActor(id uint64) domain.Actor {
	return domain.Actor{Kind: domain.ActorStudent, StudentID: id, Name: "Student"}
}

func facultyActor(id uint64) domain.Actor {
	return domain.Actor{Kind: domain.ActorStaff, StaffID: id, Role: domain.RoleFaculty, Name: "Faculty"}
}

func adminActor(id uint64) domain.Actor {
	return domain.Actor{Kind: domain.ActorStaff, StaffID: id, Role: domain.RoleAdmin, Name: "Admin"}
}
