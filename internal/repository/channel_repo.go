package repository

import (
	"github.com/campuslink/campuslink-backend/internal/domain"
	"gorm.io/gorm"
)

// ChannelRepository channel and membership data access interface
type ChannelRepository interface {
	Create(ch *domain.Channel) error
	FindByID(id uint64) (*domain.Channel, error)
	FindByClubID(clubID uint64) (*domain.Channel, error)
	FindAllActive() ([]*domain.Channel, error)
	FindAll() ([]*domain.Channel, error)
	FindByCollegeIDs(collegeIDs []uint64) ([]*domain.Channel, error)
	FindByClubIDs(clubIDs []uint64) ([]*domain.Channel, error)
	FindByMemberKey(memberKey string) ([]*domain.Channel, error)
	Deactivate(id uint64) error
	AddMember(m *domain.ChannelMembership) error
}

type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository creates a new ChannelRepository
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

// Create persists a new channel
func (r *channelRepository) Create(ch *domain.Channel) error {
	return r.db.Create(ch).Error
}

// FindByID finds an active channel by ID
func (r *channelRepository) FindByID(id uint64) (*domain.Channel, error) {
	var ch domain.Channel
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&ch).Error
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// FindByClubID finds the active channel of a club, if any
func (r *channelRepository) FindByClubID(clubID uint64) (*domain.Channel, error) {
	var ch domain.Channel
	err := r.db.Where("club_id = ? AND channel_type = ? AND is_active = ?",
		clubID, domain.ChannelClub, true).First(&ch).Error
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// FindAllActive returns every active channel
func (r *channelRepository) FindAllActive() ([]*domain.Channel, error) {
	var channels []*domain.Channel
	err := r.db.Where("is_active = ?", true).Order("id").Find(&channels).Error
	return channels, err
}

// FindAll returns every channel, including deactivated ones.
// Used by the retention sweep, which purges regardless of visibility.
func (r *channelRepository) FindAll() ([]*domain.Channel, error) {
	var channels []*domain.Channel
	err := r.db.Order("id").Find(&channels).Error
	return channels, err
}

// FindByCollegeIDs returns active channels scoped to any of the colleges
func (r *channelRepository) FindByCollegeIDs(collegeIDs []uint64) ([]*domain.Channel, error) {
	if len(collegeIDs) == 0 {
		return nil, nil
	}
	var channels []*domain.Channel
	err := r.db.Where("college_id IN ? AND is_active = ?", collegeIDs, true).
		Order("id").Find(&channels).Error
	return channels, err
}

// FindByClubIDs returns active club channels for any of the clubs
func (r *channelRepository) FindByClubIDs(clubIDs []uint64) ([]*domain.Channel, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}
	var channels []*domain.Channel
	err := r.db.Where("club_id IN ? AND channel_type = ? AND is_active = ?",
		clubIDs, domain.ChannelClub, true).Order("id").Find(&channels).Error
	return channels, err
}

// FindByMemberKey returns active channels with an explicit membership
// for the given identity key
func (r *channelRepository) FindByMemberKey(memberKey string) ([]*domain.Channel, error) {
	var channels []*domain.Channel
	err := r.db.
		Joins("JOIN channel_memberships cm ON cm.channel_id = channels.id").
		Where("cm.member_key = ? AND channels.is_active = ?", memberKey, true).
		Order("channels.id").Find(&channels).Error
	return channels, err
}

// Deactivate logically deletes a channel
func (r *channelRepository) Deactivate(id uint64) error {
	result := r.db.Model(&domain.Channel{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddMember enrolls an identity into a channel. A duplicate enrollment
// is not an error.
func (r *channelRepository) AddMember(m *domain.ChannelMembership) error {
	return r.db.
		Where("channel_id = ? AND member_key = ?", m.ChannelID, m.MemberKey).
		FirstOrCreate(m).Error
}
