package repository

import (
	"github.com/campuslink/campuslink-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChannelSettingsRepository per-channel policy data access interface
type ChannelSettingsRepository interface {
	Find(channelID uint64) (*domain.ChannelSettings, error)
	Upsert(settings *domain.ChannelSettings) error
	FindAll() ([]*domain.ChannelSettings, error)
}

type channelSettingsRepository struct {
	db *gorm.DB
}

// NewChannelSettingsRepository creates a new ChannelSettingsRepository
func NewChannelSettingsRepository(db *gorm.DB) ChannelSettingsRepository {
	return &channelSettingsRepository{db: db}
}

// Find returns the settings row for a channel, gorm.ErrRecordNotFound
// when none exists (callers fall back to defaults)
func (r *channelSettingsRepository) Find(channelID uint64) (*domain.ChannelSettings, error) {
	var s domain.ChannelSettings
	err := r.db.Where("channel_id = ?", channelID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert creates or updates a channel's settings row
func (r *channelSettingsRepository) Upsert(settings *domain.ChannelSettings) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		UpdateAll: true,
	}).Create(settings).Error
}

// FindAll returns every settings row, used by the retention sweep
func (r *channelSettingsRepository) FindAll() ([]*domain.ChannelSettings, error) {
	var rows []*domain.ChannelSettings
	err := r.db.Find(&rows).Error
	return rows, err
}
