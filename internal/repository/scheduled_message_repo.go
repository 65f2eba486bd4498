package repository

import (
	"time"

	"github.com/campuslink/campuslink-backend/internal/domain"
	"gorm.io/gorm"
)

// ScheduledMessageRepository scheduled message data access interface
type ScheduledMessageRepository interface {
	Create(sm *domain.ScheduledMessage) error
	FindByChannel(channelID uint64) ([]*domain.ScheduledMessage, error)
	FindDue(now time.Time) ([]*domain.ScheduledMessage, error)
	Claim(id uint64, at time.Time) (bool, error)
	MarkFailed(id uint64) error
}

type scheduledMessageRepository struct {
	db *gorm.DB
}

// NewScheduledMessageRepository creates a new ScheduledMessageRepository
func NewScheduledMessageRepository(db *gorm.DB) ScheduledMessageRepository {
	return &scheduledMessageRepository{db: db}
}

// Create queues a message for future dispatch
func (r *scheduledMessageRepository) Create(sm *domain.ScheduledMessage) error {
	return r.db.Create(sm).Error
}

// FindByChannel returns a channel's scheduled messages, soonest first
func (r *scheduledMessageRepository) FindByChannel(channelID uint64) ([]*domain.ScheduledMessage, error) {
	var rows []*domain.ScheduledMessage
	err := r.db.Where("channel_id = ?", channelID).
		Order("scheduled_at").Find(&rows).Error
	return rows, err
}

// FindDue returns pending rows whose scheduled time has passed
func (r *scheduledMessageRepository) FindDue(now time.Time) ([]*domain.ScheduledMessage, error) {
	var rows []*domain.ScheduledMessage
	err := r.db.Where("status = ? AND scheduled_at <= ?", domain.SchedulePending, now).
		Order("scheduled_at").Find(&rows).Error
	return rows, err
}

// Claim atomically flips a row pending→sent. The conditional update is
// the dispatch gate: when two sweeps race, only one claim succeeds, so
// a scheduled message is materialized at most once.
func (r *scheduledMessageRepository) Claim(id uint64, at time.Time) (bool, error) {
	result := r.db.Model(&domain.ScheduledMessage{}).
		Where("id = ? AND status = ?", id, domain.SchedulePending).
		Updates(map[string]interface{}{
			"status":  domain.ScheduleSent,
			"sent_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkFailed moves a claimed row sent→failed after its message insert
// failed. Conditional on sent so a row another sweep never claimed, or
// one already marked, is left alone.
func (r *scheduledMessageRepository) MarkFailed(id uint64) error {
	return r.db.Model(&domain.ScheduledMessage{}).
		Where("id = ? AND status = ?", id, domain.ScheduleSent).
		Updates(map[string]interface{}{
			"status":  domain.ScheduleFailed,
			"sent_at": nil,
		}).Error
}
