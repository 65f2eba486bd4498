package repository

import (
	"time"

	"github.com/campuslink/campuslink-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository message data access interface
type MessageRepository interface {
	Create(msg *domain.Message) error
	FindByID(id uint64) (*domain.Message, error)
	FindPage(channelID uint64, beforeID uint64, limit int) ([]*domain.Message, error)
	UpdateBody(id uint64, body string, editedAt time.Time) error
	ReplacePoll(id uint64, question *string, optionsJSON, countsJSON *string) error
	SetHidden(id uint64, hidden bool, staffID uint64, at time.Time) error
	SoftDelete(id uint64, deleterKey string, at time.Time) error
	DeleteBefore(channelID uint64, cutoff time.Time) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create appends a new message
func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Create(msg).Error
}

// FindByID finds a message by ID
func (r *messageRepository) FindByID(id uint64) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindPage returns up to limit messages with id < beforeID (when given),
// newest first. Callers reverse the slice for chronological display.
func (r *messageRepository) FindPage(channelID uint64, beforeID uint64, limit int) ([]*domain.Message, error) {
	var messages []*domain.Message
	q := r.db.Where("channel_id = ?", channelID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	err := q.Order("id DESC").Limit(limit).Find(&messages).Error
	return messages, err
}

// UpdateBody updates a text message body and stamps the edit time.
// Deleted messages are terminal and never match.
func (r *messageRepository) UpdateBody(id uint64, body string, editedAt time.Time) error {
	result := r.db.Model(&domain.Message{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"body":      body,
			"edited_at": editedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplacePoll updates a poll's question and/or replaces its option list.
// Replacing options rewrites the tallies and removes every vote for the
// message in the same transaction: either all of it applies or none.
func (r *messageRepository) ReplacePoll(id uint64, question *string, optionsJSON, countsJSON *string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"edited_at": time.Now(),
		}
		if question != nil {
			updates["body"] = *question
		}
		if optionsJSON != nil {
			updates["poll_options"] = *optionsJSON
			updates["poll_counts"] = *countsJSON
		}

		result := tx.Model(&domain.Message{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if optionsJSON != nil {
			// Vote reset: old votes are meaningless against the new list
			if err := tx.Where("message_id = ?", id).
				Delete(&domain.PollVote{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SetHidden flips the moderation flag and stamps the moderator
func (r *messageRepository) SetHidden(id uint64, hidden bool, staffID uint64, at time.Time) error {
	result := r.db.Model(&domain.Message{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_hidden":          hidden,
			"hidden_by_staff_id": staffID,
			"hidden_at":          at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete marks a message deleted with attribution. The row is kept;
// only the retention sweep removes it for good.
func (r *messageRepository) SoftDelete(id uint64, deleterKey string, at time.Time) error {
	result := r.db.Model(&domain.Message{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted":     true,
			"deleted_at":     at,
			"deleted_by_key": deleterKey,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteBefore hard-deletes a channel's messages older than the cutoff,
// along with their poll votes, and returns the number of messages removed
func (r *messageRepository) DeleteBefore(channelID uint64, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		expired := tx.Model(&domain.Message{}).
			Select("id").
			Where("channel_id = ? AND created_at < ?", channelID, cutoff)

		if err := tx.Where("message_id IN (?)", expired).
			Delete(&domain.PollVote{}).Error; err != nil {
			return err
		}

		result := tx.Where("channel_id = ? AND created_at < ?", channelID, cutoff).
			Delete(&domain.Message{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}
