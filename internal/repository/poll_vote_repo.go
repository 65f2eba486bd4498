package repository

import (
	"encoding/json"
	"errors"

	"github.com/campuslink/campuslink-backend/internal/common"
	"github.com/campuslink/campuslink-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PollVoteRepository poll vote data access interface
type PollVoteRepository interface {
	Cast(vote *domain.PollVote) error
	FindByMessageAndVoter(messageID uint64, voterKey string) (*domain.PollVote, error)
	FindByMessages(messageIDs []uint64) ([]*domain.PollVote, error)
	VotesByVoter(messageIDs []uint64, voterKey string) (map[uint64]*domain.PollVote, error)
}

type pollVoteRepository struct {
	db *gorm.DB
}

// NewPollVoteRepository creates a new PollVoteRepository
func NewPollVoteRepository(db *gorm.DB) PollVoteRepository {
	return &pollVoteRepository{db: db}
}

// Cast records a vote and increments the option tally in one transaction.
// The message row is locked for the duration so concurrent casts cannot
// lose tally updates, and the unique index on (message_id, voter_key)
// rejects a double vote that slips past the pre-check.
func (r *pollVoteRepository) Cast(vote *domain.PollVote) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		q := tx
		// SQLite serializes write transactions on the whole database,
		// so the row lock is only needed (and only valid) on MySQL.
		if tx.Dialector.Name() == "mysql" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var msg domain.Message
		if err := q.Where("id = ?", vote.MessageID).First(&msg).Error; err != nil {
			return err
		}
		if msg.IsDeleted {
			return common.ErrMessageDeleted
		}
		if msg.Kind != domain.KindPoll {
			return common.ErrNotAPoll
		}

		counts, err := msg.Counts()
		if err != nil {
			return err
		}
		if vote.OptionIndex < 0 || vote.OptionIndex >= len(counts) {
			return common.ErrInvalidOption
		}

		var existing int64
		if err := tx.Model(&domain.PollVote{}).
			Where("message_id = ? AND voter_key = ?", vote.MessageID, vote.VoterKey).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return common.ErrAlreadyVoted
		}

		vote.LegacyChoice = domain.LegacyChoiceFor(len(counts), vote.OptionIndex)
		if err := tx.Create(vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return common.ErrAlreadyVoted
			}
			return err
		}

		counts[vote.OptionIndex]++
		data, err := json.Marshal(counts)
		if err != nil {
			return err
		}
		return tx.Model(&domain.Message{}).
			Where("id = ?", vote.MessageID).
			Update("poll_counts", string(data)).Error
	})
}

// FindByMessageAndVoter returns a voter's vote on a message, if any
func (r *pollVoteRepository) FindByMessageAndVoter(messageID uint64, voterKey string) (*domain.PollVote, error) {
	var vote domain.PollVote
	err := r.db.Where("message_id = ? AND voter_key = ?", messageID, voterKey).
		First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// FindByMessages returns every vote for the given messages, oldest first
func (r *pollVoteRepository) FindByMessages(messageIDs []uint64) ([]*domain.PollVote, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	var votes []*domain.PollVote
	err := r.db.Where("message_id IN ?", messageIDs).
		Order("id").Find(&votes).Error
	return votes, err
}

// VotesByVoter returns the voter's own vote per message
func (r *pollVoteRepository) VotesByVoter(messageIDs []uint64, voterKey string) (map[uint64]*domain.PollVote, error) {
	if len(messageIDs) == 0 {
		return map[uint64]*domain.PollVote{}, nil
	}
	var votes []*domain.PollVote
	err := r.db.Where("message_id IN ? AND voter_key = ?", messageIDs, voterKey).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	result := make(map[uint64]*domain.PollVote, len(votes))
	for _, v := range votes {
		result[v.MessageID] = v
	}
	return result, nil
}
