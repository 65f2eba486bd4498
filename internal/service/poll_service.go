package service

import (
	"errors"

	"github.com/campuslink/campuslink-backend/internal/common"
	"github.com/campuslink/campuslink-backend/internal/domain"
	"github.com/campuslink/campuslink-backend/internal/repository"
	"gorm.io/gorm"
)

// PollService business logic for poll voting
type PollService interface {
	Vote(messageID uint64, actor domain.Actor, req *domain.VoteRequest) (*domain.PollVote, error)
}

type pollService struct {
	repo        repository.PollVoteRepository
	messageRepo repository.MessageRepository
}

// NewPollService creates a new PollService
func NewPollService(repo repository.PollVoteRepository, messageRepo repository.MessageRepository) PollService {
	return &pollService{repo: repo, messageRepo: messageRepo}
}

// Vote records the caller's choice on a poll. Each voter gets exactly
// one vote per poll; a second attempt is a conflict. Legacy yes/no
// labels are accepted on 2-option polls only.
func (s *pollService) Vote(messageID uint64, actor domain.Actor, req *domain.VoteRequest) (*domain.PollVote, error) {
	msg, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMessageNotFound
		}
		return nil, err
	}
	if msg.IsDeleted {
		return nil, common.ErrMessageNotFound
	}
	if msg.Kind != domain.KindPoll {
		return nil, common.ErrNotAPoll
	}

	options, err := msg.Options()
	if err != nil {
		return nil, err
	}

	optionIndex, err := resolveOptionIndex(req, len(options))
	if err != nil {
		return nil, err
	}

	vote := &domain.PollVote{
		MessageID:   messageID,
		VoterKey:    actor.Key(),
		OptionIndex: optionIndex,
	}
	if actor.IsStudent() {
		vote.VoterStudentID = &actor.StudentID
	} else {
		vote.VoterStaffID = &actor.StaffID
	}

	if err := s.repo.Cast(vote); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMessageNotFound
		}
		return nil, err
	}
	return vote, nil
}

// resolveOptionIndex picks the final 0-based index from either form of
// the request. The legacy form maps yes→0, no→1.
func resolveOptionIndex(req *domain.VoteRequest, optionCount int) (int, error) {
	if req.OptionIndex != nil {
		if *req.OptionIndex < 0 || *req.OptionIndex >= optionCount {
			return 0, common.ErrInvalidOption
		}
		return *req.OptionIndex, nil
	}

	if optionCount != 2 {
		return 0, common.ErrInvalidInput
	}
	switch req.LegacyVote {
	case domain.LegacyYes:
		return 0, nil
	case domain.LegacyNo:
		return 1, nil
	}
	return 0, common.ErrInvalidInput
}
