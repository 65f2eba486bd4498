package domain

import "time"

// Legacy two-option vote labels
const (
	LegacyYes = "yes"
	LegacyNo  = "no"
)

// PollVote records a single voter's choice on a poll message
// (poll_votes table). The unique index on (message_id, voter_key) is the
// at-most-one-vote guarantee; the nullable id pair carries attribution.
// LegacyChoice is populated only for 2-option polls.
type PollVote struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MessageID      uint64    `gorm:"column:message_id;uniqueIndex:idx_poll_votes_message_voter" json:"message_id"`
	VoterKey       string    `gorm:"column:voter_key;size:32;uniqueIndex:idx_poll_votes_message_voter" json:"-"`
	VoterStudentID *uint64   `gorm:"column:voter_student_id;index" json:"voter_student_id,omitempty"`
	VoterStaffID   *uint64   `gorm:"column:voter_staff_id;index" json:"voter_staff_id,omitempty"`
	OptionIndex    int       `gorm:"column:option_index" json:"option_index"`
	LegacyChoice   string    `gorm:"column:legacy_choice;size:3" json:"legacy_choice,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM
func (PollVote) TableName() string {
	return "poll_votes"
}

// LegacyChoiceFor returns the yes/no label for an option index,
// or "" when the poll is not a 2-option poll.
func LegacyChoiceFor(optionCount, optionIndex int) string {
	if optionCount != 2 {
		return ""
	}
	switch optionIndex {
	case 0:
		return LegacyYes
	case 1:
		return LegacyNo
	}
	return ""
}

// VoteRequest represents a vote. Either OptionIndex or the legacy
// yes/no label is supplied; the label is only valid on 2-option polls.
type VoteRequest struct {
	OptionIndex *int   `json:"option_index"`
	LegacyVote  string `json:"vote"`
}
