package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// SenderKind classifies who posted a message
type SenderKind string

const (
	SenderStudent SenderKind = "student"
	SenderFaculty SenderKind = "faculty"
	SenderAdmin   SenderKind = "admin"
)

// MessageKind discriminates plain text messages from polls
type MessageKind string

const (
	KindText MessageKind = "text"
	KindPoll MessageKind = "poll"
)

// AttachmentKind is the coarse media classification of an attachment
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentFile  AttachmentKind = "file"
)

// Message body and option limits
const (
	MaxBodyLen        = 4000
	MaxAttachmentURL  = 500
	MaxPollOptions    = 20
	MinPollOptions    = 2
	EditWindow        = 5 * time.Minute
	MaxVotersPerValue = 20
)

// Message represents a channel message (messages table). The id is
// monotonically increasing and doubles as the pagination cursor.
// Poll options and tallies are stored as JSON arrays of equal length.
// Once IsDeleted is set the row is terminal: no edit, vote or
// moderation may touch it again.
type Message struct {
	ID              uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ChannelID       uint64      `gorm:"column:channel_id;index:idx_messages_channel_created" json:"channel_id"`
	SenderKind      SenderKind  `gorm:"column:sender_kind;size:10" json:"sender_kind"`
	SenderStudentID *uint64     `gorm:"column:sender_student_id;index" json:"sender_student_id,omitempty"`
	SenderStaffID   *uint64     `gorm:"column:sender_staff_id;index" json:"sender_staff_id,omitempty"`
	Body            string      `gorm:"column:body;size:4000" json:"body"`
	AttachmentURL   string      `gorm:"column:attachment_url;size:500" json:"attachment_url,omitempty"`
	AttachmentKind  string      `gorm:"column:attachment_kind;size:10" json:"attachment_kind,omitempty"`
	Kind            MessageKind `gorm:"column:kind;size:10" json:"kind"`
	PollOptions     string      `gorm:"column:poll_options;type:text" json:"-"`
	PollCounts      string      `gorm:"column:poll_counts;type:text" json:"-"`
	IsHidden        bool        `gorm:"column:is_hidden;default:false" json:"is_hidden"`
	HiddenByStaffID *uint64     `gorm:"column:hidden_by_staff_id" json:"-"`
	HiddenAt        *time.Time  `gorm:"column:hidden_at" json:"-"`
	IsDeleted       bool        `gorm:"column:is_deleted;default:false;index" json:"is_deleted"`
	DeletedAt       *time.Time  `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
	DeletedByKey    string      `gorm:"column:deleted_by_key;size:32" json:"-"`
	CreatedAt       time.Time   `gorm:"column:created_at;autoCreateTime;index:idx_messages_channel_created" json:"created_at"`
	EditedAt        *time.Time  `gorm:"column:edited_at" json:"edited_at,omitempty"`
}

// TableName returns the table name for GORM
func (Message) TableName() string {
	return "messages"
}

// Options decodes the stored poll option list
func (m *Message) Options() ([]string, error) {
	if m.PollOptions == "" {
		return nil, nil
	}
	var opts []string
	if err := json.Unmarshal([]byte(m.PollOptions), &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// Counts decodes the stored per-option tallies
func (m *Message) Counts() ([]int, error) {
	if m.PollCounts == "" {
		return nil, nil
	}
	var counts []int
	if err := json.Unmarshal([]byte(m.PollCounts), &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// SetPoll stores the option list with zeroed tallies
func (m *Message) SetPoll(options []string) error {
	opts, err := json.Marshal(options)
	if err != nil {
		return err
	}
	counts, err := json.Marshal(make([]int, len(options)))
	if err != nil {
		return err
	}
	m.Kind = KindPoll
	m.PollOptions = string(opts)
	m.PollCounts = string(counts)
	return nil
}

// EditableBy reports whether the caller may edit the message body.
// Admins may edit any live text message; owners get a five-minute window.
func (m *Message) EditableBy(actor Actor, now time.Time) bool {
	if m.IsDeleted || m.Kind != KindText {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if !actor.Matches(m.SenderStudentID, m.SenderStaffID) {
		return false
	}
	return now.Sub(m.CreatedAt) <= EditWindow
}

// NormalizeOptions trims entries, drops empties and caps the list at the
// option limit. Returns nil when nothing survives.
func NormalizeOptions(raw []string) []string {
	var out []string
	for _, o := range raw {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		out = append(out, o)
		if len(out) == MaxPollOptions {
			break
		}
	}
	return out
}

// TruncateBody trims and caps a message body at the character limit.
// The cap counts runes, not bytes, so multibyte bodies keep their full
// allowance and never get cut mid-rune.
func TruncateBody(body string) string {
	body = strings.TrimSpace(body)
	if r := []rune(body); len(r) > MaxBodyLen {
		body = string(r[:MaxBodyLen])
	}
	return body
}

// PostMessageRequest represents a post message request
type PostMessageRequest struct {
	Body           string   `json:"body"`
	AttachmentURL  string   `json:"attachment_url"`
	AttachmentKind string   `json:"attachment_kind"`
	IsPoll         bool     `json:"is_poll"`
	PollOptions    []string `json:"poll_options"`
}

// EditMessageRequest represents an edit request for a text message
type EditMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// EditPollRequest represents a poll question/options update.
// Supplying options replaces the list and resets every vote.
type EditPollRequest struct {
	Question *string  `json:"question"`
	Options  []string `json:"options"`
}

// ModerateRequest represents a hide/unhide request
type ModerateRequest struct {
	Hidden bool `json:"hidden"`
}

// PollOptionView is one poll option with its tally in API responses
type PollOptionView struct {
	Index  int      `json:"index"`
	Text   string   `json:"text"`
	Count  int      `json:"count"`
	Voters []string `json:"voters,omitempty"`
}

// PollView is the poll block of an enriched message
type PollView struct {
	Options []PollOptionView `json:"options"`
	MyVote  *int             `json:"my_vote"`
	// Legacy yes/no label of the caller's vote, set for 2-option polls only
	MyLegacyVote string `json:"my_legacy_vote,omitempty"`
}

// MessageResponse is an enriched message in API responses
type MessageResponse struct {
	ID             uint64     `json:"id"`
	ChannelID      uint64     `json:"channel_id"`
	SenderKind     SenderKind `json:"sender_kind"`
	SenderName     string     `json:"sender_name"`
	Body           string     `json:"body"`
	AttachmentURL  string     `json:"attachment_url,omitempty"`
	AttachmentKind string     `json:"attachment_kind,omitempty"`
	Kind           MessageKind `json:"kind"`
	Poll           *PollView  `json:"poll,omitempty"`
	IsOwn          bool       `json:"is_own"`
	CanEdit        bool       `json:"can_edit"`
	CanEditAny     bool       `json:"can_edit_any"`
	IsHidden       bool       `json:"is_hidden"`
	IsDeleted      bool       `json:"is_deleted"`
	DeletedByName  string     `json:"deleted_by_name,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
}
