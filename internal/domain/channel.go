package domain

import "time"

// ChannelType scopes a channel to an academic subject, a club or an event
type ChannelType string

const (
	ChannelSubject ChannelType = "subject"
	ChannelClub    ChannelType = "club"
	ChannelEvent   ChannelType = "event"
)

// ValidChannelType reports whether t is a known channel type
func ValidChannelType(t ChannelType) bool {
	switch t {
	case ChannelSubject, ChannelClub, ChannelEvent:
		return true
	}
	return false
}

// Channel represents a conversation stream (channels table).
// The type determines which reference column is authoritative.
// Deactivated channels are invisible to every caller-facing operation.
type Channel struct {
	ID               uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Type             ChannelType `gorm:"column:channel_type;size:20;index" json:"type"`
	Name             string      `gorm:"column:name;size:100" json:"name"`
	SubjectID        *uint64     `gorm:"column:subject_id" json:"subject_id,omitempty"`
	ClubID           *uint64     `gorm:"column:club_id;index" json:"club_id,omitempty"`
	EventID          *uint64     `gorm:"column:event_id" json:"event_id,omitempty"`
	CollegeID        *uint64     `gorm:"column:college_id;index" json:"college_id,omitempty"`
	IsActive         bool        `gorm:"column:is_active;default:true;index" json:"is_active"`
	CreatedByStaffID uint64      `gorm:"column:created_by_staff_id" json:"created_by"`
	CreatedAt        time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

// TableName returns the table name for GORM
func (Channel) TableName() string {
	return "channels"
}

// RefID returns the reference matching the channel type
func (c *Channel) RefID() *uint64 {
	switch c.Type {
	case ChannelSubject:
		return c.SubjectID
	case ChannelClub:
		return c.ClubID
	case ChannelEvent:
		return c.EventID
	}
	return nil
}

// CreateChannelRequest represents a create channel request
type CreateChannelRequest struct {
	Type      ChannelType `json:"type" binding:"required"`
	Name      string      `json:"name" binding:"required"`
	SubjectID *uint64     `json:"subject_id"`
	ClubID    *uint64     `json:"club_id"`
	EventID   *uint64     `json:"event_id"`
	CollegeID *uint64     `json:"college_id"`
}
