package domain

import (
	"fmt"
	"time"
)

// ChannelMembership links a channel to exactly one of student or staff
// (channel_memberships table). MemberKey carries the same identity in a
// single non-null column so the unique index works across both kinds.
type ChannelMembership struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ChannelID uint64    `gorm:"column:channel_id;uniqueIndex:idx_channel_member" json:"channel_id"`
	MemberKey string    `gorm:"column:member_key;size:32;uniqueIndex:idx_channel_member" json:"-"`
	StudentID *uint64   `gorm:"column:student_id;index" json:"student_id,omitempty"`
	StaffID   *uint64   `gorm:"column:staff_id;index" json:"staff_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM
func (ChannelMembership) TableName() string {
	return "channel_memberships"
}

// StudentMembership builds a membership row for a student
func StudentMembership(channelID, studentID uint64) *ChannelMembership {
	return &ChannelMembership{
		ChannelID: channelID,
		MemberKey: fmt.Sprintf("student:%d", studentID),
		StudentID: &studentID,
	}
}

// StaffMembership builds a membership row for a staff member
func StaffMembership(channelID, staffID uint64) *ChannelMembership {
	return &ChannelMembership{
		ChannelID: channelID,
		MemberKey: fmt.Sprintf("staff:%d", staffID),
		StaffID:   &staffID,
	}
}
