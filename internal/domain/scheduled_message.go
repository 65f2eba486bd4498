package domain

import "time"

// ScheduledMessage status values
const (
	SchedulePending = "pending"
	ScheduleSent    = "sent"
	ScheduleFailed  = "failed"
)

// ScheduledMessage is a message queued for future dispatch
// (scheduled_messages table). The pending→sent transition happens
// exactly once, via a conditional claim in the dispatch sweep. A
// claimed row whose message insert fails is moved to failed so the
// lost send stays visible instead of looking delivered.
type ScheduledMessage struct {
	ID              uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ChannelID       uint64     `gorm:"column:channel_id;index" json:"channel_id"`
	SenderKind      SenderKind `gorm:"column:sender_kind;size:10" json:"sender_kind"`
	SenderStudentID *uint64    `gorm:"column:sender_student_id" json:"sender_student_id,omitempty"`
	SenderStaffID   *uint64    `gorm:"column:sender_staff_id" json:"sender_staff_id,omitempty"`
	Body            string     `gorm:"column:body;size:4000" json:"body"`
	ScheduledAt     time.Time  `gorm:"column:scheduled_at;index:idx_scheduled_due" json:"scheduled_at"`
	Status          string     `gorm:"column:status;size:10;default:pending;index:idx_scheduled_due" json:"status"`
	SentAt          *time.Time `gorm:"column:sent_at" json:"sent_at,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM
func (ScheduledMessage) TableName() string {
	return "scheduled_messages"
}

// CreateScheduledRequest represents a schedule message request
type CreateScheduledRequest struct {
	Body        string    `json:"body" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}
