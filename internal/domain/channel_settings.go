package domain

import "time"

// Retention window bounds (days)
const (
	MinRetentionDays     = 1
	MaxRetentionDays     = 30
	DefaultRetentionDays = 30
)

// ClampRetentionDays forces a retention window into [1,30],
// falling back to the default for out-of-range values.
func ClampRetentionDays(days int) int {
	if days < MinRetentionDays || days > MaxRetentionDays {
		return DefaultRetentionDays
	}
	return days
}

// ChannelSettings is the per-channel policy row (channel_settings table),
// created lazily on first write. Reads fall back to the defaults
// (students can send, 30 day retention) when no row exists.
type ChannelSettings struct {
	ChannelID           uint64    `gorm:"column:channel_id;primaryKey" json:"channel_id"`
	StudentsCanSend     bool      `gorm:"column:students_can_send;default:true" json:"students_can_send"`
	AutoDeleteAfterDays int       `gorm:"column:auto_delete_after_days;default:30" json:"auto_delete_after_days"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM
func (ChannelSettings) TableName() string {
	return "channel_settings"
}

// DefaultChannelSettings returns the policy applied when no row exists
func DefaultChannelSettings(channelID uint64) *ChannelSettings {
	return &ChannelSettings{
		ChannelID:           channelID,
		StudentsCanSend:     true,
		AutoDeleteAfterDays: DefaultRetentionDays,
	}
}

// UpdateSettingsRequest represents a settings update request
type UpdateSettingsRequest struct {
	StudentsCanSend     *bool `json:"students_can_send"`
	AutoDeleteAfterDays *int  `json:"auto_delete_after_days"`
}
