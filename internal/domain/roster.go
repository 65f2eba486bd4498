package domain

import "time"

// The roster tables below belong to the wider school administration
// system (enrollment, HR, clubs). The messaging core reads them for
// identity resolution and channel visibility and never writes them.

// Student represents a student record (students table)
type Student struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;size:50;uniqueIndex" json:"user_id"`
	Name      string    `gorm:"column:name;size:100" json:"name"`
	CollegeID *uint64   `gorm:"column:college_id;index" json:"college_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM
func (Student) TableName() string {
	return "students"
}

// Staff represents a faculty or admin record (staff table)
type Staff struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;size:50;uniqueIndex" json:"user_id"`
	Name      string    `gorm:"column:name;size:100" json:"name"`
	Role      StaffRole `gorm:"column:role;size:10;default:faculty" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM
func (Staff) TableName() string {
	return "staff"
}

// StaffCollege assigns a staff member to a college (staff_colleges table)
type StaffCollege struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StaffID   uint64 `gorm:"column:staff_id;index" json:"staff_id"`
	CollegeID uint64 `gorm:"column:college_id;index" json:"college_id"`
}

// TableName returns the table name for GORM
func (StaffCollege) TableName() string {
	return "staff_colleges"
}

// Club member approval statuses
const (
	ClubApproved = "approved"
	ClubPending  = "pending"
	ClubRejected = "rejected"
)

// ClubMember is a club roster entry (club_members table). Approved
// members see the club's channel without an explicit channel membership.
type ClubMember struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ClubID    uint64    `gorm:"column:club_id;index" json:"club_id"`
	StudentID uint64    `gorm:"column:student_id;index" json:"student_id"`
	Status    string    `gorm:"column:status;size:10;default:pending" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM
func (ClubMember) TableName() string {
	return "club_members"
}
