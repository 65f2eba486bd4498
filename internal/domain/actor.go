package domain

import "fmt"

// ActorKind discriminates student and staff callers
type ActorKind string

const (
	ActorStudent ActorKind = "student"
	ActorStaff   ActorKind = "staff"
)

// StaffRole distinguishes faculty from administrators
type StaffRole string

const (
	RoleFaculty StaffRole = "faculty"
	RoleAdmin   StaffRole = "admin"
)

// Actor is the resolved caller identity. Exactly one of StudentID/StaffID
// is set, matching Kind. Role and Name are populated by the identity
// resolver, not by the token.
type Actor struct {
	Kind      ActorKind `json:"kind"`
	StudentID uint64    `json:"student_id,omitempty"`
	StaffID   uint64    `json:"staff_id,omitempty"`
	Role      StaffRole `json:"role,omitempty"`
	Name      string    `json:"name"`
}

// IsStudent reports whether the actor is a student
func (a Actor) IsStudent() bool {
	return a.Kind == ActorStudent
}

// IsAdmin reports whether the actor holds the unrestricted admin capability
func (a Actor) IsAdmin() bool {
	return a.Kind == ActorStaff && a.Role == RoleAdmin
}

// CanModerate reports whether the actor may create channels and moderate messages
func (a Actor) CanModerate() bool {
	return a.Kind == ActorStaff
}

// SenderKind maps the actor to the message sender classification
func (a Actor) SenderKind() SenderKind {
	if a.IsStudent() {
		return SenderStudent
	}
	if a.Role == RoleAdmin {
		return SenderAdmin
	}
	return SenderFaculty
}

// Key returns a stable identity key used for vote and membership
// deduplication ("student:<id>" or "staff:<id>").
func (a Actor) Key() string {
	if a.IsStudent() {
		return fmt.Sprintf("student:%d", a.StudentID)
	}
	return fmt.Sprintf("staff:%d", a.StaffID)
}

// Matches reports whether the actor is the given sender pair
func (a Actor) Matches(studentID, staffID *uint64) bool {
	if a.IsStudent() {
		return studentID != nil && *studentID == a.StudentID
	}
	return staffID != nil && *staffID == a.StaffID
}
