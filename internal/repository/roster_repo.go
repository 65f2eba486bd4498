package repository

import (
	"github.com/campuslink/campuslink-backend/internal/domain"
	"gorm.io/gorm"
)

// RosterRepository read-only access to the school roster tables
// (students, staff, college assignments, club membership). The
// messaging core never writes these.
type RosterRepository interface {
	FindStudentByUserID(userID string) (*domain.Student, error)
	FindStaffByUserID(userID string) (*domain.Staff, error)
	StudentNames(ids []uint64) (map[uint64]string, error)
	StaffNames(ids []uint64) (map[uint64]string, error)
	StaffCollegeIDs(staffID uint64) ([]uint64, error)
	ApprovedClubIDs(studentID uint64) ([]uint64, error)
	ApprovedMemberIDs(clubID uint64) ([]uint64, error)
}

type rosterRepository struct {
	db *gorm.DB
}

// NewRosterRepository creates a new RosterRepository
func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

// FindStudentByUserID finds a student by auth subject
func (r *rosterRepository) FindStudentByUserID(userID string) (*domain.Student, error) {
	var s domain.Student
	err := r.db.Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindStaffByUserID finds a staff member by auth subject
func (r *rosterRepository) FindStaffByUserID(userID string) (*domain.Staff, error) {
	var s domain.Staff
	err := r.db.Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// StudentNames resolves display names for a set of student ids
func (r *rosterRepository) StudentNames(ids []uint64) (map[uint64]string, error) {
	names := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []domain.Student
	if err := r.db.Select("id, name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, s := range rows {
		names[s.ID] = s.Name
	}
	return names, nil
}

// StaffNames resolves display names for a set of staff ids
func (r *rosterRepository) StaffNames(ids []uint64) (map[uint64]string, error) {
	names := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []domain.Staff
	if err := r.db.Select("id, name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, s := range rows {
		names[s.ID] = s.Name
	}
	return names, nil
}

// StaffCollegeIDs returns the colleges assigned to a staff member
func (r *rosterRepository) StaffCollegeIDs(staffID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&domain.StaffCollege{}).
		Where("staff_id = ?", staffID).
		Pluck("college_id", &ids).Error
	return ids, err
}

// ApprovedClubIDs returns the clubs where a student is approved
func (r *rosterRepository) ApprovedClubIDs(studentID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&domain.ClubMember{}).
		Where("student_id = ? AND status = ?", studentID, domain.ClubApproved).
		Pluck("club_id", &ids).Error
	return ids, err
}

// ApprovedMemberIDs returns the approved students of a club
func (r *rosterRepository) ApprovedMemberIDs(clubID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&domain.ClubMember{}).
		Where("club_id = ? AND status = ?", clubID, domain.ClubApproved).
		Pluck("student_id", &ids).Error
	return ids, err
}
