package migration

import (
	"github.com/campuslink/campuslink-backend/internal/domain"
	"gorm.io/gorm"
)

// Run executes AutoMigrate for all tables and seeds demo data if the roster is empty.
func Run(db *gorm.DB, seed bool) error {
	if err := db.AutoMigrate(
		&domain.Student{},
		&domain.Staff{},
		&domain.StaffCollege{},
		&domain.ClubMember{},
		&domain.Channel{},
		&domain.ChannelMembership{},
		&domain.ChannelSettings{},
		&domain.Message{},
		&domain.PollVote{},
		&domain.ScheduledMessage{},
	); err != nil {
		return err
	}

	if !seed {
		return nil
	}

	var count int64
	db.Model(&domain.Student{}).Count(&count)
	if count == 0 {
		return seedRoster(db)
	}

	return nil
}

// seedRoster inserts a small demo roster for local development.
func seedRoster(db *gorm.DB) error {
	collegeID := func(v uint64) *uint64 { return &v }

	students := []domain.Student{
		{ID: 1, UserID: "alice", Name: "Alice Kim", CollegeID: collegeID(1)},
		{ID: 2, UserID: "bob", Name: "Bob Lee", CollegeID: collegeID(1)},
		{ID: 3, UserID: "carol", Name: "Carol Park", CollegeID: collegeID(2)},
	}
	if err := db.Create(&students).Error; err != nil {
		return err
	}

	staff := []domain.Staff{
		{ID: 1, UserID: "prof.han", Name: "Prof. Han", Role: domain.RoleFaculty},
		{ID: 2, UserID: "registrar", Name: "Registrar", Role: domain.RoleAdmin},
	}
	if err := db.Create(&staff).Error; err != nil {
		return err
	}

	colleges := []domain.StaffCollege{
		{StaffID: 1, CollegeID: 1},
	}
	if err := db.Create(&colleges).Error; err != nil {
		return err
	}

	clubs := []domain.ClubMember{
		{ClubID: 10, StudentID: 1, Status: domain.ClubApproved},
		{ClubID: 10, StudentID: 2, Status: domain.ClubApproved},
		{ClubID: 10, StudentID: 3, Status: domain.ClubPending},
	}
	return db.Create(&clubs).Error
}
