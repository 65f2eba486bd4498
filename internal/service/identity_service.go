package service

import (
	"errors"

	"github.com/campuslink/campuslink-backend/internal/common"
	"github.com/campuslink/campuslink-backend/internal/domain"
	"github.com/campuslink/campuslink-backend/internal/repository"
	"github.com/campuslink/campuslink-backend/pkg/jwt"
	"gorm.io/gorm"
)

// IdentityService maps an authenticated caller to exactly one of
// student or staff identity. Every operation that attributes or
// compares identity goes through Resolve.
type IdentityService interface {
	Resolve(claims *jwt.Claims) (domain.Actor, error)
}

type identityService struct {
	roster repository.RosterRepository
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(roster repository.RosterRepository) IdentityService {
	return &identityService{roster: roster}
}

// Resolve looks the token subject up in the roster. A caller without a
// matching roster record gets ErrForbidden, never a crash: the token
// may be valid while the enrollment record is gone.
func (s *identityService) Resolve(claims *jwt.Claims) (domain.Actor, error) {
	if claims == nil || claims.UserID == "" {
		return domain.Actor{}, common.ErrUnauthorized
	}

	if claims.Kind != string(domain.ActorStaff) {
		student, err := s.roster.FindStudentByUserID(claims.UserID)
		if err == nil {
			return domain.Actor{
				Kind:      domain.ActorStudent,
				StudentID: student.ID,
				Name:      student.Name,
			}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Actor{}, err
		}
		if claims.Kind == string(domain.ActorStudent) {
			// Student-shaped caller without a student record
			return domain.Actor{}, common.ErrForbidden
		}
	}

	staff, err := s.roster.FindStaffByUserID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Actor{}, common.ErrForbidden
		}
		return domain.Actor{}, err
	}
	return domain.Actor{
		Kind:    domain.ActorStaff,
		StaffID: staff.ID,
		Role:    staff.Role,
		Name:    staff.Name,
	}, nil
}
