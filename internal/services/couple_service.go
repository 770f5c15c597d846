package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/miffy/internal/models"
	"gorm.io/gorm"
)

var (
	ErrCoupleNotFound           = errors.New("couple not found")
	ErrCoupleMembershipRequired = errors.New("couple membership required")
	ErrCoupleCreateFailed       = errors.New("create couple failed")
	ErrCoupleJoinFailed         = errors.New("join couple failed")
)

type CoupleRepository interface {
	CreateWithOwner(couple *models.Couple) error
	FindByID(coupleID string) (models.Couple, bool, error)
	AddMember(member *models.CoupleMember) error
	FindMember(coupleID string, userID uint) (models.CoupleMember, bool, error)
	ListMembers(coupleID string) ([]models.CoupleMember, error)
	ListMembershipsByUser(userID uint) ([]models.CoupleMember, error)
}

type CoupleService struct {
	couples CoupleRepository
}

func NewCoupleService(couples CoupleRepository) *CoupleService {
	return &CoupleService{couples: couples}
}

// Create starts a couple group with the user as its owner member.
func (service *CoupleService) Create(userID uint) (models.Couple, error) {
	couple := models.Couple{CreatedBy: userID}
	if err := service.couples.CreateWithOwner(&couple); err != nil {
		return models.Couple{}, fmt.Errorf("%w: %v", ErrCoupleCreateFailed, err)
	}
	return couple, nil
}

// Join adds the user as a guardian. Joining a group twice returns the
// existing membership.
func (service *CoupleService) Join(userID uint, coupleID string) (models.CoupleMember, error) {
	coupleID = strings.TrimSpace(coupleID)
	if coupleID == "" {
		return models.CoupleMember{}, ErrCoupleNotFound
	}
	if _, found, err := service.couples.FindByID(coupleID); err != nil {
		return models.CoupleMember{}, fmt.Errorf("%w: %v", ErrCoupleJoinFailed, err)
	} else if !found {
		return models.CoupleMember{}, ErrCoupleNotFound
	}

	if member, found, err := service.couples.FindMember(coupleID, userID); err != nil {
		return models.CoupleMember{}, fmt.Errorf("%w: %v", ErrCoupleJoinFailed, err)
	} else if found {
		return member, nil
	}

	member := models.CoupleMember{CoupleID: coupleID, UserID: userID, Role: models.CoupleRoleGuardian}
	if err := service.couples.AddMember(&member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, found, findErr := service.couples.FindMember(coupleID, userID); findErr == nil && found {
				return existing, nil
			}
		}
		return models.CoupleMember{}, fmt.Errorf("%w: %v", ErrCoupleJoinFailed, err)
	}
	return member, nil
}

func (service *CoupleService) RequireMember(userID uint, coupleID string) (models.CoupleMember, error) {
	member, found, err := service.couples.FindMember(strings.TrimSpace(coupleID), userID)
	if err != nil {
		return models.CoupleMember{}, err
	}
	if !found {
		return models.CoupleMember{}, ErrCoupleMembershipRequired
	}
	return member, nil
}

// ResolveActive honors the device's remembered couple only while the user is
// still a member of it.
func (service *CoupleService) ResolveActive(userID uint, requested string) (*string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" || userID == 0 {
		return nil, nil
	}
	_, found, err := service.couples.FindMember(requested, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &requested, nil
}

func (service *CoupleService) Members(userID uint, coupleID string) ([]models.CoupleMember, error) {
	if _, err := service.RequireMember(userID, coupleID); err != nil {
		return nil, err
	}
	return service.couples.ListMembers(coupleID)
}

func (service *CoupleService) Memberships(userID uint) ([]models.CoupleMember, error) {
	return service.couples.ListMembershipsByUser(userID)
}
