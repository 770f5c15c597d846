package db

import (
	"errors"

	"github.com/terraincognita07/miffy/internal/models"
	"gorm.io/gorm"
)

type CoupleRepository struct {
	database *gorm.DB
}

func NewCoupleRepository(database *gorm.DB) *CoupleRepository {
	return &CoupleRepository{database: database}
}

// CreateWithOwner inserts the couple and its creator's owner membership together.
func (repo *CoupleRepository) CreateWithOwner(couple *models.Couple) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(couple).Error; err != nil {
			return err
		}
		return tx.Create(&models.CoupleMember{
			CoupleID: couple.ID,
			UserID:   couple.CreatedBy,
			Role:     models.CoupleRoleOwner,
		}).Error
	})
}

func (repo *CoupleRepository) FindByID(coupleID string) (models.Couple, bool, error) {
	var couple models.Couple
	err := repo.database.Where("id = ?", coupleID).First(&couple).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Couple{}, false, nil
	}
	if err != nil {
		return models.Couple{}, false, err
	}
	return couple, true, nil
}

func (repo *CoupleRepository) AddMember(member *models.CoupleMember) error {
	return repo.database.Create(member).Error
}

func (repo *CoupleRepository) FindMember(coupleID string, userID uint) (models.CoupleMember, bool, error) {
	member := models.CoupleMember{}
	result := repo.database.
		Where("couple_id = ? AND user_id = ?", coupleID, userID).
		Limit(1).
		Find(&member)
	if result.Error != nil {
		return models.CoupleMember{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.CoupleMember{}, false, nil
	}
	return member, true, nil
}

func (repo *CoupleRepository) ListMembers(coupleID string) ([]models.CoupleMember, error) {
	members := make([]models.CoupleMember, 0)
	if err := repo.database.Where("couple_id = ?", coupleID).Order("id ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (repo *CoupleRepository) ListMembershipsByUser(userID uint) ([]models.CoupleMember, error) {
	members := make([]models.CoupleMember, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("id ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
