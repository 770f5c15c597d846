package db

import (
	"time"

	"github.com/terraincognita07/miffy/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByNormalizedEmail(email string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("lower(trim(email)) = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	return repo.database.Create(user).Error
}

func (repo *UserRepository) UpdateLoginNonceHash(userID uint, nonceHash string) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Update("login_nonce_hash", nonceHash).Error
}

// ConsumeLoginNonce clears the stored nonce hash only if it still equals
// nonceHash, so a sign-in link can be redeemed once.
func (repo *UserRepository) ConsumeLoginNonce(userID uint, nonceHash string, signedInAt time.Time) (bool, error) {
	result := repo.database.Model(&models.User{}).
		Where("id = ? AND login_nonce_hash = ? AND login_nonce_hash <> ''", userID, nonceHash).
		Updates(map[string]any{
			"login_nonce_hash": "",
			"last_sign_in_at":  signedInAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
