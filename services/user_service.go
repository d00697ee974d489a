// services/user_service.go
package services

import (
	"errors"
	"log"

	"snaptrack/models"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ResetUser wipes everything the user owns: messages, meals, logs,
// every image those rows referenced, then the user itself. One
// transaction; a failure partway rolls the whole reset back. Resetting
// an unknown identifier is a successful no-op.
func (s *UserService) ResetUser(identifier string) error {
	log.Printf("[reset] user=%s", identifier)

	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("identifier = ?", identifier).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		imageIDs := map[string]bool{}

		var msgs []models.Message
		if err := tx.Where("user_id = ?", user.ID).Find(&msgs).Error; err != nil {
			return err
		}
		for _, m := range msgs {
			if m.ImageID != nil {
				imageIDs[*m.ImageID] = true
			}
		}

		var meals []models.Meal
		if err := tx.Where("user_id = ?", user.ID).Find(&meals).Error; err != nil {
			return err
		}
		for _, m := range meals {
			if m.ImageID != nil {
				imageIDs[*m.ImageID] = true
			}
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		for _, meal := range meals {
			if err := tx.Where("meal_id = ?", meal.ID).Delete(&models.NutritionLog{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Meal{}).Error; err != nil {
			return err
		}

		if len(imageIDs) > 0 {
			ids := make([]string, 0, len(imageIDs))
			for id := range imageIDs {
				ids = append(ids, id)
			}
			if err := tx.Where("id IN ?", ids).Delete(&models.ImageStore{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&user).Error
	})
}
