// services/meal_service.go
package services

import (
	"errors"
	"strings"

	"snaptrack/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidID marks input that is not a UUID at all, as opposed to a
// UUID that simply matches no row.
var ErrInvalidID = errors.New("invalid meal id")

type MealService struct {
	db *gorm.DB
}

func NewMealService(db *gorm.DB) *MealService {
	return &MealService{db: db}
}

// MacroOverrides carries a partial manual edit; nil fields are left
// alone.
type MacroOverrides struct {
	CaloriesKcal *int `json:"calories_kcal"`
	ProteinG     *int `json:"protein_g"`
	CarbsG       *int `json:"carbs_g"`
	FatG         *int `json:"fat_g"`
	FiberG       *int `json:"fiber_g"`
}

type MealDetail struct {
	Meal models.Meal          `json:"meal"`
	Log  *models.NutritionLog `json:"log"`
}

// GetMeal returns a single meal with its authoritative log.
func (s *MealService) GetMeal(mealID string) (*MealDetail, error) {
	id, err := parseMealID(mealID)
	if err != nil {
		return nil, err
	}

	var meal models.Meal
	if err := s.db.First(&meal, "id = ?", id).Error; err != nil {
		return nil, err // could be ErrRecordNotFound
	}

	detail := &MealDetail{Meal: meal}
	var nlog models.NutritionLog
	err = s.db.Where("meal_id = ?", id).
		Order("created_at DESC, id DESC").
		First(&nlog).Error
	if err == nil {
		detail.Log = &nlog
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return detail, nil
}

// DeleteMeal removes the meal, its logs and every message referencing
// it as one atomic unit.
func (s *MealService) DeleteMeal(mealID string) error {
	id, err := parseMealID(mealID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var meal models.Meal
		if err := tx.First(&meal, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("meal_id = ?", id).Delete(&models.NutritionLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("meal_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&meal).Error
	})
}

// EditNutrition applies a partial macro override to the meal's log and
// marks it edited. Name, reasoning, flags and the raw copy stay as the
// model last wrote them.
func (s *MealService) EditNutrition(mealID string, overrides MacroOverrides) (*models.NutritionLog, error) {
	id, err := parseMealID(mealID)
	if err != nil {
		return nil, err
	}

	var nlog models.NutritionLog
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meal_id = ?", id).
			Order("created_at DESC, id DESC").
			First(&nlog).Error; err != nil {
			return err
		}

		if overrides.CaloriesKcal != nil {
			nlog.CaloriesKcal = *overrides.CaloriesKcal
		}
		if overrides.ProteinG != nil {
			nlog.ProteinG = *overrides.ProteinG
		}
		if overrides.CarbsG != nil {
			nlog.CarbsG = *overrides.CarbsG
		}
		if overrides.FatG != nil {
			nlog.FatG = *overrides.FatG
		}
		if overrides.FiberG != nil {
			nlog.FiberG = *overrides.FiberG
		}
		nlog.Edited = true

		return tx.Save(&nlog).Error
	})
	if err != nil {
		return nil, err
	}
	return &nlog, nil
}

func parseMealID(mealID string) (string, error) {
	clean := strings.TrimSpace(mealID)
	if _, err := uuid.Parse(clean); err != nil {
		return "", ErrInvalidID
	}
	return clean, nil
}
