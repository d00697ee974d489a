package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// One tracked eating event. A meal is only ever created from an image
// turn the vision model classified as food; text turns amend the log
// of the most recent meal instead.
type Meal struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID     string    `gorm:"type:char(36);index;not null" json:"user_id"`
	FriendlyID string    `gorm:"not null" json:"friendly_id"`
	Status     string    `gorm:"default:'draft'" json:"status"`
	ImageID    *string   `gorm:"type:char(36)" json:"image_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	Logs []NutritionLog `gorm:"foreignKey:MealID" json:"logs,omitempty"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// NutritionLog is the structured estimate for a meal. The typed macro
// columns and RawJSON (the full adapter payload, fed back in as the
// correction context) are always written together in one transaction
// so they never drift apart.
type NutritionLog struct {
	ID     string `gorm:"type:char(36);primaryKey" json:"id"`
	MealID string `gorm:"type:char(36);index;not null" json:"meal_id"`

	ItemName         string `gorm:"not null" json:"item_name"`
	MealType         string `gorm:"default:'snack'" json:"meal_type"`
	IsComposedMeal   bool   `json:"is_composed_meal"`
	EstimatedWeightG int    `json:"estimated_weight_g"`

	CaloriesKcal int `json:"calories_kcal"`
	ProteinG     int `json:"protein_g"`
	CarbsG       int `json:"carbs_g"`
	FatG         int `json:"fat_g"`
	FiberG       int `json:"fiber_g"`

	ConfidenceScore float64                     `json:"confidence_score"`
	Reasoning       string                      `json:"reasoning"`
	DietaryFlags    datatypes.JSONSlice[string] `json:"dietary_flags"`

	// Edited flips to true once the user manually overrides macros;
	// the history view surfaces it so the UI can mark the meal.
	Edited  bool   `json:"edited"`
	RawJSON string `gorm:"type:text;not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (l *NutritionLog) TableName() string { return "nutrition_log" }

func (l *NutritionLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
