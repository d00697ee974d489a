package services

import (
	"context"
	"testing"

	"snaptrack/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedMeal(t *testing.T, db *gorm.DB, res AnalysisResult) string {
	t.Helper()
	ai := &fakeAnalyzer{imageResult: res}
	orc := newOrchestrator(db, ai)
	_, err := orc.HandleTurn(context.Background(), "alice", "", jpeg, "image/jpeg", "en")
	require.NoError(t, err)

	var meal models.Meal
	require.NoError(t, db.Order("created_at DESC").First(&meal).Error)
	return meal.ID
}

func TestDeleteMeal_CascadesLogsAndMessages(t *testing.T) {
	db := newTestDB(t)
	mealID := seedMeal(t, db, foodResult("Pizza", "dinner", 800, 30, 90, 35, 4))
	svc := NewMealService(db)

	require.NoError(t, svc.DeleteMeal(mealID))

	var logCount, msgCount, mealCount int64
	db.Model(&models.NutritionLog{}).Where("meal_id = ?", mealID).Count(&logCount)
	db.Model(&models.Message{}).Where("meal_id = ?", mealID).Count(&msgCount)
	db.Model(&models.Meal{}).Where("id = ?", mealID).Count(&mealCount)
	assert.Zero(t, logCount)
	assert.Zero(t, msgCount)
	assert.Zero(t, mealCount)

	// history no longer includes it
	days, err := NewHistoryService(db, "http://localhost:8080").DailySummary("alice")
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestDeleteMeal_NotFoundVsMalformed(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db)

	err := svc.DeleteMeal(uuid.NewString())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = svc.DeleteMeal("not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidID)

	var count int64
	db.Model(&models.Meal{}).Count(&count)
	assert.Zero(t, count, "failed deletes have no side effects")
}

func TestEditNutrition_PartialOverride(t *testing.T) {
	db := newTestDB(t)
	mealID := seedMeal(t, db, foodResult("Grilled Salmon", "dinner", 450, 35, 5, 28, 1))
	svc := NewMealService(db)

	calories := 500
	nlog, err := svc.EditNutrition(mealID, MacroOverrides{CaloriesKcal: &calories})
	require.NoError(t, err)

	assert.Equal(t, 500, nlog.CaloriesKcal)
	assert.Equal(t, 35, nlog.ProteinG, "untouched macros keep their values")
	assert.Equal(t, 5, nlog.CarbsG)
	assert.Equal(t, 28, nlog.FatG)
	assert.Equal(t, 1, nlog.FiberG)
	assert.True(t, nlog.Edited)
	assert.Equal(t, "Grilled Salmon", nlog.ItemName)
	assert.Contains(t, nlog.RawJSON, "450", "raw copy is deliberately left as the model wrote it")
}

func TestEditNutrition_Errors(t *testing.T) {
	db := newTestDB(t)
	svc := NewMealService(db)

	_, err := svc.EditNutrition("garbage", MacroOverrides{})
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = svc.EditNutrition(uuid.NewString(), MacroOverrides{})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetMeal_Detail(t *testing.T) {
	db := newTestDB(t)
	mealID := seedMeal(t, db, foodResult("Ramen", "lunch", 550, 20, 70, 18, 3))
	svc := NewMealService(db)

	detail, err := svc.GetMeal(mealID)
	require.NoError(t, err)
	require.NotNil(t, detail.Log)
	assert.Equal(t, "Ramen", detail.Log.ItemName)
	assert.Equal(t, mealID, detail.Meal.ID)

	_, err = svc.GetMeal(uuid.NewString())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
