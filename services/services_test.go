package services

import (
	"context"
	"testing"

	"snaptrack/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps the in-memory database alive and
	// visible to every session
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ImageStore{},
		&models.Meal{},
		&models.NutritionLog{},
		&models.Message{},
	))
	return db
}

// fakeAnalyzer is a scripted Analyzer: it plays back whatever results
// the test assigns and records what it was asked.
type fakeAnalyzer struct {
	imageResult      AnalysisResult
	correctionResult AnalysisResult

	imageCalls      int
	correctionCalls int
	lastContext     string
	lastCorrection  string
	lastPrior       AnalysisResult
}

func (f *fakeAnalyzer) AnalyzeImage(_ context.Context, _ []byte, _, userContext, _ string) AnalysisResult {
	f.imageCalls++
	f.lastContext = userContext
	return f.imageResult
}

func (f *fakeAnalyzer) AnalyzeCorrection(_ context.Context, prior AnalysisResult, correction, _ string) AnalysisResult {
	f.correctionCalls++
	f.lastPrior = prior
	f.lastCorrection = correction
	return f.correctionResult
}

func foodResult(name, mealType string, kcal, protein, carbs, fat, fiber int) AnalysisResult {
	return AnalysisResult{
		IsFood:           true,
		ItemName:         name,
		MealType:         mealType,
		EstimatedWeightG: 300,
		Nutrition: NutritionFacts{
			CaloriesKcal: kcal,
			ProteinG:     protein,
			CarbsG:       carbs,
			FatG:         fat,
			FiberG:       fiber,
		},
		DietaryFlags:    []string{},
		ConfidenceScore: 0.9,
		Reasoning:       "test estimate",
		ReplyText:       "Looks tasty.",
	}
}
