package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysisResult_FencedJSON(t *testing.T) {
	raw := "```json\n{\"is_food\": true, \"item_name\": \"Pasta\", \"meal_type\": \"dinner\"," +
		" \"nutrition\": {\"calories_kcal\": 600, \"protein_g\": 20, \"carbs_g\": 80, \"fat_g\": 18, \"fiber_g\": 4}," +
		" \"confidence_score\": 0.8, \"reply_text\": \"  A plate of pasta.  \"}\n```"

	res := ParseAnalysisResult(raw)

	assert.True(t, res.IsFood)
	assert.Equal(t, "Pasta", res.ItemName)
	assert.Equal(t, "dinner", res.MealType)
	assert.Equal(t, 600, res.Nutrition.CaloriesKcal)
	assert.Equal(t, "A plate of pasta.", res.ReplyText, "reply text is trimmed")
}

func TestParseAnalysisResult_ChatterAroundBraces(t *testing.T) {
	raw := "Sure! Here is the result:\n{\"is_food\": true, \"item_name\": \"Apple\"}\nHope that helps."

	res := ParseAnalysisResult(raw)

	assert.True(t, res.IsFood)
	assert.Equal(t, "Apple", res.ItemName)
}

func TestParseAnalysisResult_Defaults(t *testing.T) {
	res := ParseAnalysisResult(`{"is_food": true}`)

	assert.Equal(t, "Unknown", res.ItemName)
	assert.Equal(t, "snack", res.MealType)
	assert.NotNil(t, res.DietaryFlags)
	assert.Empty(t, res.DietaryFlags)
	assert.Zero(t, res.Nutrition.CaloriesKcal)
}

func TestParseAnalysisResult_BadMealTypeAndConfidence(t *testing.T) {
	res := ParseAnalysisResult(`{"is_food": true, "item_name": "X", "meal_type": "brunch", "confidence_score": 3.5}`)
	assert.Equal(t, "snack", res.MealType)
	assert.Equal(t, 1.0, res.ConfidenceScore)

	res = ParseAnalysisResult(`{"is_food": true, "item_name": "X", "confidence_score": -0.3}`)
	assert.Equal(t, 0.0, res.ConfidenceScore)
}

func TestParseAnalysisResult_GarbageIsSentinel(t *testing.T) {
	res := ParseAnalysisResult("the model said something that is not json at all")

	assert.False(t, res.IsFood)
	assert.True(t, res.ParseFailed)
	assert.Equal(t, "Parsing Error", res.ItemName)
	assert.NotEmpty(t, res.ReplyText, "user still gets a reply")
	assert.Contains(t, res.Reasoning, "Raw output:")
}

func TestErrorResult_NeverFood(t *testing.T) {
	res := ErrorResult(assert.AnError)

	assert.False(t, res.IsFood)
	assert.NotEmpty(t, res.ReplyText)
	assert.Zero(t, res.Nutrition.CaloriesKcal)
}

func TestAnalysisResult_RawRoundTrip(t *testing.T) {
	orig := foodResult("Grilled Salmon", "dinner", 450, 35, 5, 28, 1)

	var back AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(orig.Raw()), &back))

	assert.Equal(t, orig.ItemName, back.ItemName)
	assert.Equal(t, orig.Nutrition, back.Nutrition)
	assert.Equal(t, orig.ConfidenceScore, back.ConfidenceScore)
}
