// services/analysis.go
package services

import (
	"encoding/json"
	"strings"
)

// NutritionFacts are the five macro fields the model estimates.
type NutritionFacts struct {
	CaloriesKcal int `json:"calories_kcal"`
	ProteinG     int `json:"protein_g"`
	CarbsG       int `json:"carbs_g"`
	FatG         int `json:"fat_g"`
	FiberG       int `json:"fiber_g"`
}

// AnalysisMeta carries operational metadata about the upstream call.
// It is informational only and never persisted.
type AnalysisMeta struct {
	ElapsedMS        int64   `json:"elapsed_ms"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

// AnalysisResult is the structured output of the vision and correction
// calls. Every field has a usable zero default so a partially filled
// model response still maps to a valid value.
type AnalysisResult struct {
	IsFood           bool           `json:"is_food"`
	ItemName         string         `json:"item_name"`
	MealType         string         `json:"meal_type"`
	IsComposedMeal   bool           `json:"is_composed_meal"`
	EstimatedWeightG int            `json:"estimated_weight_g"`
	Nutrition        NutritionFacts `json:"nutrition"`
	DietaryFlags     []string       `json:"dietary_flags"`
	ConfidenceScore  float64        `json:"confidence_score"`
	Reasoning        string         `json:"reasoning"`
	ReplyText        string         `json:"reply_text"`

	// ParseFailed marks the parse-error sentinel so callers can tell
	// "model said not food" from "model said nothing usable".
	ParseFailed bool `json:"-"`

	Meta AnalysisMeta `json:"-"`
}

var validMealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// ParseAnalysisResult turns raw model output into an AnalysisResult.
// Models love to wrap JSON in markdown fences or chat around it, so we
// strip fences and slice out the outermost object before decoding.
// Unparseable output maps to a not-food sentinel, never an error.
func ParseAnalysisResult(raw string) AnalysisResult {
	text := strings.ReplaceAll(raw, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start != -1 && end > start {
		text = text[start : end+1]
	}

	var res AnalysisResult
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		return ParseErrorResult(raw)
	}

	res.ReplyText = strings.TrimSpace(res.ReplyText)
	if res.ItemName == "" {
		res.ItemName = "Unknown"
	}
	if !validMealTypes[res.MealType] {
		res.MealType = "snack"
	}
	if res.ConfidenceScore < 0 {
		res.ConfidenceScore = 0
	}
	if res.ConfidenceScore > 1 {
		res.ConfidenceScore = 1
	}
	if res.DietaryFlags == nil {
		res.DietaryFlags = []string{}
	}
	return res
}

// ParseErrorResult is the sentinel for output that did not contain
// usable JSON. The reasoning keeps a snippet of the raw text for logs.
func ParseErrorResult(raw string) AnalysisResult {
	snippet := raw
	if len(snippet) > 50 {
		snippet = snippet[:50] + "..."
	}
	return AnalysisResult{
		IsFood:       false,
		ItemName:     "Parsing Error",
		MealType:     "snack",
		DietaryFlags: []string{},
		Reasoning:    "Raw output: " + snippet,
		ReplyText:    "I saw the food, but I tripped over the math. Try again?",
		ParseFailed:  true,
	}
}

// ErrorResult is the sentinel for a failed upstream call. The
// orchestrator treats it exactly like a not-food classification.
func ErrorResult(err error) AnalysisResult {
	return AnalysisResult{
		IsFood:       false,
		ItemName:     "API Error",
		MealType:     "snack",
		DietaryFlags: []string{},
		Reasoning:    "upstream error: " + err.Error(),
		ReplyText:    "My brain is offline momentarily! Please try again in a bit.",
	}
}

// Raw re-serializes the result for the nutrition log's raw copy and
// for the correction call's context.
func (r AnalysisResult) Raw() string {
	b, err := json.Marshal(r)
	if err != nil {
		return "{}"
	}
	return string(b)
}
