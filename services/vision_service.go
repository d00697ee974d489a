// services/vision_service.go
package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Analyzer is the boundary the orchestrator talks to. Both methods
// always return a well-formed result; upstream failures come back as
// the error sentinel (image) or the unchanged prior result (correction).
type Analyzer interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType, userContext, language string) AnalysisResult
	AnalyzeCorrection(ctx context.Context, prior AnalysisResult, correction, language string) AnalysisResult
}

type VisionConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	SiteURL string
	AppName string

	// USD per million tokens, for the cost metadata. Zero disables
	// the estimate.
	PromptCostPerMTok     float64
	CompletionCostPerMTok float64
}

func VisionConfigFromEnv() VisionConfig {
	cfg := VisionConfig{
		APIKey:  os.Getenv("OPENROUTER_API_KEY"),
		BaseURL: os.Getenv("OPENROUTER_BASE_URL"),
		Model:   os.Getenv("MODEL_ID"),
		SiteURL: os.Getenv("SITE_URL"),
		AppName: os.Getenv("APP_NAME"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "qwen/qwen-2-vl-72b-instruct"
	}
	if cfg.AppName == "" {
		cfg.AppName = "Snap-2-Track"
	}
	if v := os.Getenv("PROMPT_COST_PER_MTOK"); v != "" {
		cfg.PromptCostPerMTok, _ = strconv.ParseFloat(v, 64)
	}
	if v := os.Getenv("COMPLETION_COST_PER_MTOK"); v != "" {
		cfg.CompletionCostPerMTok, _ = strconv.ParseFloat(v, 64)
	}
	return cfg
}

// VisionService calls an OpenAI-compatible endpoint (OpenRouter by
// default) with a vision-capable model.
type VisionService struct {
	cfg    VisionConfig
	client *openai.Client
}

func NewVisionService(cfg VisionConfig) *VisionService {
	cc := openai.DefaultConfig(cfg.APIKey)
	cc.BaseURL = cfg.BaseURL
	cc.HTTPClient = &http.Client{
		Timeout: 90 * time.Second,
		Transport: &attributionTransport{
			siteURL: cfg.SiteURL,
			appName: cfg.AppName,
		},
	}
	return &VisionService{cfg: cfg, client: openai.NewClientWithConfig(cc)}
}

// attributionTransport adds the OpenRouter app-attribution headers to
// every request.
type attributionTransport struct {
	siteURL string
	appName string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.siteURL != "" {
		req.Header.Set("HTTP-Referer", t.siteURL)
	}
	if t.appName != "" {
		req.Header.Set("X-Title", t.appName)
	}
	return http.DefaultTransport.RoundTrip(req)
}

const analysisSchema = `{
    "is_food": boolean,
    "item_name": "Short name",
    "meal_type": "breakfast|lunch|dinner|snack",
    "is_composed_meal": true,
    "estimated_weight_g": <int>,
    "nutrition": {
        "calories_kcal": <int>,
        "protein_g": <int>,
        "carbs_g": <int>,
        "fat_g": <int>,
        "fiber_g": <int>
    },
    "dietary_flags": ["string"],
    "confidence_score": <float 0.0-1.0>,
    "reasoning": "Technical reasoning",
    "reply_text": "Response to user"
}`

func (s *VisionService) AnalyzeImage(ctx context.Context, image []byte, mimeType, userContext, language string) AnalysisResult {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	systemPrompt := fmt.Sprintf(`You are 'Snap-2-Track'. Analyze the food image. Context: %q

GUIDELINES FOR 'reply_text':
1. **Describe Visuals:** Briefly describe what you see (colors, textures, plating).
2. **State Macros:** You MUST explicitly list the identified macros in the text (e.g. "I estimate ~500 kcal, 30g Protein, ...").
3. **NO PREACHING:** Do NOT give health advice, do NOT say "watch your sugar", do NOT say "this is a healthy choice". Just state the facts of the food.
4. **Tone:** Neutral, observant, professional but casual.
5. Write 'reply_text' in the language %q.

If text context adds items (e.g. "plus a beer"), include them in math and text.

Return ONLY valid JSON:
%s`, userContext, langOrDefault(language), analysisSchema)

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
		Temperature: 0.2,
		MaxTokens:   1000,
	})
	if err != nil {
		log.Printf("vision call failed: %v", err)
		return s.withMeta(ErrorResult(err), start, nil)
	}

	if len(resp.Choices) == 0 {
		log.Printf("vision call returned no choices")
		return s.withMeta(ErrorResult(errors.New("empty completion")), start, &resp.Usage)
	}

	result := ParseAnalysisResult(resp.Choices[0].Message.Content)
	return s.withMeta(result, start, &resp.Usage)
}

func (s *VisionService) AnalyzeCorrection(ctx context.Context, prior AnalysisResult, correction, language string) AnalysisResult {
	priorJSON, _ := json.Marshal(prior)

	prompt := fmt.Sprintf(`Current Meal Data: %s
User Correction: %q

Task:
1. Update 'item_name', 'nutrition' totals.
2. 'reply_text': Confirm the change AND list the new total macros, in the language %q.
3. NO PREACHING.

Return ONLY the updated JSON.`, string(priorJSON), correction, langOrDefault(language))

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		// Correction failures leave the prior estimate untouched.
		log.Printf("correction call failed: %v", err)
		prior.ReplyText = "I couldn't apply that just now, your meal is unchanged."
		return s.withMeta(prior, start, nil)
	}

	if len(resp.Choices) == 0 {
		log.Printf("correction call returned no choices")
		prior.ReplyText = "I couldn't apply that just now, your meal is unchanged."
		return s.withMeta(prior, start, &resp.Usage)
	}

	result := ParseAnalysisResult(resp.Choices[0].Message.Content)
	if result.ParseFailed {
		// A correction that came back as garbage leaves the prior
		// estimate untouched.
		prior.ReplyText = result.ReplyText
		return s.withMeta(prior, start, &resp.Usage)
	}
	return s.withMeta(result, start, &resp.Usage)
}

func (s *VisionService) withMeta(res AnalysisResult, start time.Time, usage *openai.Usage) AnalysisResult {
	res.Meta.ElapsedMS = time.Since(start).Milliseconds()
	if usage != nil {
		res.Meta.PromptTokens = usage.PromptTokens
		res.Meta.CompletionTokens = usage.CompletionTokens
		res.Meta.CostUSD = float64(usage.PromptTokens)/1e6*s.cfg.PromptCostPerMTok +
			float64(usage.CompletionTokens)/1e6*s.cfg.CompletionCostPerMTok
	}
	return res
}

func langOrDefault(language string) string {
	if language == "" {
		return "en"
	}
	return language
}
