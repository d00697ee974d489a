package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emptyCompletionServer answers every chat-completion call with a 200
// that carries usage but zero choices, and records the request headers.
func emptyCompletionServer(t *testing.T) (*httptest.Server, *http.Header) {
	t.Helper()

	var seen http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"gen-1","object":"chat.completion","choices":[],"usage":{"prompt_tokens":7,"completion_tokens":0,"total_tokens":7}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newTestVisionService(baseURL string) *VisionService {
	return NewVisionService(VisionConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "test-model",
		SiteURL: "https://snaptrack.example",
		AppName: "Snap-2-Track",
	})
}

func TestAnalyzeImage_EmptyCompletionReturnsSentinel(t *testing.T) {
	srv, _ := emptyCompletionServer(t)
	svc := newTestVisionService(srv.URL)

	res := svc.AnalyzeImage(context.Background(), jpeg, "image/jpeg", "lunch", "en")

	assert.False(t, res.IsFood)
	assert.Equal(t, "API Error", res.ItemName)
	assert.NotEmpty(t, res.ReplyText)
	assert.Equal(t, 7, res.Meta.PromptTokens)
}

func TestAnalyzeCorrection_EmptyCompletionKeepsPrior(t *testing.T) {
	srv, _ := emptyCompletionServer(t)
	svc := newTestVisionService(srv.URL)

	prior := foodResult("Grilled Salmon", "dinner", 450, 35, 5, 28, 1)
	res := svc.AnalyzeCorrection(context.Background(), prior, "actually two fillets", "en")

	assert.Equal(t, "Grilled Salmon", res.ItemName)
	assert.Equal(t, prior.Nutrition, res.Nutrition)
	assert.True(t, res.IsFood)
	assert.NotEqual(t, prior.ReplyText, res.ReplyText, "reply tells the user nothing changed")
}

func TestVisionService_SendsAttributionHeaders(t *testing.T) {
	srv, seen := emptyCompletionServer(t)
	svc := newTestVisionService(srv.URL)

	svc.AnalyzeCorrection(context.Background(), AnalysisResult{}, "more rice", "en")

	require.NotNil(t, *seen)
	assert.Equal(t, "https://snaptrack.example", seen.Get("HTTP-Referer"))
	assert.Equal(t, "Snap-2-Track", seen.Get("X-Title"))
}
