// README: Live Gemini advisor test; skipped unless GEMINI_API_KEY is set.
package ai

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestGeminiAdvisorLive(t *testing.T) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set; skipping live advisor test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	advisor, err := NewGeminiAdvisor(ctx, apiKey)
	if err != nil {
		t.Fatalf("advisor init: %v", err)
	}
	defer advisor.Close()

	advice, err := advisor.AdviseBreakInterval(ctx, 6*time.Hour, 1)
	if err != nil {
		t.Fatalf("advise: %v", err)
	}
	if advice.IntervalMinutes <= 0 {
		t.Errorf("interval = %d, want positive", advice.IntervalMinutes)
	}
	t.Logf("advice: %d minutes (%s)", advice.IntervalMinutes, advice.Reason)
}
