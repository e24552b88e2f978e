// README: Gemini-backed break advisor.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiAdvisor implements Advisor using Google's Gemini models.
type GeminiAdvisor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiAdvisor initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiAdvisor(ctx context.Context, apiKey string) (*GeminiAdvisor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Flash keeps the advisory call cheap; it sits on the scheduling path.
	model := client.GenerativeModel("gemini-2.0-flash")
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	return &GeminiAdvisor{client: client, model: model}, nil
}

// Close cleans up the Gemini client resources.
func (a *GeminiAdvisor) Close() {
	a.client.Close()
}

// AdviseBreakInterval asks the model for a rest interval suited to the trip.
func (a *GeminiAdvisor) AdviseBreakInterval(ctx context.Context, drivingDuration time.Duration, completedBreaks int) (BreakAdvice, error) {
	prompt := buildBreakPrompt(drivingDuration, completedBreaks)

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return BreakAdvice{}, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return BreakAdvice{}, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	cleanJSON := cleanJSONString(responseText.String())

	var advice BreakAdvice
	if err := json.Unmarshal([]byte(cleanJSON), &advice); err != nil {
		return BreakAdvice{}, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}
	if advice.IntervalMinutes <= 0 {
		return BreakAdvice{}, fmt.Errorf("non-positive interval from model: %d", advice.IntervalMinutes)
	}
	return advice, nil
}

func buildBreakPrompt(drivingDuration time.Duration, completedBreaks int) string {
	return fmt.Sprintf(`Role: You advise a long-distance driver on rest scheduling.
Trip: total driving time %.0f minutes. Breaks already taken today: %d.

Answer with JSON only:
{"interval_minutes": <int>, "reason": "<one short sentence>"}

Constraints:
- interval_minutes must be between 30 and 180.
- Shorter intervals for longer trips or when no breaks were taken yet.
- Never exceed the total driving time.`,
		drivingDuration.Minutes(), completedBreaks)
}

// cleanJSONString strips markdown fences the model occasionally emits
// despite JSON response mode.
func cleanJSONString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
