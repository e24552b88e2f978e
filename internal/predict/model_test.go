// README: Prediction model tests (interval heuristics + recommendation filtering).
package predict

import (
	"context"
	"errors"
	"testing"
	"time"

	"routemind/internal/ai"
	"routemind/internal/modules/breaks"
	"routemind/internal/modules/exercise"
)

func completedBreaks(n int) []breaks.BreakPoint {
	out := make([]breaks.BreakPoint, n)
	for i := range out {
		out[i].IsCompleted = true
	}
	return out
}

func TestPredictInterval(t *testing.T) {
	m := NewModel(nil)
	cases := []struct {
		name      string
		duration  time.Duration
		preferred time.Duration
		history   []breaks.BreakPoint
		want      time.Duration
	}{
		{"zero duration", 0, 0, nil, 0},
		{"negative duration", -time.Hour, 0, nil, 0},
		{"no history", 8 * time.Hour, 0, nil, 2 * time.Hour},
		{"preferred interval replaces the default", 8 * time.Hour, 90 * time.Minute, nil, 90 * time.Minute},
		{"non-positive preferred falls back", 8 * time.Hour, -time.Hour, nil, 2 * time.Hour},
		{"two completed stretch the interval", 8 * time.Hour, 0, completedBreaks(2), 2*time.Hour + 20*time.Minute},
		{"history stretches the preferred base", 8 * time.Hour, time.Hour, completedBreaks(2), time.Hour + 20*time.Minute},
		{"bonus capped at thirty minutes", 8 * time.Hour, 0, completedBreaks(7), 2*time.Hour + 30*time.Minute},
		{"incomplete breaks do not count", 8 * time.Hour, 0, []breaks.BreakPoint{{}, {}}, 2 * time.Hour},
		{"interval may exceed a short trip", 30 * time.Minute, 0, nil, 2 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := m.PredictInterval(tc.duration, tc.preferred, tc.history)
			if got != tc.want {
				t.Errorf("PredictInterval(%v) = %v, want %v", tc.duration, got, tc.want)
			}
		})
	}
}

func TestRecommend_FiltersAndKeepsCatalogOrder(t *testing.T) {
	m := NewModel(exercise.DefaultCatalog())

	recs := m.Recommend(exercise.DefaultPreferences(), 15*time.Minute)
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}
	wantOrder := []string{"ex-neck-stretches", "ex-shoulder-rolls", "ex-seated-twist"}
	for i, want := range wantOrder {
		if string(recs[i].ID) != want {
			t.Errorf("recs[%d] = %s, want %s", i, recs[i].ID, want)
		}
	}
}

func TestRecommend_BreakDurationExcludesLongExercises(t *testing.T) {
	m := NewModel(exercise.DefaultCatalog())

	prefs := exercise.Preferences{
		PreferredCategories: []exercise.Category{exercise.CategoryCardio},
		DifficultyLevel:     exercise.DifficultyMedium,
	}
	if recs := m.Recommend(prefs, 5*time.Minute); len(recs) != 0 {
		t.Errorf("expected no recommendations for a 5-minute break, got %d", len(recs))
	}
	if recs := m.Recommend(prefs, 15*time.Minute); len(recs) != 1 || recs[0].ID != "ex-brisk-walk" {
		t.Errorf("expected only the brisk walk, got %v", recs)
	}
}

func TestRecommend_EmptyPrefsMatchEverythingThatFits(t *testing.T) {
	m := NewModel(exercise.DefaultCatalog())

	recs := m.Recommend(exercise.Preferences{}, time.Hour)
	if len(recs) != len(exercise.DefaultCatalog()) {
		t.Errorf("expected the whole catalog, got %d entries", len(recs))
	}
}

// stubAdvisor is a test double for ai.Advisor.
type stubAdvisor struct {
	advice ai.BreakAdvice
	err    error
}

func (s *stubAdvisor) AdviseBreakInterval(_ context.Context, _ time.Duration, _ int) (ai.BreakAdvice, error) {
	return s.advice, s.err
}

func TestAIModel_UsesAdvice(t *testing.T) {
	m := NewAIModel(NewModel(nil), &stubAdvisor{advice: ai.BreakAdvice{IntervalMinutes: 90}})
	got := m.PredictInterval(8*time.Hour, 0, nil)
	if got != 90*time.Minute {
		t.Errorf("PredictInterval = %v, want 90m", got)
	}
}

func TestAIModel_FallsBackOnError(t *testing.T) {
	m := NewAIModel(NewModel(nil), &stubAdvisor{err: errors.New("quota exceeded")})
	got := m.PredictInterval(8*time.Hour, 0, nil)
	if got != 2*time.Hour {
		t.Errorf("PredictInterval = %v, want heuristic 2h", got)
	}
}

func TestAIModel_FallbackHonorsPreferredInterval(t *testing.T) {
	m := NewAIModel(NewModel(nil), &stubAdvisor{err: errors.New("quota exceeded")})
	got := m.PredictInterval(8*time.Hour, time.Hour, nil)
	if got != time.Hour {
		t.Errorf("PredictInterval = %v, want preferred 1h", got)
	}
}

func TestAIModel_RejectsNonPositiveAdvice(t *testing.T) {
	m := NewAIModel(NewModel(nil), &stubAdvisor{advice: ai.BreakAdvice{IntervalMinutes: 0}})
	got := m.PredictInterval(8*time.Hour, 0, nil)
	if got != 2*time.Hour {
		t.Errorf("PredictInterval = %v, want heuristic 2h", got)
	}
}
