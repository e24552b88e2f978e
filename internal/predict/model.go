// README: Prediction model; deterministic heuristics for break intervals and exercise picks.
package predict

import (
	"context"
	"log"
	"time"

	"routemind/internal/ai"
	"routemind/internal/modules/breaks"
	"routemind/internal/modules/exercise"
)

// DefaultBreakInterval is the fallback gap between rest breaks.
const DefaultBreakInterval = 2 * time.Hour

// Model is the pluggable prediction collaborator. The zero-dependency
// heuristic lives here; an AI-backed variant wraps it.
type Model struct {
	catalog []exercise.Exercise
}

func NewModel(catalog []exercise.Exercise) *Model {
	return &Model{catalog: catalog}
}

// PredictInterval returns the break interval for a trip. The driver's
// preferred interval is the base when set, the default otherwise.
// History stretches the interval slightly: a driver who has already
// rested recently can go a little longer. An interval beyond the trip
// duration is fine; the scheduler then generates no break points.
func (m *Model) PredictInterval(drivingDuration, preferred time.Duration, history []breaks.BreakPoint) time.Duration {
	if drivingDuration <= 0 {
		return 0
	}
	interval := DefaultBreakInterval
	if preferred > 0 {
		interval = preferred
	}

	completed := 0
	for _, p := range history {
		if p.IsCompleted {
			completed++
		}
	}
	// A small stretch per completed break, capped at +30 minutes.
	bonus := time.Duration(completed) * 10 * time.Minute
	if bonus > 30*time.Minute {
		bonus = 30 * time.Minute
	}
	interval += bonus
	return interval
}

// Recommend filters the catalog by the driver's preferences and the
// break length, preserving catalog order.
func (m *Model) Recommend(prefs exercise.Preferences, breakDuration time.Duration) []exercise.Exercise {
	var out []exercise.Exercise
	for _, ex := range m.catalog {
		if ex.Duration > breakDuration {
			continue
		}
		if prefs.DifficultyLevel != "" && ex.Difficulty != prefs.DifficultyLevel {
			continue
		}
		if len(prefs.PreferredCategories) > 0 && !containsCategory(prefs.PreferredCategories, ex.Category) {
			continue
		}
		out = append(out, ex)
	}
	return out
}

func containsCategory(cs []exercise.Category, c exercise.Category) bool {
	for _, v := range cs {
		if v == c {
			return true
		}
	}
	return false
}

// AIMode layers an advisor over the heuristic for interval prediction.
// Any advisor failure degrades to the deterministic answer; the
// scheduling pipeline never fails on the model.
type AIModel struct {
	*Model
	advisor ai.Advisor
	timeout time.Duration
}

func NewAIModel(base *Model, advisor ai.Advisor) *AIModel {
	return &AIModel{Model: base, advisor: advisor, timeout: 10 * time.Second}
}

func (m *AIModel) PredictInterval(drivingDuration, preferred time.Duration, history []breaks.BreakPoint) time.Duration {
	fallback := m.Model.PredictInterval(drivingDuration, preferred, history)
	if drivingDuration <= 0 {
		return fallback
	}

	completed := 0
	for _, p := range history {
		if p.IsCompleted {
			completed++
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	advice, err := m.advisor.AdviseBreakInterval(ctx, drivingDuration, completed)
	if err != nil {
		log.Printf("predict: advisor unavailable, using heuristic: %v", err)
		return fallback
	}

	interval := time.Duration(advice.IntervalMinutes) * time.Minute
	if interval <= 0 {
		return fallback
	}
	return interval
}
