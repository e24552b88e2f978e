// README: Exercise catalog entities and session-result definitions.
package exercise

import (
	"time"

	"routemind/internal/types"
)

// The preference vocabulary lives in types so the session manager can
// embed it without importing this package. Aliased here for callers.
type (
	Difficulty = types.Difficulty
	Category   = types.ExerciseCategory
)

const (
	DifficultyEasy   = types.DifficultyEasy
	DifficultyMedium = types.DifficultyMedium
	DifficultyHard   = types.DifficultyHard
)

const (
	CategoryStretching = types.CategoryStretching
	CategoryMobility   = types.CategoryMobility
	CategoryCardio     = types.CategoryCardio
	CategoryStrength   = types.CategoryStrength
)

// Exercise is a static catalog entry, read-only to the core.
type Exercise struct {
	ID           types.ID
	Name         string
	Description  string
	Duration     time.Duration
	Difficulty   Difficulty
	Category     Category
	VideoRef     string
	ThumbnailRef string
	Instructions []string
}

// Preferences narrow which catalog entries get recommended.
type Preferences = types.ExercisePreferences

// DefaultPreferences returns the out-of-the-box preference bundle.
func DefaultPreferences() Preferences {
	return types.DefaultExercisePreferences()
}

// Result records one finished exercise session. Immutable once created.
type Result struct {
	ID                   types.ID
	UserID               types.ID
	ExerciseID           types.ID
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
	CompletionPercentage float64
	Feedback             *string
}

// State is the orchestrator's session state.
type State string

const (
	StateIdle         State = "idle"
	StateRecommending State = "recommending"
	StateInProgress   State = "in_progress"
	StatePaused       State = "paused"
)
