// README: Exercise preference vocabulary; lives here so the session and exercise managers share it without importing each other.
package types

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type ExerciseCategory string

const (
	CategoryStretching ExerciseCategory = "stretching"
	CategoryMobility   ExerciseCategory = "mobility"
	CategoryCardio     ExerciseCategory = "cardio"
	CategoryStrength   ExerciseCategory = "strength"
)

// ExercisePreferences narrow which catalog entries get recommended.
type ExercisePreferences struct {
	PreferredCategories []ExerciseCategory
	DifficultyLevel     Difficulty
}

// DefaultExercisePreferences returns the out-of-the-box bundle.
func DefaultExercisePreferences() ExercisePreferences {
	return ExercisePreferences{
		PreferredCategories: []ExerciseCategory{CategoryStretching, CategoryMobility},
		DifficultyLevel:     DifficultyEasy,
	}
}
