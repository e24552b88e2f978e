// README: Driver identity and preference bundle.
package session

import (
	"time"

	"routemind/internal/types"
)

type User struct {
	ID              types.ID
	Email           string
	Name            string
	ProfileImageURL string
	Preferences     Preferences
	CreatedAt       time.Time
	LastLogin       time.Time
}

// Preferences bundles everything the trip-session core personalizes on.
type Preferences struct {
	// PreferredBreakInterval caps how long the driver wants to go
	// between rest breaks.
	PreferredBreakInterval time.Duration
	Exercise               types.ExercisePreferences
	POI                    POIPreferences
	Notifications          NotificationSettings
}

type POIPreferences struct {
	PreferredCategories []string
}

type NotificationSettings struct {
	BreakReminders    bool
	ExerciseReminders bool
	RouteUpdates      bool
}

// DefaultPreferences is the bundle assigned at first sign-in.
func DefaultPreferences() Preferences {
	return Preferences{
		PreferredBreakInterval: 2 * time.Hour,
		Exercise:               types.DefaultExercisePreferences(),
		POI: POIPreferences{
			PreferredCategories: []string{"Cafe", "Park", "Restaurant"},
		},
		Notifications: NotificationSettings{
			BreakReminders:    true,
			ExerciseReminders: true,
			RouteUpdates:      true,
		},
	}
}
