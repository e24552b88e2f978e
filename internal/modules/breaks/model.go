// README: Break-point entities and scheduler state definitions.
package breaks

import (
	"time"

	"routemind/internal/types"
)

type State string

const (
	StateIdle       State = "idle"
	StateScheduling State = "scheduling"
	StateMonitoring State = "monitoring"
)

// POI is a point of interest linked to a break point.
type POI struct {
	ID       types.ID
	Name     string
	Category string
	Address  string
	Location types.Point
	Rating   float64
}

// BreakPoint is one scheduled rest stop on a route. Points are created
// in a batch when a route activates, ordered by scheduled time, and are
// only ever mutated to flip completion or attach a POI.
type BreakPoint struct {
	ID            types.ID
	RouteID       types.ID
	Location      types.Point
	ScheduledTime time.Time
	POI           *POI
	Duration      time.Duration
	IsCompleted   bool
	Notes         string
}

// Profile is the slice of driver preferences the scheduler reads.
type Profile struct {
	PreferredInterval time.Duration
	BreakReminders    bool
	POICategories     []string
}
