// README: Route aggregate; immutable after creation except the favorite flag.
package route

import (
	"time"

	"routemind/internal/types"
)

type Route struct {
	ID                types.ID
	UserID            types.ID
	Name              string
	Start             types.Point
	End               types.Point
	Waypoints         []types.Point
	Polyline          string
	EstimatedDuration time.Duration
	DistanceMeters    float64
	CreatedAt         time.Time
	IsFavorite        bool
}
