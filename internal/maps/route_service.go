package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"routemind/internal/types"
)

// Leg is the computed geometry for a trip from start to end.
type Leg struct {
	Polyline string
	Duration time.Duration
	// DistanceMeters is the driving distance, not great-circle.
	DistanceMeters float64
}

// RouteService handles interactions with the Google Maps Directions API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Compute returns the driving leg for start → end through the given
// waypoints. It assumes driving mode and no alternate routes.
func (s *RouteService) Compute(ctx context.Context, start, end types.Point, waypoints []types.Point) (Leg, error) {
	r := &maps.DirectionsRequest{
		Origin:      formatPoint(start),
		Destination: formatPoint(end),
		Mode:        maps.TravelModeDriving,
	}
	for _, wp := range waypoints {
		r.Waypoints = append(r.Waypoints, formatPoint(wp))
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return Leg{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Leg{}, fmt.Errorf("no route found")
	}

	route := routes[0]
	var duration time.Duration
	var distance float64
	for _, leg := range route.Legs {
		duration += leg.Duration
		distance += float64(leg.Distance.Meters)
	}
	return Leg{
		Polyline:       route.OverviewPolyline.Points,
		Duration:       duration,
		DistanceMeters: distance,
	}, nil
}

// PointAlong samples the position at fraction ∈ [0, 1] of the encoded
// polyline's length. Returns false when the polyline cannot be decoded
// or holds fewer than two points; callers fall back to the route start.
func (s *RouteService) PointAlong(polyline string, fraction float64) (types.Point, bool) {
	coords, err := maps.DecodePolyline(polyline)
	if err != nil || len(coords) < 2 {
		return types.Point{}, false
	}
	if fraction <= 0 {
		return types.Point{Lat: coords[0].Lat, Lng: coords[0].Lng}, true
	}
	if fraction >= 1 {
		last := coords[len(coords)-1]
		return types.Point{Lat: last.Lat, Lng: last.Lng}, true
	}

	// Walk the polyline by cumulative great-circle segment length.
	total := 0.0
	segs := make([]float64, len(coords)-1)
	for i := 1; i < len(coords); i++ {
		d := HaversineKm(
			types.Point{Lat: coords[i-1].Lat, Lng: coords[i-1].Lng},
			types.Point{Lat: coords[i].Lat, Lng: coords[i].Lng},
		)
		segs[i-1] = d
		total += d
	}
	if total == 0 {
		return types.Point{Lat: coords[0].Lat, Lng: coords[0].Lng}, true
	}

	target := fraction * total
	walked := 0.0
	for i, d := range segs {
		if walked+d >= target {
			t := 0.0
			if d > 0 {
				t = (target - walked) / d
			}
			a, b := coords[i], coords[i+1]
			return types.Point{
				Lat: a.Lat + (b.Lat-a.Lat)*t,
				Lng: a.Lng + (b.Lng-a.Lng)*t,
			}, true
		}
		walked += d
	}
	last := coords[len(coords)-1]
	return types.Point{Lat: last.Lat, Lng: last.Lng}, true
}

func formatPoint(p types.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}
