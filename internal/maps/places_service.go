package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"routemind/internal/types"
)

// Place represents a simplified point-of-interest result.
type Place struct {
	PlaceID          string
	Name             string
	Category         string
	Address          string
	Location         types.Point
	Rating           float32
	UserRatingsTotal int
	OpenNow          bool
}

// PlacesService handles interactions with the Google Places API.
type PlacesService struct {
	client *maps.Client
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// SearchNearby searches for open places in the given categories around
// location, within radius meters. Results keep the API's ranking order,
// capped at limit.
func (s *PlacesService) SearchNearby(ctx context.Context, location types.Point, radiusMeters uint, categories []string, limit int) ([]Place, error) {
	query := "rest stop"
	if len(categories) > 0 {
		query = strings.ToLower(strings.Join(categories, " "))
	}

	r := &maps.TextSearchRequest{
		Query: query,
		Location: &maps.LatLng{
			Lat: location.Lat,
			Lng: location.Lng,
		},
		Radius:  radiusMeters,
		OpenNow: true,
	}

	resp, err := s.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	var results []Place
	for _, result := range resp.Results {
		category := ""
		if len(result.Types) > 0 {
			category = result.Types[0]
		}
		open := false
		if result.OpeningHours != nil && result.OpeningHours.OpenNow != nil {
			open = *result.OpeningHours.OpenNow
		}
		results = append(results, Place{
			PlaceID:          result.PlaceID,
			Name:             result.Name,
			Category:         category,
			Address:          result.FormattedAddress,
			Location:         types.Point{Lat: result.Geometry.Location.Lat, Lng: result.Geometry.Location.Lng},
			Rating:           result.Rating,
			UserRatingsTotal: result.UserRatingsTotal,
			OpenNow:          open,
		})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}
