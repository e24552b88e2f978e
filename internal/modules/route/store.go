// README: Route store backed by PostgreSQL; waypoints encoded as JSONB.
package route

import (
	"context"
	"encoding/json"
	"time"

	"routemind/internal/infra"
	"routemind/internal/types"
)

type Store struct {
	db infra.Querier
}

func NewStore(db infra.Querier) *Store {
	return &Store{db: db}
}

type waypointRecord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func encodeWaypoints(points []types.Point) ([]byte, error) {
	recs := make([]waypointRecord, len(points))
	for i, p := range points {
		recs[i] = waypointRecord{Lat: p.Lat, Lng: p.Lng}
	}
	return json.Marshal(recs)
}

func decodeWaypoints(raw []byte) ([]types.Point, error) {
	var recs []waypointRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, err
	}
	points := make([]types.Point, len(recs))
	for i, r := range recs {
		points[i] = types.Point{Lat: r.Lat, Lng: r.Lng}
	}
	return points, nil
}

func (s *Store) SaveRoute(ctx context.Context, r *Route) error {
	waypoints, err := encodeWaypoints(r.Waypoints)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO routes (
            id, user_id, name,
            start_lat, start_lng, end_lat, end_lng, waypoints,
            polyline, estimated_duration_s, distance_m, created_at, is_favorite
        ) VALUES (
            $1, $2, $3,
            $4, $5, $6, $7, $8,
            $9, $10, $11, $12, $13
        )`,
		string(r.ID), string(r.UserID), r.Name,
		r.Start.Lat, r.Start.Lng, r.End.Lat, r.End.Lng, waypoints,
		r.Polyline, int64(r.EstimatedDuration/time.Second), r.DistanceMeters, r.CreatedAt, r.IsFavorite,
	)
	return err
}

func (s *Store) FetchRoutes(ctx context.Context, userID types.ID) ([]Route, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, name,
               start_lat, start_lng, end_lat, end_lng, waypoints,
               polyline, estimated_duration_s, distance_m, created_at, is_favorite
        FROM routes
        WHERE user_id = $1
        ORDER BY created_at DESC`, string(userID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var r Route
		var waypoints []byte
		var durationS int64
		err := rows.Scan(
			&r.ID, &r.UserID, &r.Name,
			&r.Start.Lat, &r.Start.Lng, &r.End.Lat, &r.End.Lng, &waypoints,
			&r.Polyline, &durationS, &r.DistanceMeters, &r.CreatedAt, &r.IsFavorite,
		)
		if err != nil {
			return nil, err
		}
		r.EstimatedDuration = time.Duration(durationS) * time.Second
		if r.Waypoints, err = decodeWaypoints(waypoints); err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func (s *Store) DeleteRoute(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM routes WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateFavorite(ctx context.Context, id types.ID, favorite bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE routes SET is_favorite = $2 WHERE id = $1`, string(id), favorite)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
