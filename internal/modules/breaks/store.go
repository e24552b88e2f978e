// README: Break-point store backed by PostgreSQL.
package breaks

import (
	"context"
	"database/sql"
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

type poiRecord struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Address  string  `json:"address"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Rating   float64 `json:"rating"`
}

func encodePOI(p *POI) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(poiRecord{
		ID:       string(p.ID),
		Name:     p.Name,
		Category: p.Category,
		Address:  p.Address,
		Lat:      p.Location.Lat,
		Lng:      p.Location.Lng,
		Rating:   p.Rating,
	})
}

func decodePOI(raw []byte) (*POI, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rec poiRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &POI{
		ID:       types.ID(rec.ID),
		Name:     rec.Name,
		Category: rec.Category,
		Address:  rec.Address,
		Location: types.Point{Lat: rec.Lat, Lng: rec.Lng},
		Rating:   rec.Rating,
	}, nil
}

func (s *Store) SaveBreakPoint(ctx context.Context, p *BreakPoint) error {
	poi, err := encodePOI(p.POI)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO break_points (
            id, route_id, lat, lng, scheduled_time,
            poi, duration_s, is_completed, notes
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9
        )`,
		string(p.ID), string(p.RouteID), p.Location.Lat, p.Location.Lng, p.ScheduledTime,
		poi, int64(p.Duration/time.Second), p.IsCompleted, p.Notes,
	)
	return err
}

func (s *Store) FetchBreakPoints(ctx context.Context, routeID types.ID) ([]BreakPoint, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, route_id, lat, lng, scheduled_time,
               poi, duration_s, is_completed, notes
        FROM break_points
        WHERE route_id = $1
        ORDER BY scheduled_time ASC`, string(routeID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []BreakPoint
	for rows.Next() {
		var p BreakPoint
		var poi []byte
		var durationS int64
		var notes sql.NullString
		err := rows.Scan(
			&p.ID, &p.RouteID, &p.Location.Lat, &p.Location.Lng, &p.ScheduledTime,
			&poi, &durationS, &p.IsCompleted, &notes,
		)
		if err != nil {
			return nil, err
		}
		p.Duration = time.Duration(durationS) * time.Second
		if notes.Valid {
			p.Notes = notes.String
		}
		if p.POI, err = decodePOI(poi); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *Store) UpdateBreakPoint(ctx context.Context, p *BreakPoint) error {
	poi, err := encodePOI(p.POI)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE break_points
        SET poi = $2, is_completed = $3, notes = $4
        WHERE id = $1`,
		string(p.ID), poi, p.IsCompleted, p.Notes,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
