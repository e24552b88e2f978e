// README: User store backed by PostgreSQL; preferences ride along as JSONB.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"routemind/internal/infra"
	"routemind/internal/types"
)

type Store struct {
	db infra.Querier
}

func NewStore(db infra.Querier) *Store {
	return &Store{db: db}
}

// prefsRecord is the JSONB shape of the preference bundle.
type prefsRecord struct {
	BreakIntervalSeconds int64    `json:"break_interval_seconds"`
	ExerciseCategories   []string `json:"exercise_categories"`
	ExerciseDifficulty   string   `json:"exercise_difficulty"`
	POICategories        []string `json:"poi_categories"`
	BreakReminders       bool     `json:"break_reminders"`
	ExerciseReminders    bool     `json:"exercise_reminders"`
	RouteUpdates         bool     `json:"route_updates"`
}

func encodePrefs(p Preferences) ([]byte, error) {
	rec := prefsRecord{
		BreakIntervalSeconds: int64(p.PreferredBreakInterval / time.Second),
		ExerciseDifficulty:   string(p.Exercise.DifficultyLevel),
		POICategories:        p.POI.PreferredCategories,
		BreakReminders:       p.Notifications.BreakReminders,
		ExerciseReminders:    p.Notifications.ExerciseReminders,
		RouteUpdates:         p.Notifications.RouteUpdates,
	}
	for _, c := range p.Exercise.PreferredCategories {
		rec.ExerciseCategories = append(rec.ExerciseCategories, string(c))
	}
	return json.Marshal(rec)
}

func decodePrefs(raw []byte) (Preferences, error) {
	var rec prefsRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Preferences{}, err
	}
	p := Preferences{
		PreferredBreakInterval: time.Duration(rec.BreakIntervalSeconds) * time.Second,
		Exercise: types.ExercisePreferences{
			DifficultyLevel: types.Difficulty(rec.ExerciseDifficulty),
		},
		POI: POIPreferences{PreferredCategories: rec.POICategories},
		Notifications: NotificationSettings{
			BreakReminders:    rec.BreakReminders,
			ExerciseReminders: rec.ExerciseReminders,
			RouteUpdates:      rec.RouteUpdates,
		},
	}
	for _, c := range rec.ExerciseCategories {
		p.Exercise.PreferredCategories = append(p.Exercise.PreferredCategories, types.ExerciseCategory(c))
	}
	return p, nil
}

func (s *Store) SaveUser(ctx context.Context, u *User) error {
	prefs, err := encodePrefs(u.Preferences)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO users (id, email, name, profile_image_url, preferences, created_at, last_login)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(u.ID), u.Email, u.Name, u.ProfileImageURL, prefs, u.CreatedAt, u.LastLogin,
	)
	return err
}

func (s *Store) FetchUser(ctx context.Context, id types.ID) (*User, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, email, name, profile_image_url, preferences, created_at, last_login
        FROM users WHERE id = $1`, string(id),
	)

	var u User
	var imageURL sql.NullString
	var prefs []byte
	err := row.Scan(&u.ID, &u.Email, &u.Name, &imageURL, &prefs, &u.CreatedAt, &u.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		u.ProfileImageURL = imageURL.String
	}
	if u.Preferences, err = decodePrefs(prefs); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *User) error {
	prefs, err := encodePrefs(u.Preferences)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE users
        SET email = $2, name = $3, profile_image_url = $4, preferences = $5, last_login = $6
        WHERE id = $1`,
		string(u.ID), u.Email, u.Name, u.ProfileImageURL, prefs, u.LastLogin,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
