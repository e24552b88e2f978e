// README: Exercise-result store backed by PostgreSQL.
package exercise

import (
	"context"
	"database/sql"
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

func (s *Store) SaveResult(ctx context.Context, r *Result) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO exercise_results (
            id, user_id, exercise_id, start_time, end_time,
            duration_s, completion_pct, feedback
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8
        )`,
		string(r.ID), string(r.UserID), string(r.ExerciseID), r.StartTime, r.EndTime,
		int64(r.Duration/time.Second), r.CompletionPercentage, r.Feedback,
	)
	return err
}

func (s *Store) FetchHistory(ctx context.Context, userID types.ID) ([]Result, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, exercise_id, start_time, end_time,
               duration_s, completion_pct, feedback
        FROM exercise_results
        WHERE user_id = $1
        ORDER BY end_time DESC`, string(userID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var durationS int64
		var feedback sql.NullString
		err := rows.Scan(
			&r.ID, &r.UserID, &r.ExerciseID, &r.StartTime, &r.EndTime,
			&durationS, &r.CompletionPercentage, &feedback,
		)
		if err != nil {
			return nil, err
		}
		r.Duration = time.Duration(durationS) * time.Second
		if feedback.Valid {
			r.Feedback = &feedback.String
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
