// README: Exercise orchestrator; recommends for upcoming breaks and runs the session state machine.
package exercise

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"routemind/internal/modules/breaks"
	"routemind/internal/observe"
	"routemind/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid exercise state transition")
	ErrNoUser       = errors.New("no authenticated user")
	ErrNotFound     = errors.New("exercise not found")
	ErrPersistence  = errors.New("persistence failure")
)

// Recommender yields exercises fitting the driver and the break, best
// first. The catalog order is the tie-break; never random.
type Recommender interface {
	Recommend(prefs Preferences, breakDuration time.Duration) []Exercise
}

// Repository is the persistence collaborator for exercise results.
type Repository interface {
	SaveResult(ctx context.Context, r *Result) error
	FetchHistory(ctx context.Context, userID types.ID) ([]Result, error)
}

type Service struct {
	repo        Repository
	recommender Recommender
	catalog     []Exercise
	profile     func() (types.ID, Preferences, bool)

	mu          sync.Mutex
	state       State
	current     Exercise
	startedAt   time.Time
	pausedAt    time.Time
	pausedTotal time.Duration
	history     []Result

	recommended *observe.Value[types.Option[Exercise]]
	lastErr     *observe.Value[error]

	unsub func()
	now   func() time.Time
}

// NewService builds the orchestrator and subscribes it to the
// upcoming-break value. profile supplies the current driver's id and
// exercise preferences; it returns false when nobody is signed in.
func NewService(
	repo Repository,
	recommender Recommender,
	catalog []Exercise,
	profile func() (types.ID, Preferences, bool),
	upcoming *observe.Value[types.Option[breaks.BreakPoint]],
) *Service {
	s := &Service{
		repo:        repo,
		recommender: recommender,
		catalog:     catalog,
		profile:     profile,
		state:       StateIdle,
		recommended: observe.NewValue(types.None[Exercise](), sameExercise),
		lastErr:     observe.NewValue[error](nil, nil),
		now:         time.Now,
	}
	s.unsub = upcoming.Subscribe(s.onUpcomingBreak)
	return s
}

func sameExercise(a, b types.Option[Exercise]) bool {
	ea, aok := a.Get()
	eb, bok := b.Get()
	if aok != bok {
		return false
	}
	if !aok {
		return true
	}
	return ea.ID == eb.ID
}

// Close detaches the orchestrator from its upstream subscription.
func (s *Service) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}

// Recommended exposes the current recommendation for subscription.
func (s *Service) Recommended() *observe.Value[types.Option[Exercise]] {
	return s.recommended
}

// Err exposes the manager's last background failure.
func (s *Service) Err() *observe.Value[error] {
	return s.lastErr
}

// State reports the session state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the exercise in progress, if any.
func (s *Service) Current() (Exercise, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress && s.state != StatePaused {
		return Exercise{}, false
	}
	return s.current, true
}

// History returns a snapshot of completed results, most recent first.
func (s *Service) History() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Result, len(s.history))
	copy(out, s.history)
	return out
}

// Catalog returns the exercise library in recommendation order.
func (s *Service) Catalog() []Exercise {
	return s.catalog
}

// ByID looks up a catalog entry.
func (s *Service) ByID(id types.ID) (Exercise, error) {
	for _, ex := range s.catalog {
		if ex.ID == id {
			return ex, nil
		}
	}
	return Exercise{}, ErrNotFound
}

// onUpcomingBreak recomputes the recommendation when the upcoming break
// changes. A running session is never disturbed; only the recommendation
// value moves underneath it.
func (s *Service) onUpcomingBreak(bp types.Option[breaks.BreakPoint]) {
	point, ok := bp.Get()
	if !ok {
		s.mu.Lock()
		if s.state == StateRecommending {
			s.state = StateIdle
		}
		s.mu.Unlock()
		s.recommended.Set(types.None[Exercise]())
		return
	}

	_, prefs, signedIn := s.profile()
	if !signedIn {
		s.recommended.Set(types.None[Exercise]())
		return
	}

	s.mu.Lock()
	if s.state == StateIdle {
		s.state = StateRecommending
	}
	s.mu.Unlock()

	recs := s.recommender.Recommend(prefs, point.Duration)
	if len(recs) == 0 {
		s.recommended.Set(types.None[Exercise]())
		return
	}
	s.recommended.Set(types.Some(recs[0]))
}

// Start begins an exercise session. Rejected while another session is
// running; the running session is left untouched.
func (s *Service) Start(ex Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateInProgress || s.state == StatePaused {
		return ErrInvalidState
	}
	s.current = ex
	s.startedAt = s.now()
	s.pausedTotal = 0
	s.state = StateInProgress
	return nil
}

// Pause suspends the running session. A no-op from any other state.
func (s *Service) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return
	}
	s.pausedAt = s.now()
	s.state = StatePaused
}

// Resume continues a paused session. A no-op from any other state.
func (s *Service) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return
	}
	s.pausedTotal += s.now().Sub(s.pausedAt)
	s.state = StateInProgress
}

// Stop ends the session and records exactly one result. Completion is
// active time against the exercise's nominal duration, capped at 100.
// The result lands in history most-recent-first; a failed persist is
// published as an error but the in-memory record stays.
func (s *Service) Stop(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.state != StateInProgress && s.state != StatePaused {
		s.mu.Unlock()
		return Result{}, ErrInvalidState
	}

	now := s.now()
	pausedTotal := s.pausedTotal
	if s.state == StatePaused {
		pausedTotal += now.Sub(s.pausedAt)
	}
	active := now.Sub(s.startedAt) - pausedTotal
	if active < 0 {
		active = 0
	}

	completion := 100.0
	if s.current.Duration > 0 {
		completion = float64(active) / float64(s.current.Duration) * 100
		if completion > 100 {
			completion = 100
		}
		if completion < 0 {
			completion = 0
		}
	}

	userID, _, signedIn := s.profile()
	result := Result{
		ID:                   types.ID(uuid.NewString()),
		UserID:               userID,
		ExerciseID:           s.current.ID,
		StartTime:            s.startedAt,
		EndTime:              now,
		Duration:             active,
		CompletionPercentage: completion,
	}

	s.history = append([]Result{result}, s.history...)
	s.current = Exercise{}
	s.state = StateIdle
	s.mu.Unlock()

	if !signedIn {
		log.Printf("exercise: result %s recorded without a signed-in user", result.ID)
	}
	if err := s.repo.SaveResult(ctx, &result); err != nil {
		log.Printf("exercise: persist result %s: %v", result.ID, err)
		s.lastErr.Set(errors.Join(ErrPersistence, err))
	}
	return result, nil
}

// LoadHistory fetches the driver's persisted results, replacing the
// in-memory history. Failures surface as an error state, not a crash.
func (s *Service) LoadHistory(ctx context.Context) error {
	userID, _, signedIn := s.profile()
	if !signedIn {
		return ErrNoUser
	}

	results, err := s.repo.FetchHistory(ctx, userID)
	if err != nil {
		wrapped := errors.Join(ErrPersistence, err)
		s.lastErr.Set(wrapped)
		return wrapped
	}

	s.mu.Lock()
	s.history = results
	s.mu.Unlock()
	return nil
}
