// README: Route lifecycle manager; owns the recent list and the single active route.
package route

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"routemind/internal/maps"
	"routemind/internal/modules/session"
	"routemind/internal/observe"
	"routemind/internal/types"
)

var (
	ErrNoUser      = errors.New("no authenticated user")
	ErrNotFound    = errors.New("route not found")
	ErrRouting     = errors.New("route computation failed")
	ErrPersistence = errors.New("persistence failure")
)

// Routing computes drivable geometry for a start/end/waypoints triple.
// *maps.RouteService is the production implementation.
type Routing interface {
	Compute(ctx context.Context, start, end types.Point, waypoints []types.Point) (maps.Leg, error)
}

// Repository is the persistence collaborator for route records.
type Repository interface {
	SaveRoute(ctx context.Context, r *Route) error
	FetchRoutes(ctx context.Context, userID types.ID) ([]Route, error)
	DeleteRoute(ctx context.Context, id types.ID) error
	UpdateFavorite(ctx context.Context, id types.ID, favorite bool) error
}

type Service struct {
	mu      sync.Mutex
	repo    Repository
	routing Routing

	recent  []Route
	active  *observe.Value[types.Option[Route]]
	lastErr *observe.Value[error]

	// gen invalidates in-flight loads when the user changes.
	gen   int
	unsub func()
}

// NewService builds the manager and subscribes it to the current-user
// value: a sign-in triggers a background load of that driver's recent
// routes, a sign-out clears everything including the active route.
func NewService(repo Repository, routing Routing, users *observe.Value[types.Option[session.User]]) *Service {
	s := &Service{
		repo:    repo,
		routing: routing,
		active:  observe.NewValue(types.None[Route](), sameRoute),
		lastErr: observe.NewValue[error](nil, nil),
	}
	s.unsub = users.Subscribe(func(u types.Option[session.User]) {
		if user, ok := u.Get(); ok {
			s.loadRecentAsync(user.ID)
		} else {
			s.reset()
		}
	})
	return s
}

// sameRoute gates active-route republication on identity. The favorite
// flag can flip on the active route without rescheduling breaks.
func sameRoute(a, b types.Option[Route]) bool {
	ra, aok := a.Get()
	rb, bok := b.Get()
	if aok != bok {
		return false
	}
	if !aok {
		return true
	}
	return ra.ID == rb.ID
}

// Close detaches the manager from its upstream subscription.
func (s *Service) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}

// ActiveRoute exposes the 0-or-1 active route for subscription.
func (s *Service) ActiveRoute() *observe.Value[types.Option[Route]] {
	return s.active
}

// Err exposes the manager's last background failure.
func (s *Service) Err() *observe.Value[error] {
	return s.lastErr
}

// Recent returns a snapshot of the in-memory recent list, newest first.
func (s *Service) Recent() []Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Route, len(s.recent))
	copy(out, s.recent)
	return out
}

// Create computes geometry for the named trip, persists the route, and
// activates it. Nothing is retained when routing or persistence fails.
func (s *Service) Create(ctx context.Context, userID types.ID, name string, start, end types.Point, waypoints []types.Point) (*Route, error) {
	if userID == "" {
		return nil, ErrNoUser
	}

	leg, err := s.routing.Compute(ctx, start, end, waypoints)
	if err != nil {
		return nil, errors.Join(ErrRouting, err)
	}

	r := &Route{
		ID:                types.ID(uuid.NewString()),
		UserID:            userID,
		Name:              name,
		Start:             start,
		End:               end,
		Waypoints:         waypoints,
		Polyline:          leg.Polyline,
		EstimatedDuration: leg.Duration,
		DistanceMeters:    leg.DistanceMeters,
		CreatedAt:         time.Now(),
	}
	if err := s.repo.SaveRoute(ctx, r); err != nil {
		return nil, errors.Join(ErrPersistence, err)
	}

	s.mu.Lock()
	s.recent = append([]Route{*r}, s.recent...)
	s.mu.Unlock()
	s.active.Set(types.Some(*r))
	return r, nil
}

// SetActive marks the route as the one being driven. Setting the route
// that is already active is invisible to subscribers.
func (s *Service) SetActive(r Route) {
	s.active.Set(types.Some(r))
}

// ClearActive drops the active route; dependent schedules tear down.
func (s *Service) ClearActive() {
	s.active.Set(types.None[Route]())
}

// Delete removes the route from persistence and the recent list. If it
// was active, the active route is cleared as well.
func (s *Service) Delete(ctx context.Context, id types.ID) error {
	if err := s.repo.DeleteRoute(ctx, id); err != nil {
		return errors.Join(ErrPersistence, err)
	}

	s.mu.Lock()
	for i, r := range s.recent {
		if r.ID == id {
			s.recent = append(s.recent[:i], s.recent[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if active, ok := s.active.Get().Get(); ok && active.ID == id {
		s.active.Set(types.None[Route]())
	}
	return nil
}

// ToggleFavorite flips the flag in memory first, then persists. A failed
// write is logged and published as an error but the optimistic flip
// stays; the stored flag catches up on the next successful write.
func (s *Service) ToggleFavorite(ctx context.Context, id types.ID) error {
	s.mu.Lock()
	var flipped *Route
	for i := range s.recent {
		if s.recent[i].ID == id {
			s.recent[i].IsFavorite = !s.recent[i].IsFavorite
			r := s.recent[i]
			flipped = &r
			break
		}
	}
	s.mu.Unlock()

	if flipped == nil {
		return ErrNotFound
	}

	if active, ok := s.active.Get().Get(); ok && active.ID == id {
		active.IsFavorite = flipped.IsFavorite
		s.active.Set(types.Some(active))
	}

	if err := s.repo.UpdateFavorite(ctx, id, flipped.IsFavorite); err != nil {
		log.Printf("route: persist favorite for %s: %v", id, err)
		s.lastErr.Set(errors.Join(ErrPersistence, err))
	}
	return nil
}

func (s *Service) loadRecentAsync(userID types.ID) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		routes, err := s.repo.FetchRoutes(ctx, userID)
		s.mu.Lock()
		if gen != s.gen {
			// The user changed while we were loading; drop the result.
			s.mu.Unlock()
			return
		}
		if err != nil {
			s.mu.Unlock()
			log.Printf("route: load recent for %s: %v", userID, err)
			s.lastErr.Set(errors.Join(ErrPersistence, err))
			return
		}
		s.recent = routes
		s.mu.Unlock()
	}()
}

func (s *Service) reset() {
	s.mu.Lock()
	s.gen++
	s.recent = nil
	s.mu.Unlock()
	s.active.Set(types.None[Route]())
}
