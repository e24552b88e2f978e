// README: Break scheduler; derives the rest schedule for the active route and monitors it.
package breaks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"routemind/internal/config"
	"routemind/internal/maps"
	"routemind/internal/modules/route"
	"routemind/internal/observe"
	"routemind/internal/types"
)

var (
	ErrNotFound    = errors.New("break point not found")
	ErrPersistence = errors.New("persistence failure")
)

// Notification copy for break reminders.
const (
	reminderTitle = "Time for a break!"
	reminderBody  = "You've been driving for a while. Time to stretch and refresh."
)

// IntervalPredictor yields the gap between rest breaks for a trip.
// preferred is the driver's configured interval, zero when unset; history
// carries the route's previously persisted points.
type IntervalPredictor interface {
	PredictInterval(drivingDuration, preferred time.Duration, history []BreakPoint) time.Duration
}

// Repository is the persistence collaborator for break points.
type Repository interface {
	SaveBreakPoint(ctx context.Context, p *BreakPoint) error
	FetchBreakPoints(ctx context.Context, routeID types.ID) ([]BreakPoint, error)
	UpdateBreakPoint(ctx context.Context, p *BreakPoint) error
}

// NotificationSink delivers break reminders. Fire-and-forget: failures
// are logged, never propagated.
type NotificationSink interface {
	Schedule(ctx context.Context, userID types.ID, at time.Time, title, body string) error
}

// PlaceSearcher finds points of interest near a break location.
type PlaceSearcher interface {
	SearchNearby(ctx context.Context, location types.Point, radiusMeters uint, categories []string, limit int) ([]maps.Place, error)
}

// PositionSampler resolves a position a fraction of the way along a
// route polyline. Optional; without one, break points sit at the route
// start.
type PositionSampler interface {
	PointAlong(polyline string, fraction float64) (types.Point, bool)
}

const poiSearchRadiusMeters = 5000

type Service struct {
	cfg       config.BreaksConfig
	repo      Repository
	predictor IntervalPredictor
	notifier  NotificationSink
	places    PlaceSearcher
	sampler   PositionSampler
	profile   func() (Profile, bool)

	mu       sync.Mutex
	state    State
	routeID  types.ID
	userID   types.ID
	schedule []BreakPoint
	notified map[types.ID]struct{}
	gen      int

	scheduleVal *observe.Value[[]BreakPoint]
	upcoming    *observe.Value[types.Option[BreakPoint]]
	lastErr     *observe.Value[error]

	monitorCancel context.CancelFunc
	unsub         func()
	now           func() time.Time
}

// NewService builds the scheduler and subscribes it to the active-route
// value. sampler may be nil. profile supplies the current driver's
// break preferences; it returns false when nobody is signed in.
func NewService(
	cfg config.BreaksConfig,
	repo Repository,
	predictor IntervalPredictor,
	notifier NotificationSink,
	places PlaceSearcher,
	sampler PositionSampler,
	profile func() (Profile, bool),
	routes *observe.Value[types.Option[route.Route]],
) *Service {
	s := &Service{
		cfg:         cfg,
		repo:        repo,
		predictor:   predictor,
		notifier:    notifier,
		places:      places,
		sampler:     sampler,
		profile:     profile,
		state:       StateIdle,
		notified:    make(map[types.ID]struct{}),
		scheduleVal: observe.NewValue[[]BreakPoint](nil, nil),
		upcoming:    observe.NewValue(types.None[BreakPoint](), sameBreak),
		lastErr:     observe.NewValue[error](nil, nil),
		now:         time.Now,
	}
	s.unsub = routes.Subscribe(func(r types.Option[route.Route]) {
		if active, ok := r.Get(); ok {
			s.scheduleForRoute(active)
		} else {
			s.clear()
		}
	})
	return s
}

// sameBreak gates upcoming-break republication on point identity.
func sameBreak(a, b types.Option[BreakPoint]) bool {
	pa, aok := a.Get()
	pb, bok := b.Get()
	if aok != bok {
		return false
	}
	if !aok {
		return true
	}
	return pa.ID == pb.ID
}

// Close cancels the monitor and detaches from the upstream subscription.
func (s *Service) Close() {
	if s.unsub != nil {
		s.unsub()
	}
	s.clear()
}

// Schedule exposes the full break sequence for subscription.
func (s *Service) Schedule() *observe.Value[[]BreakPoint] {
	return s.scheduleVal
}

// Upcoming exposes the nearest due break for subscription.
func (s *Service) Upcoming() *observe.Value[types.Option[BreakPoint]] {
	return s.upcoming
}

// Err exposes the manager's last background failure.
func (s *Service) Err() *observe.Value[error] {
	return s.lastErr
}

// State reports the scheduler's lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// scheduleForRoute recomputes the break schedule for a newly activated
// route. Re-publication of the already-scheduled route is ignored.
func (s *Service) scheduleForRoute(r route.Route) {
	s.mu.Lock()
	if s.routeID == r.ID && s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	s.stopMonitorLocked()
	s.state = StateScheduling
	s.routeID = r.ID
	s.userID = r.UserID
	s.schedule = nil
	s.notified = make(map[types.ID]struct{})
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.scheduleVal.Set(nil)
	s.upcoming.Set(types.None[BreakPoint]())

	go s.computeAndPersist(r, gen)
}

func (s *Service) computeAndPersist(r route.Route, gen int) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var preferred time.Duration
	if profile, ok := s.profile(); ok {
		preferred = profile.PreferredInterval
	}
	// Prior points for this route (from an earlier activation) inform the
	// prediction; a fetch failure just means predicting without history.
	history, err := s.repo.FetchBreakPoints(ctx, r.ID)
	if err != nil {
		log.Printf("breaks: fetch history for route %s: %v", r.ID, err)
		history = nil
	}

	interval := s.predictor.PredictInterval(r.EstimatedDuration, preferred, history)
	points := s.buildSchedule(r, interval, s.now())

	for i := range points {
		if err := s.repo.SaveBreakPoint(ctx, &points[i]); err != nil {
			log.Printf("breaks: persist point %d for route %s: %v", i, r.ID, err)
			s.applyScheduleFailure(gen, errors.Join(ErrPersistence, err))
			return
		}
	}

	s.mu.Lock()
	if gen != s.gen {
		// The route changed (or cleared) while persisting; drop the batch.
		s.mu.Unlock()
		return
	}
	s.schedule = points
	s.state = StateMonitoring
	s.startMonitorLocked()
	s.mu.Unlock()

	s.scheduleVal.Set(points)
	s.evaluateUpcoming()
}

// buildSchedule generates floor(duration/interval) points stepped at
// now + interval*(k+1). A zero duration, a non-positive interval, or an
// interval beyond the trip duration all yield no points.
func (s *Service) buildSchedule(r route.Route, interval time.Duration, now time.Time) []BreakPoint {
	duration := r.EstimatedDuration
	if duration <= 0 || interval <= 0 {
		return nil
	}

	count := int(duration / interval)
	points := make([]BreakPoint, 0, count)
	for k := 0; k < count; k++ {
		offset := interval * time.Duration(k+1)
		location := r.Start
		if s.sampler != nil && r.Polyline != "" {
			fraction := float64(offset) / float64(duration)
			if p, ok := s.sampler.PointAlong(r.Polyline, fraction); ok {
				location = p
			}
		}
		points = append(points, BreakPoint{
			ID:            types.ID(uuid.NewString()),
			RouteID:       r.ID,
			Location:      location,
			ScheduledTime: now.Add(offset),
			Duration:      s.cfg.BreakDuration(),
			Notes:         fmt.Sprintf("Break #%d", k+1),
		})
	}
	return points
}

func (s *Service) applyScheduleFailure(gen int, err error) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state = StateIdle
	s.schedule = nil
	s.mu.Unlock()
	s.lastErr.Set(err)
}

// clear tears down all derived state: empty sequence published, monitor
// cancelled, state back to Idle.
func (s *Service) clear() {
	s.mu.Lock()
	s.stopMonitorLocked()
	s.state = StateIdle
	s.routeID = ""
	s.userID = ""
	s.schedule = nil
	s.notified = make(map[types.ID]struct{})
	s.gen++
	s.mu.Unlock()

	s.scheduleVal.Set(nil)
	s.upcoming.Set(types.None[BreakPoint]())
}

// startMonitorLocked replaces any running monitor with a fresh one.
// Callers hold s.mu.
func (s *Service) startMonitorLocked() {
	s.stopMonitorLocked()
	ctx, cancel := context.WithCancel(context.Background())
	s.monitorCancel = cancel
	go s.runMonitor(ctx)
}

func (s *Service) stopMonitorLocked() {
	if s.monitorCancel != nil {
		s.monitorCancel()
		s.monitorCancel = nil
	}
}

func (s *Service) runMonitor(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.MonitorPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evaluateUpcoming()
		}
	}
}

// evaluateUpcoming promotes the first incomplete point inside the lead
// window to "upcoming" and requests its reminder exactly once.
func (s *Service) evaluateUpcoming() {
	now := s.now()

	s.mu.Lock()
	var next *BreakPoint
	for i := range s.schedule {
		if !s.schedule[i].IsCompleted {
			next = &s.schedule[i]
			break
		}
	}
	if next == nil || next.ScheduledTime.Sub(now) > s.cfg.LeadWindow() {
		s.mu.Unlock()
		s.upcoming.Set(types.None[BreakPoint]())
		return
	}

	point := *next
	userID := s.userID
	_, alreadyNotified := s.notified[point.ID]
	if !alreadyNotified {
		s.notified[point.ID] = struct{}{}
	}
	s.mu.Unlock()

	s.upcoming.Set(types.Some(point))

	if alreadyNotified {
		return
	}
	profile, ok := s.profile()
	if ok && !profile.BreakReminders {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.notifier.Schedule(ctx, userID, point.ScheduledTime, reminderTitle, reminderBody); err != nil {
		log.Printf("breaks: schedule reminder for %s: %v", point.ID, err)
	}
}

// CompleteBreak flips the point's completion flag and re-evaluates the
// upcoming break without waiting for the next tick. Completing an
// already-completed point is a no-op.
func (s *Service) CompleteBreak(ctx context.Context, id types.ID) error {
	s.mu.Lock()
	var point *BreakPoint
	for i := range s.schedule {
		if s.schedule[i].ID == id {
			point = &s.schedule[i]
			break
		}
	}
	if point == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	if point.IsCompleted {
		s.mu.Unlock()
		return nil
	}
	point.IsCompleted = true
	updated := *point
	snapshot := append([]BreakPoint(nil), s.schedule...)
	s.mu.Unlock()

	if err := s.repo.UpdateBreakPoint(ctx, &updated); err != nil {
		// The in-memory flip stays; the stored flag catches up on the
		// next write. Same trade-off as the favorite toggle.
		log.Printf("breaks: persist completion for %s: %v", id, err)
		s.lastErr.Set(errors.Join(ErrPersistence, err))
	}

	s.scheduleVal.Set(snapshot)
	s.evaluateUpcoming()
	return nil
}

// LoadSchedule restores the persisted break points for a route on
// session resume and resumes monitoring while any remain incomplete.
func (s *Service) LoadSchedule(ctx context.Context, r route.Route) error {
	points, err := s.repo.FetchBreakPoints(ctx, r.ID)
	if err != nil {
		wrapped := errors.Join(ErrPersistence, err)
		s.lastErr.Set(wrapped)
		return wrapped
	}

	incomplete := false
	for _, p := range points {
		if !p.IsCompleted {
			incomplete = true
			break
		}
	}

	s.mu.Lock()
	s.stopMonitorLocked()
	s.routeID = r.ID
	s.userID = r.UserID
	s.schedule = points
	s.notified = make(map[types.ID]struct{})
	s.gen++
	if incomplete {
		s.state = StateMonitoring
		s.startMonitorLocked()
	} else {
		s.state = StateIdle
	}
	s.mu.Unlock()

	s.scheduleVal.Set(points)
	s.evaluateUpcoming()
	return nil
}

// FindNearbyPOIs searches for places around a break point, honoring the
// driver's POI category preferences.
func (s *Service) FindNearbyPOIs(ctx context.Context, id types.ID) ([]POI, error) {
	s.mu.Lock()
	var point *BreakPoint
	for i := range s.schedule {
		if s.schedule[i].ID == id {
			p := s.schedule[i]
			point = &p
			break
		}
	}
	s.mu.Unlock()

	if point == nil {
		return nil, ErrNotFound
	}

	var categories []string
	if profile, ok := s.profile(); ok {
		categories = profile.POICategories
	}
	places, err := s.places.SearchNearby(ctx, point.Location, poiSearchRadiusMeters, categories, 5)
	if err != nil {
		return nil, err
	}

	pois := make([]POI, len(places))
	for i, p := range places {
		pois[i] = POI{
			ID:       types.ID(p.PlaceID),
			Name:     p.Name,
			Category: p.Category,
			Address:  p.Address,
			Location: p.Location,
			Rating:   float64(p.Rating),
		}
	}
	maps.SortByDistance(pois, func(p POI) float64 {
		return maps.HaversineKm(point.Location, p.Location)
	})
	return pois, nil
}

// AttachPOI links a point of interest to a break point and persists it.
func (s *Service) AttachPOI(ctx context.Context, id types.ID, poi POI) error {
	s.mu.Lock()
	var updated *BreakPoint
	var snapshot []BreakPoint
	for i := range s.schedule {
		if s.schedule[i].ID == id {
			p := poi
			s.schedule[i].POI = &p
			u := s.schedule[i]
			updated = &u
			snapshot = append([]BreakPoint(nil), s.schedule...)
			break
		}
	}
	s.mu.Unlock()

	if updated == nil {
		return ErrNotFound
	}
	if err := s.repo.UpdateBreakPoint(ctx, updated); err != nil {
		wrapped := errors.Join(ErrPersistence, err)
		s.lastErr.Set(wrapped)
		return wrapped
	}
	s.scheduleVal.Set(snapshot)
	return nil
}
