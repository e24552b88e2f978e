// README: Break scheduler tests (schedule generation, monitoring, completion).
package breaks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"routemind/internal/config"
	"routemind/internal/maps"
	"routemind/internal/modules/route"
	"routemind/internal/observe"
	"routemind/internal/types"
)

var testBase = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu        sync.Mutex
	saved     []BreakPoint
	updated   []BreakPoint
	fetch     []BreakPoint
	saveErr   error
	fetchErr  error
	updateErr error
}

func (f *fakeRepo) SaveBreakPoint(_ context.Context, p *BreakPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, *p)
	return nil
}

func (f *fakeRepo) FetchBreakPoints(_ context.Context, _ types.ID) ([]BreakPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetch, f.fetchErr
}

func (f *fakeRepo) UpdateBreakPoint(_ context.Context, p *BreakPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, *p)
	return nil
}

func (f *fakeRepo) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type fixedPredictor struct {
	interval time.Duration
}

func (f fixedPredictor) PredictInterval(time.Duration, time.Duration, []BreakPoint) time.Duration {
	return f.interval
}

// recordingPredictor captures the arguments the scheduler passes in.
type recordingPredictor struct {
	mu        sync.Mutex
	interval  time.Duration
	preferred time.Duration
	history   []BreakPoint
	called    bool
}

func (r *recordingPredictor) PredictInterval(_ time.Duration, preferred time.Duration, history []BreakPoint) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preferred = preferred
	r.history = history
	r.called = true
	return r.interval
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []types.ID
}

func (f *fakeNotifier) Schedule(_ context.Context, userID types.ID, _ time.Time, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePlaces struct {
	places     []maps.Place
	err        error
	categories []string
}

func (f *fakePlaces) SearchNearby(_ context.Context, _ types.Point, _ uint, categories []string, _ int) ([]maps.Place, error) {
	f.categories = categories
	return f.places, f.err
}

type testEnv struct {
	svc      *Service
	repo     *fakeRepo
	notifier *fakeNotifier
	places   *fakePlaces
	routes   *observe.Value[types.Option[route.Route]]
	profile  Profile
	signedIn bool
}

func newTestEnv(interval time.Duration) *testEnv {
	env := &testEnv{
		repo:     &fakeRepo{},
		notifier: &fakeNotifier{},
		places:   &fakePlaces{},
		routes:   observe.NewValue(types.None[route.Route](), nil),
		profile: Profile{
			PreferredInterval: interval,
			BreakReminders:    true,
			POICategories:     []string{"Cafe"},
		},
		signedIn: true,
	}
	cfg := config.BreaksConfig{MonitorSeconds: 60, LeadMinutes: 15, DurationMinutes: 15}
	env.svc = NewService(
		cfg,
		env.repo,
		fixedPredictor{interval: interval},
		env.notifier,
		env.places,
		nil,
		func() (Profile, bool) { return env.profile, env.signedIn },
		env.routes,
	)
	env.svc.now = func() time.Time { return testBase }
	return env
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func testRoute(id types.ID, duration time.Duration) route.Route {
	return route.Route{
		ID:                id,
		UserID:            "driver1",
		Name:              "Coast trip",
		Start:             types.Point{Lat: 37.77, Lng: -122.42},
		End:               types.Point{Lat: 34.05, Lng: -118.24},
		EstimatedDuration: duration,
	}
}

func TestBuildSchedule(t *testing.T) {
	cases := []struct {
		name     string
		duration time.Duration
		interval time.Duration
		want     int
	}{
		{"four hours at two-hour interval", 4 * time.Hour, 2 * time.Hour, 2},
		{"seven hours at two-hour interval", 7 * time.Hour, 2 * time.Hour, 3},
		{"trip shorter than interval", 30 * time.Minute, 2 * time.Hour, 0},
		{"zero duration", 0, 2 * time.Hour, 0},
		{"zero interval", 4 * time.Hour, 0, 0},
	}
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			points := env.svc.buildSchedule(testRoute("r1", tc.duration), tc.interval, testBase)
			if len(points) != tc.want {
				t.Fatalf("got %d points, want %d", len(points), tc.want)
			}
			for k, p := range points {
				wantTime := testBase.Add(tc.interval * time.Duration(k+1))
				if !p.ScheduledTime.Equal(wantTime) {
					t.Errorf("point %d scheduled at %v, want %v", k, p.ScheduledTime, wantTime)
				}
				if p.Duration != 15*time.Minute {
					t.Errorf("point %d duration = %v, want 15m", k, p.Duration)
				}
			}
		})
	}
}

func TestBuildSchedule_Notes(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()

	points := env.svc.buildSchedule(testRoute("r1", 4*time.Hour), 2*time.Hour, testBase)
	if points[0].Notes != "Break #1" || points[1].Notes != "Break #2" {
		t.Errorf("unexpected notes: %q, %q", points[0].Notes, points[1].Notes)
	}
}

type fakeSampler struct{}

func (fakeSampler) PointAlong(_ string, fraction float64) (types.Point, bool) {
	return types.Point{Lat: fraction, Lng: fraction}, true
}

func TestBuildSchedule_SamplerPlacesPoints(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()
	env.svc.sampler = fakeSampler{}

	r := testRoute("r1", 4*time.Hour)
	r.Polyline = "gfo}EtohhU"
	points := env.svc.buildSchedule(r, 2*time.Hour, testBase)
	if points[0].Location.Lat != 0.5 || points[1].Location.Lat != 1.0 {
		t.Errorf("sampler fractions not applied: %+v, %+v", points[0].Location, points[1].Location)
	}
}

func TestBuildSchedule_NoSamplerFallsBackToStart(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()

	r := testRoute("r1", 4*time.Hour)
	points := env.svc.buildSchedule(r, 2*time.Hour, testBase)
	for _, p := range points {
		if p.Location != r.Start {
			t.Errorf("point location = %+v, want route start", p.Location)
		}
	}
}

func TestRouteActivation_SchedulesAndMonitors(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()

	env.routes.Set(types.Some(testRoute("r1", 4*time.Hour)))

	waitFor(t, func() bool { return len(env.svc.Schedule().Get()) == 2 })
	waitFor(t, func() bool { return env.svc.State() == StateMonitoring })
	if env.repo.savedCount() != 2 {
		t.Errorf("persisted %d points, want 2", env.repo.savedCount())
	}
}

func TestRouteActivation_FeedsProfileAndHistoryToPredictor(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()

	rec := &recordingPredictor{interval: 2 * time.Hour}
	env.svc.predictor = rec
	env.profile.PreferredInterval = 90 * time.Minute
	env.repo.fetch = []BreakPoint{{ID: "old1", RouteID: "r1", IsCompleted: true}}

	env.routes.Set(types.Some(testRoute("r1", 4*time.Hour)))
	waitFor(t, func() bool { return env.svc.State() == StateMonitoring })

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if !rec.called {
		t.Fatal("predictor never consulted")
	}
	if rec.preferred != 90*time.Minute {
		t.Errorf("preferred interval = %v, want 90m", rec.preferred)
	}
	if len(rec.history) != 1 || rec.history[0].ID != "old1" {
		t.Errorf("history = %+v, want the previously stored point", rec.history)
	}
}

func TestRouteDeactivation_ClearsSchedule(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()

	env.routes.Set(types.Some(testRoute("r1", 4*time.Hour)))
	waitFor(t, func() bool { return env.svc.State() == StateMonitoring })

	env.routes.Set(types.None[route.Route]())
	waitFor(t, func() bool { return env.svc.State() == StateIdle })
	if len(env.svc.Schedule().Get()) != 0 {
		t.Error("expected empty schedule after deactivation")
	}
	if env.svc.Upcoming().Get().IsSome() {
		t.Error("expected no upcoming break after deactivation")
	}
}

func TestRouteActivation_SameRouteIgnored(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()

	r := testRoute("r1", 4*time.Hour)
	env.svc.scheduleForRoute(r)
	waitFor(t, func() bool { return env.svc.State() == StateMonitoring })

	env.svc.scheduleForRoute(r)
	time.Sleep(20 * time.Millisecond)
	if env.repo.savedCount() != 2 {
		t.Errorf("re-publication re-persisted: %d points saved", env.repo.savedCount())
	}
}

func TestRouteActivation_PersistFailureAbortsToIdle(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()
	env.repo.saveErr = errors.New("db down")

	env.routes.Set(types.Some(testRoute("r1", 4*time.Hour)))

	waitFor(t, func() bool { return env.svc.Err().Get() != nil })
	if env.svc.State() != StateIdle {
		t.Errorf("state = %s, want idle", env.svc.State())
	}
	if !errors.Is(env.svc.Err().Get(), ErrPersistence) {
		t.Errorf("err = %v, want ErrPersistence", env.svc.Err().Get())
	}
	if len(env.svc.Schedule().Get()) != 0 {
		t.Error("expected no schedule after persist failure")
	}
}

// injectSchedule puts the service straight into Monitoring with a fixed
// schedule, bypassing the async compute path.
func (env *testEnv) injectSchedule(points []BreakPoint) {
	env.svc.mu.Lock()
	env.svc.state = StateMonitoring
	env.svc.routeID = "r1"
	env.svc.userID = "driver1"
	env.svc.schedule = points
	env.svc.notified = make(map[types.ID]struct{})
	env.svc.mu.Unlock()
}

func TestEvaluateUpcoming_LeadWindowAndSingleReminder(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()

	env.injectSchedule([]BreakPoint{
		{ID: "bp1", ScheduledTime: testBase.Add(10 * time.Minute)},
		{ID: "bp2", ScheduledTime: testBase.Add(2 * time.Hour)},
	})

	env.svc.evaluateUpcoming()
	up, ok := env.svc.Upcoming().Get().Get()
	if !ok || up.ID != "bp1" {
		t.Fatalf("upcoming = %+v, want bp1", up)
	}
	if env.notifier.count() != 1 {
		t.Fatalf("notifications = %d, want 1", env.notifier.count())
	}

	// A second tick must not re-notify the same point.
	env.svc.evaluateUpcoming()
	if env.notifier.count() != 1 {
		t.Errorf("notifications = %d after second tick, want 1", env.notifier.count())
	}
}

func TestEvaluateUpcoming_OutsideLeadWindow(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()

	env.injectSchedule([]BreakPoint{
		{ID: "bp1", ScheduledTime: testBase.Add(time.Hour)},
	})

	env.svc.evaluateUpcoming()
	if env.svc.Upcoming().Get().IsSome() {
		t.Error("expected no upcoming break outside the lead window")
	}
	if env.notifier.count() != 0 {
		t.Errorf("notifications = %d, want 0", env.notifier.count())
	}
}

func TestEvaluateUpcoming_RemindersDisabled(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()
	env.profile.BreakReminders = false

	env.injectSchedule([]BreakPoint{
		{ID: "bp1", ScheduledTime: testBase.Add(10 * time.Minute)},
	})

	env.svc.evaluateUpcoming()
	if !env.svc.Upcoming().Get().IsSome() {
		t.Error("upcoming break should publish even with reminders off")
	}
	if env.notifier.count() != 0 {
		t.Errorf("notifications = %d with reminders off, want 0", env.notifier.count())
	}
}

func TestCompleteBreak(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()

	env.injectSchedule([]BreakPoint{
		{ID: "bp1", ScheduledTime: testBase.Add(10 * time.Minute)},
		{ID: "bp2", ScheduledTime: testBase.Add(12 * time.Minute)},
	})
	ctx := context.Background()

	if err := env.svc.CompleteBreak(ctx, "bp1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	up, ok := env.svc.Upcoming().Get().Get()
	if !ok || up.ID != "bp2" {
		t.Errorf("upcoming after completion = %+v, want bp2", up)
	}
	if len(env.repo.updated) != 1 || !env.repo.updated[0].IsCompleted {
		t.Errorf("expected one completed update, got %+v", env.repo.updated)
	}

	// Completing again is a no-op.
	if err := env.svc.CompleteBreak(ctx, "bp1"); err != nil {
		t.Fatalf("repeat complete: %v", err)
	}
	if len(env.repo.updated) != 1 {
		t.Errorf("repeat completion wrote again: %d updates", len(env.repo.updated))
	}

	if err := env.svc.CompleteBreak(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("complete unknown = %v, want ErrNotFound", err)
	}
}

func TestCompleteBreak_PersistFailureKeepsFlip(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()
	env.repo.updateErr = errors.New("db down")

	env.injectSchedule([]BreakPoint{
		{ID: "bp1", ScheduledTime: testBase.Add(10 * time.Minute)},
	})

	if err := env.svc.CompleteBreak(context.Background(), "bp1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !env.svc.Schedule().Get()[0].IsCompleted {
		t.Error("in-memory completion should survive a failed persist")
	}
	if !errors.Is(env.svc.Err().Get(), ErrPersistence) {
		t.Errorf("err = %v, want ErrPersistence", env.svc.Err().Get())
	}
}

func TestLoadSchedule(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()
	env.repo.fetch = []BreakPoint{
		{ID: "bp1", RouteID: "r1", IsCompleted: true},
		{ID: "bp2", RouteID: "r1", ScheduledTime: testBase.Add(5 * time.Minute)},
	}

	if err := env.svc.LoadSchedule(context.Background(), testRoute("r1", 4*time.Hour)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if env.svc.State() != StateMonitoring {
		t.Errorf("state = %s, want monitoring while a point is pending", env.svc.State())
	}
	up, ok := env.svc.Upcoming().Get().Get()
	if !ok || up.ID != "bp2" {
		t.Errorf("upcoming = %+v, want bp2", up)
	}
}

func TestLoadSchedule_AllComplete(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()
	env.repo.fetch = []BreakPoint{
		{ID: "bp1", RouteID: "r1", IsCompleted: true},
	}

	if err := env.svc.LoadSchedule(context.Background(), testRoute("r1", 4*time.Hour)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if env.svc.State() != StateIdle {
		t.Errorf("state = %s, want idle with nothing pending", env.svc.State())
	}
}

func TestLoadSchedule_FetchFailure(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()
	env.repo.fetchErr = errors.New("db down")

	err := env.svc.LoadSchedule(context.Background(), testRoute("r1", 4*time.Hour))
	if !errors.Is(err, ErrPersistence) {
		t.Errorf("load = %v, want ErrPersistence", err)
	}
}

func TestFindNearbyPOIs(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()
	env.places.places = []maps.Place{
		{PlaceID: "p1", Name: "Blue Bottle", Category: "Cafe", Rating: 4.5},
	}

	env.injectSchedule([]BreakPoint{{ID: "bp1"}})

	pois, err := env.svc.FindNearbyPOIs(context.Background(), "bp1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(pois) != 1 || pois[0].Name != "Blue Bottle" {
		t.Fatalf("pois = %+v", pois)
	}
	if len(env.places.categories) != 1 || env.places.categories[0] != "Cafe" {
		t.Errorf("search categories = %v, want driver's POI preferences", env.places.categories)
	}

	if _, err := env.svc.FindNearbyPOIs(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("find unknown = %v, want ErrNotFound", err)
	}
}

func TestAttachPOI(t *testing.T) {
	env := newTestEnv(2 * time.Hour)
	defer env.svc.Close()

	env.injectSchedule([]BreakPoint{{ID: "bp1"}})

	poi := POI{ID: "p1", Name: "Blue Bottle", Category: "Cafe"}
	if err := env.svc.AttachPOI(context.Background(), "bp1", poi); err != nil {
		t.Fatalf("attach: %v", err)
	}
	got := env.svc.Schedule().Get()[0].POI
	if got == nil || got.Name != "Blue Bottle" {
		t.Errorf("attached poi = %+v", got)
	}
	if len(env.repo.updated) != 1 {
		t.Errorf("expected one persisted update, got %d", len(env.repo.updated))
	}

	if err := env.svc.AttachPOI(context.Background(), "missing", poi); !errors.Is(err, ErrNotFound) {
		t.Errorf("attach unknown = %v, want ErrNotFound", err)
	}
}
