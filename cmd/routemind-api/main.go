// README: Entry point; loads config, wires the trip-session services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"routemind/internal/ai"
	"routemind/internal/config"
	httptransport "routemind/internal/http"
	"routemind/internal/infra"
	"routemind/internal/maps"
	"routemind/internal/modules/breaks"
	"routemind/internal/modules/exercise"
	"routemind/internal/modules/route"
	"routemind/internal/modules/session"
	"routemind/internal/notify"
	"routemind/internal/predict"
	"routemind/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.FirebaseProjectID == "" {
		log.Fatal("FIREBASE_PROJECT_ID is required")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentials)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}

	if cfg.MapsAPIKey == "" {
		log.Fatal("MAPS_API_KEY is required")
	}
	routing, err := maps.NewRouteService(cfg.MapsAPIKey)
	if err != nil {
		log.Fatalf("maps routing init: %v", err)
	}
	places, err := maps.NewPlacesService(cfg.MapsAPIKey)
	if err != nil {
		log.Fatalf("maps places init: %v", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.RedisAddr)

	catalog := exercise.DefaultCatalog()
	model := predict.NewModel(catalog)
	var predictor breaks.IntervalPredictor = model
	if cfg.GeminiAPIKey != "" {
		advisor, err := ai.NewGeminiAdvisor(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("gemini init: %v", err)
		}
		defer advisor.Close()
		predictor = predict.NewAIModel(model, advisor)
	}

	sessionSvc := session.NewService(session.NewStore(dbPool), verifier)
	routeSvc := route.NewService(route.NewStore(dbPool), routing, sessionSvc.CurrentUser())
	defer routeSvc.Close()

	breakProfile := func() (breaks.Profile, bool) {
		u, ok := sessionSvc.CurrentUser().Get().Get()
		if !ok {
			return breaks.Profile{}, false
		}
		return breaks.Profile{
			PreferredInterval: u.Preferences.PreferredBreakInterval,
			BreakReminders:    u.Preferences.Notifications.BreakReminders,
			POICategories:     u.Preferences.POI.PreferredCategories,
		}, true
	}
	breakSvc := breaks.NewService(
		cfg.Breaks,
		breaks.NewStore(dbPool),
		predictor,
		notify.NewRedisSink(redisClient),
		places,
		routing,
		breakProfile,
		routeSvc.ActiveRoute(),
	)
	defer breakSvc.Close()

	exerciseProfile := func() (types.ID, exercise.Preferences, bool) {
		u, ok := sessionSvc.CurrentUser().Get().Get()
		if !ok {
			return "", exercise.Preferences{}, false
		}
		return u.ID, u.Preferences.Exercise, true
	}
	exerciseSvc := exercise.NewService(exercise.NewStore(dbPool), model, catalog, exerciseProfile, breakSvc.Upcoming())
	defer exerciseSvc.Close()

	handler := httptransport.NewRouter(sessionSvc, routeSvc, breakSvc, exerciseSvc, verifier)
	server := &http.Server{Addr: cfg.ServerAddr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s", cfg.ServerAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
