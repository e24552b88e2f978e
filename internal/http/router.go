// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"routemind/internal/http/handlers"
	"routemind/internal/http/middleware"
	"routemind/internal/infra"
	"routemind/internal/modules/breaks"
	"routemind/internal/modules/exercise"
	"routemind/internal/modules/route"
	"routemind/internal/modules/session"
)

func NewRouter(
	sessionService *session.Service,
	routeService *route.Service,
	breakService *breaks.Service,
	exerciseService *exercise.Service,
	verifier infra.TokenVerifier,
) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	sessionHandler := handlers.NewSessionHandler(sessionService)
	// Sign-in carries its own ID token in the body, so it sits outside
	// the auth group.
	r.POST("/api/session/signin", sessionHandler.SignIn)

	api := r.Group("/api", middleware.Auth(verifier))

	api.POST("/session/signout", sessionHandler.SignOut)
	api.GET("/session", sessionHandler.Current)
	api.PUT("/session/preferences", sessionHandler.UpdatePreferences)

	routeHandler := handlers.NewRouteHandler(routeService, sessionService)
	api.GET("/routes", routeHandler.List)
	api.POST("/routes", routeHandler.Create)
	api.GET("/routes/active", routeHandler.Active)
	api.POST("/routes/deactivate", routeHandler.Deactivate)
	api.POST("/routes/:id/activate", routeHandler.Activate)
	api.POST("/routes/:id/favorite", routeHandler.ToggleFavorite)
	api.DELETE("/routes/:id", routeHandler.Delete)

	breakHandler := handlers.NewBreakHandler(breakService, routeService)
	api.GET("/breaks", breakHandler.List)
	api.GET("/breaks/upcoming", breakHandler.Upcoming)
	api.POST("/breaks/load", breakHandler.Load)
	api.POST("/breaks/:id/complete", breakHandler.Complete)
	api.GET("/breaks/:id/pois", breakHandler.NearbyPOIs)
	api.POST("/breaks/:id/poi", breakHandler.AttachPOI)

	exerciseHandler := handlers.NewExerciseHandler(exerciseService)
	api.GET("/exercises", exerciseHandler.Catalog)
	api.GET("/exercises/recommended", exerciseHandler.Recommended)
	api.GET("/exercises/history", exerciseHandler.History)
	api.POST("/exercises/pause", exerciseHandler.Pause)
	api.POST("/exercises/resume", exerciseHandler.Resume)
	api.POST("/exercises/stop", exerciseHandler.Stop)
	api.POST("/exercises/:id/start", exerciseHandler.Start)

	return r
}
