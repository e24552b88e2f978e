// README: Shared handler utilities (JSON error shape, module error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"routemind/internal/modules/breaks"
	"routemind/internal/modules/exercise"
	"routemind/internal/modules/route"
	"routemind/internal/modules/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

func writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrAuthFailed):
		writeError(c, http.StatusUnauthorized, "authentication failed")
	case errors.Is(err, session.ErrNoUser):
		writeError(c, http.StatusUnauthorized, "no authenticated user")
	case errors.Is(err, session.ErrNotFound):
		writeError(c, http.StatusNotFound, "user not found")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeRouteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, route.ErrNoUser):
		writeError(c, http.StatusUnauthorized, "no authenticated user")
	case errors.Is(err, route.ErrNotFound):
		writeError(c, http.StatusNotFound, "route not found")
	case errors.Is(err, route.ErrRouting):
		writeError(c, http.StatusBadGateway, "route computation failed")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeBreakError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, breaks.ErrNotFound):
		writeError(c, http.StatusNotFound, "break point not found")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeExerciseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, exercise.ErrNotFound):
		writeError(c, http.StatusNotFound, "exercise not found")
	case errors.Is(err, exercise.ErrInvalidState):
		writeError(c, http.StatusConflict, "invalid exercise state")
	case errors.Is(err, exercise.ErrNoUser):
		writeError(c, http.StatusUnauthorized, "no authenticated user")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
