// README: Session handlers for sign-in/out, current user, and preferences.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"routemind/internal/modules/exercise"
	"routemind/internal/modules/session"
)

type SessionHandler struct {
	sessions *session.Service
}

func NewSessionHandler(svc *session.Service) *SessionHandler {
	return &SessionHandler{sessions: svc}
}

type userResponse struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	Name            string          `json:"name"`
	ProfileImageURL string          `json:"profile_image_url,omitempty"`
	Preferences     preferencesJSON `json:"preferences"`
	CreatedAt       time.Time       `json:"created_at"`
	LastLogin       time.Time       `json:"last_login"`
}

type preferencesJSON struct {
	PreferredBreakIntervalMinutes int                   `json:"preferred_break_interval_minutes"`
	Exercise                      exercisePrefsJSON     `json:"exercise"`
	POI                           poiPrefsJSON          `json:"poi"`
	Notifications                 notificationPrefsJSON `json:"notifications"`
}

type exercisePrefsJSON struct {
	PreferredCategories []string `json:"preferred_categories"`
	DifficultyLevel     string   `json:"difficulty_level"`
}

type poiPrefsJSON struct {
	PreferredCategories []string `json:"preferred_categories"`
}

type notificationPrefsJSON struct {
	BreakReminders    bool `json:"break_reminders"`
	ExerciseReminders bool `json:"exercise_reminders"`
	RouteUpdates      bool `json:"route_updates"`
}

func toUserResponse(u session.User) userResponse {
	return userResponse{
		ID:              string(u.ID),
		Email:           u.Email,
		Name:            u.Name,
		ProfileImageURL: u.ProfileImageURL,
		Preferences:     toPreferencesJSON(u.Preferences),
		CreatedAt:       u.CreatedAt,
		LastLogin:       u.LastLogin,
	}
}

func toPreferencesJSON(p session.Preferences) preferencesJSON {
	cats := make([]string, 0, len(p.Exercise.PreferredCategories))
	for _, c := range p.Exercise.PreferredCategories {
		cats = append(cats, string(c))
	}
	return preferencesJSON{
		PreferredBreakIntervalMinutes: int(p.PreferredBreakInterval.Minutes()),
		Exercise: exercisePrefsJSON{
			PreferredCategories: cats,
			DifficultyLevel:     string(p.Exercise.DifficultyLevel),
		},
		POI: poiPrefsJSON{PreferredCategories: p.POI.PreferredCategories},
		Notifications: notificationPrefsJSON{
			BreakReminders:    p.Notifications.BreakReminders,
			ExerciseReminders: p.Notifications.ExerciseReminders,
			RouteUpdates:      p.Notifications.RouteUpdates,
		},
	}
}

func fromPreferencesJSON(p preferencesJSON) session.Preferences {
	cats := make([]exercise.Category, 0, len(p.Exercise.PreferredCategories))
	for _, c := range p.Exercise.PreferredCategories {
		cats = append(cats, exercise.Category(c))
	}
	return session.Preferences{
		PreferredBreakInterval: time.Duration(p.PreferredBreakIntervalMinutes) * time.Minute,
		Exercise: exercise.Preferences{
			PreferredCategories: cats,
			DifficultyLevel:     exercise.Difficulty(p.Exercise.DifficultyLevel),
		},
		POI: session.POIPreferences{PreferredCategories: p.POI.PreferredCategories},
		Notifications: session.NotificationSettings{
			BreakReminders:    p.Notifications.BreakReminders,
			ExerciseReminders: p.Notifications.ExerciseReminders,
			RouteUpdates:      p.Notifications.RouteUpdates,
		},
	}
}

type signInReq struct {
	IDToken string `json:"id_token"`
}

func (h *SessionHandler) SignIn(c *gin.Context) {
	var req signInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.IDToken == "" {
		writeError(c, http.StatusBadRequest, "missing id_token")
		return
	}
	u, err := h.sessions.Authenticate(c.Request.Context(), req.IDToken)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(*u))
}

func (h *SessionHandler) SignOut(c *gin.Context) {
	h.sessions.SignOut()
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) Current(c *gin.Context) {
	u, ok := h.sessions.CurrentUser().Get().Get()
	if !ok {
		writeError(c, http.StatusNotFound, "no active session")
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *SessionHandler) UpdatePreferences(c *gin.Context) {
	var req preferencesJSON
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.PreferredBreakIntervalMinutes <= 0 {
		writeError(c, http.StatusBadRequest, "break interval must be positive")
		return
	}
	if err := h.sessions.UpdatePreferences(c.Request.Context(), fromPreferencesJSON(req)); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
