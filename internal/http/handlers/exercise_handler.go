// README: Exercise handlers for the catalog, session control, and history.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"routemind/internal/modules/exercise"
	"routemind/internal/types"
)

type ExerciseHandler struct {
	exercises *exercise.Service
}

func NewExerciseHandler(svc *exercise.Service) *ExerciseHandler {
	return &ExerciseHandler{exercises: svc}
}

type exerciseResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	DurationSeconds int      `json:"duration_seconds"`
	Difficulty      string   `json:"difficulty"`
	Category        string   `json:"category"`
	VideoRef        string   `json:"video_ref,omitempty"`
	ThumbnailRef    string   `json:"thumbnail_ref,omitempty"`
	Instructions    []string `json:"instructions"`
}

func toExerciseResponse(ex exercise.Exercise) exerciseResponse {
	return exerciseResponse{
		ID:              string(ex.ID),
		Name:            ex.Name,
		Description:     ex.Description,
		DurationSeconds: int(ex.Duration.Seconds()),
		Difficulty:      string(ex.Difficulty),
		Category:        string(ex.Category),
		VideoRef:        ex.VideoRef,
		ThumbnailRef:    ex.ThumbnailRef,
		Instructions:    ex.Instructions,
	}
}

type resultResponse struct {
	ID                   string    `json:"id"`
	ExerciseID           string    `json:"exercise_id"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	DurationSeconds      int       `json:"duration_seconds"`
	CompletionPercentage float64   `json:"completion_percentage"`
	Feedback             *string   `json:"feedback,omitempty"`
}

func toResultResponse(r exercise.Result) resultResponse {
	return resultResponse{
		ID:                   string(r.ID),
		ExerciseID:           string(r.ExerciseID),
		StartTime:            r.StartTime,
		EndTime:              r.EndTime,
		DurationSeconds:      int(r.Duration.Seconds()),
		CompletionPercentage: r.CompletionPercentage,
		Feedback:             r.Feedback,
	}
}

func (h *ExerciseHandler) Catalog(c *gin.Context) {
	catalog := h.exercises.Catalog()
	out := make([]exerciseResponse, 0, len(catalog))
	for _, ex := range catalog {
		out = append(out, toExerciseResponse(ex))
	}
	c.JSON(http.StatusOK, gin.H{"exercises": out})
}

func (h *ExerciseHandler) Recommended(c *gin.Context) {
	ex, ok := h.exercises.Recommended().Get().Get()
	if !ok {
		writeError(c, http.StatusNotFound, "no recommendation")
		return
	}
	c.JSON(http.StatusOK, toExerciseResponse(ex))
}

func (h *ExerciseHandler) Start(c *gin.Context) {
	ex, err := h.exercises.ByID(types.ID(c.Param("id")))
	if err != nil {
		writeExerciseError(c, err)
		return
	}
	if err := h.exercises.Start(ex); err != nil {
		writeExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.exercises.State(), "exercise": toExerciseResponse(ex)})
}

func (h *ExerciseHandler) Pause(c *gin.Context) {
	h.exercises.Pause()
	c.JSON(http.StatusOK, gin.H{"state": h.exercises.State()})
}

func (h *ExerciseHandler) Resume(c *gin.Context) {
	h.exercises.Resume()
	c.JSON(http.StatusOK, gin.H{"state": h.exercises.State()})
}

func (h *ExerciseHandler) Stop(c *gin.Context) {
	result, err := h.exercises.Stop(c.Request.Context())
	if err != nil {
		writeExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResultResponse(result))
}

func (h *ExerciseHandler) History(c *gin.Context) {
	if err := h.exercises.LoadHistory(c.Request.Context()); err != nil {
		writeExerciseError(c, err)
		return
	}
	history := h.exercises.History()
	out := make([]resultResponse, 0, len(history))
	for _, r := range history {
		out = append(out, toResultResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}
