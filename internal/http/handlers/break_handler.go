// README: Break-schedule handlers for listing, completion, and POI lookup.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"routemind/internal/modules/breaks"
	"routemind/internal/modules/route"
	"routemind/internal/types"
)

type BreakHandler struct {
	breaks *breaks.Service
	routes *route.Service
}

func NewBreakHandler(svc *breaks.Service, routes *route.Service) *BreakHandler {
	return &BreakHandler{breaks: svc, routes: routes}
}

type poiJSON struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Address  string    `json:"address"`
	Location pointJSON `json:"location"`
	Rating   float64   `json:"rating"`
}

func toPOIJSON(p breaks.POI) poiJSON {
	return poiJSON{
		ID:       string(p.ID),
		Name:     p.Name,
		Category: p.Category,
		Address:  p.Address,
		Location: toPointJSON(p.Location),
		Rating:   p.Rating,
	}
}

type breakPointResponse struct {
	ID              string    `json:"id"`
	RouteID         string    `json:"route_id"`
	Location        pointJSON `json:"location"`
	ScheduledTime   time.Time `json:"scheduled_time"`
	POI             *poiJSON  `json:"poi,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	IsCompleted     bool      `json:"is_completed"`
	Notes           string    `json:"notes"`
}

func toBreakPointResponse(bp breaks.BreakPoint) breakPointResponse {
	resp := breakPointResponse{
		ID:              string(bp.ID),
		RouteID:         string(bp.RouteID),
		Location:        toPointJSON(bp.Location),
		ScheduledTime:   bp.ScheduledTime,
		DurationSeconds: int(bp.Duration.Seconds()),
		IsCompleted:     bp.IsCompleted,
		Notes:           bp.Notes,
	}
	if bp.POI != nil {
		poi := toPOIJSON(*bp.POI)
		resp.POI = &poi
	}
	return resp
}

func (h *BreakHandler) List(c *gin.Context) {
	schedule := h.breaks.Schedule().Get()
	out := make([]breakPointResponse, 0, len(schedule))
	for _, bp := range schedule {
		out = append(out, toBreakPointResponse(bp))
	}
	c.JSON(http.StatusOK, gin.H{
		"state":  h.breaks.State(),
		"breaks": out,
	})
}

func (h *BreakHandler) Upcoming(c *gin.Context) {
	bp, ok := h.breaks.Upcoming().Get().Get()
	if !ok {
		writeError(c, http.StatusNotFound, "no upcoming break")
		return
	}
	c.JSON(http.StatusOK, toBreakPointResponse(bp))
}

func (h *BreakHandler) Complete(c *gin.Context) {
	if err := h.breaks.CompleteBreak(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeBreakError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type loadScheduleReq struct {
	RouteID string `json:"route_id"`
}

// Load restores a persisted schedule for one of the driver's recent
// routes, resuming monitoring if any break is still pending.
func (h *BreakHandler) Load(c *gin.Context) {
	var req loadScheduleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	var target *route.Route
	for _, r := range h.routes.Recent() {
		if r.ID == types.ID(req.RouteID) {
			target = &r
			break
		}
	}
	if target == nil {
		writeError(c, http.StatusNotFound, "route not found")
		return
	}
	if err := h.breaks.LoadSchedule(c.Request.Context(), *target); err != nil {
		writeBreakError(c, err)
		return
	}
	h.List(c)
}

func (h *BreakHandler) NearbyPOIs(c *gin.Context) {
	pois, err := h.breaks.FindNearbyPOIs(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeBreakError(c, err)
		return
	}
	out := make([]poiJSON, 0, len(pois))
	for _, p := range pois {
		out = append(out, toPOIJSON(p))
	}
	c.JSON(http.StatusOK, gin.H{"pois": out})
}

func (h *BreakHandler) AttachPOI(c *gin.Context) {
	var req poiJSON
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(c, http.StatusBadRequest, "missing poi fields")
		return
	}
	poi := breaks.POI{
		ID:       types.ID(req.ID),
		Name:     req.Name,
		Category: req.Category,
		Address:  req.Address,
		Location: fromPointJSON(req.Location),
		Rating:   req.Rating,
	}
	if err := h.breaks.AttachPOI(c.Request.Context(), types.ID(c.Param("id")), poi); err != nil {
		writeBreakError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
