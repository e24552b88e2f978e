// README: Route handlers for create/list/activate/favorite/delete.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"routemind/internal/modules/route"
	"routemind/internal/modules/session"
	"routemind/internal/types"
)

type RouteHandler struct {
	routes   *route.Service
	sessions *session.Service
}

func NewRouteHandler(routes *route.Service, sessions *session.Service) *RouteHandler {
	return &RouteHandler{routes: routes, sessions: sessions}
}

type pointJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func toPointJSON(p types.Point) pointJSON   { return pointJSON{Lat: p.Lat, Lng: p.Lng} }
func fromPointJSON(p pointJSON) types.Point { return types.Point{Lat: p.Lat, Lng: p.Lng} }

type routeResponse struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Start           pointJSON   `json:"start"`
	End             pointJSON   `json:"end"`
	Waypoints       []pointJSON `json:"waypoints"`
	Polyline        string      `json:"polyline"`
	DurationSeconds int         `json:"duration_seconds"`
	DistanceMeters  float64     `json:"distance_meters"`
	CreatedAt       time.Time   `json:"created_at"`
	IsFavorite      bool        `json:"is_favorite"`
}

func toRouteResponse(r route.Route) routeResponse {
	wps := make([]pointJSON, 0, len(r.Waypoints))
	for _, w := range r.Waypoints {
		wps = append(wps, toPointJSON(w))
	}
	return routeResponse{
		ID:              string(r.ID),
		Name:            r.Name,
		Start:           toPointJSON(r.Start),
		End:             toPointJSON(r.End),
		Waypoints:       wps,
		Polyline:        r.Polyline,
		DurationSeconds: int(r.EstimatedDuration.Seconds()),
		DistanceMeters:  r.DistanceMeters,
		CreatedAt:       r.CreatedAt,
		IsFavorite:      r.IsFavorite,
	}
}

type createRouteReq struct {
	Name      string      `json:"name"`
	Start     pointJSON   `json:"start"`
	End       pointJSON   `json:"end"`
	Waypoints []pointJSON `json:"waypoints"`
}

func (h *RouteHandler) Create(c *gin.Context) {
	var req createRouteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeError(c, http.StatusBadRequest, "missing name")
		return
	}
	u, ok := h.sessions.CurrentUser().Get().Get()
	if !ok {
		writeError(c, http.StatusUnauthorized, "no authenticated user")
		return
	}
	wps := make([]types.Point, 0, len(req.Waypoints))
	for _, w := range req.Waypoints {
		wps = append(wps, fromPointJSON(w))
	}
	r, err := h.routes.Create(c.Request.Context(), u.ID, req.Name, fromPointJSON(req.Start), fromPointJSON(req.End), wps)
	if err != nil {
		writeRouteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRouteResponse(*r))
}

func (h *RouteHandler) List(c *gin.Context) {
	recent := h.routes.Recent()
	out := make([]routeResponse, 0, len(recent))
	for _, r := range recent {
		out = append(out, toRouteResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}

func (h *RouteHandler) Active(c *gin.Context) {
	r, ok := h.routes.ActiveRoute().Get().Get()
	if !ok {
		writeError(c, http.StatusNotFound, "no active route")
		return
	}
	c.JSON(http.StatusOK, toRouteResponse(r))
}

// findRecent resolves a path id against the in-memory recent list.
func (h *RouteHandler) findRecent(id types.ID) (route.Route, bool) {
	for _, r := range h.routes.Recent() {
		if r.ID == id {
			return r, true
		}
	}
	return route.Route{}, false
}

func (h *RouteHandler) Activate(c *gin.Context) {
	r, ok := h.findRecent(types.ID(c.Param("id")))
	if !ok {
		writeError(c, http.StatusNotFound, "route not found")
		return
	}
	h.routes.SetActive(r)
	c.JSON(http.StatusOK, toRouteResponse(r))
}

func (h *RouteHandler) Deactivate(c *gin.Context) {
	h.routes.ClearActive()
	c.Status(http.StatusNoContent)
}

func (h *RouteHandler) Delete(c *gin.Context) {
	if err := h.routes.Delete(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeRouteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RouteHandler) ToggleFavorite(c *gin.Context) {
	id := types.ID(c.Param("id"))
	if err := h.routes.ToggleFavorite(c.Request.Context(), id); err != nil {
		writeRouteError(c, err)
		return
	}
	r, ok := h.findRecent(id)
	if !ok {
		writeError(c, http.StatusNotFound, "route not found")
		return
	}
	c.JSON(http.StatusOK, toRouteResponse(r))
}
