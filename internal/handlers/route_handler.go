package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/models"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/repositories"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/services"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/session"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/pkg/ors"
	"github.com/labstack/echo/v4"
)

// RouteHandler handles routing workflow HTTP requests. Each user gets one
// planner instance, created on first use and kept for the life of the
// process.
type RouteHandler struct {
	client          services.RoutingClient
	eventRepository repositories.EventRepository

	// planners holds one entry per user who has touched the workflow. There
	// is no eviction; planner state is a handful of points and a result.
	// TODO: evict planners idle past a day if the user count ever warrants it.
	mu       sync.Mutex
	planners map[string]*services.RoutePlanner
}

// NewRouteHandler creates a new RouteHandler
func NewRouteHandler(client services.RoutingClient, eventRepo repositories.EventRepository) *RouteHandler {
	return &RouteHandler{
		client:          client,
		eventRepository: eventRepo,
		planners:        make(map[string]*services.RoutePlanner),
	}
}

// RegisterRouteRoutes registers routing workflow routes
func (h *RouteHandler) RegisterRouteRoutes(g *echo.Group) {
	g.GET("", h.Snapshot)
	g.GET("/search", h.SearchDestinations)
	g.POST("/destination", h.SetDestination)
	g.POST("/destination/event", h.SelectEvent)
	g.GET("/geocode", h.GeocodeCandidates)
	g.POST("/geocode/choose", h.ChooseCandidate)
	g.POST("/start", h.SetStart)
	g.POST("/start/device", h.UseDeviceFix)
	g.POST("/mode", h.SetMode)
	g.DELETE("/destination", h.ClearDestination)
}

func (h *RouteHandler) planner(userID string) *services.RoutePlanner {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.planners[userID]
	if !ok {
		p = services.NewRoutePlanner(h.client)
		h.planners[userID] = p
	}
	return p
}

func routeSession(c echo.Context) (*session.Session, error) {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}
	return sess, nil
}

// Snapshot returns the planner's current state.
func (h *RouteHandler) Snapshot(c echo.Context) error {
	sess, err := routeSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.planner(sess.UserID).Snapshot())
}

// SearchDestinations merges place autocomplete candidates with the user's own
// events matching the query, so either kind can be picked as a destination.
// A failed autocomplete call still returns the event matches, with a notice
// telling the client the place search failed.
func (h *RouteHandler) SearchDestinations(c echo.Context) error {
	sess, err := routeSession(c)
	if err != nil {
		return err
	}

	query := c.QueryParam("q")
	ctx := c.Request().Context()

	places, placesErr := h.planner(sess.UserID).Autocomplete(ctx, query)
	if placesErr != nil {
		log.Printf("Error searching for locations %q: %v", query, placesErr)
		places = nil
	}
	if places == nil {
		places = []ors.Place{}
	}

	events, err := h.eventRepository.GetEventsByOwner(ctx, sess.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	matches := services.SearchEvents(query, events)
	if matches == nil {
		matches = []models.Event{}
	}

	resp := echo.Map{
		"places": places,
		"events": matches,
	}
	if placesErr != nil {
		resp["placesError"] = "Error searching for locations."
	}
	return c.JSON(http.StatusOK, resp)
}

// SetDestinationRequest carries a resolved destination point.
type SetDestinationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
}

// SetDestination selects an explicit destination point and recomputes.
func (h *RouteHandler) SetDestination(c echo.Context) error {
	sess, err := routeSession(c)
	if err != nil {
		return err
	}

	var req SetDestinationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	p := h.planner(sess.UserID)
	if err := p.SetDestination(c.Request().Context(), models.Point{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Label:     req.Label,
	}); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p.Snapshot())
}

// SelectEventRequest names the event to route to.
type SelectEventRequest struct {
	EventID string `json:"eventId"`
}

// SelectEvent picks one of the user's events as the destination. An event
// with no stored coordinates moves the planner into the re-geocode sub-flow;
// the response flags that candidates must be fetched and chosen.
func (h *RouteHandler) SelectEvent(c echo.Context) error {
	sess, err := routeSession(c)
	if err != nil {
		return err
	}

	var req SelectEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	ctx := c.Request().Context()
	event, err := h.eventRepository.GetEventByID(ctx, req.EventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Event not found")
	}

	p := h.planner(sess.UserID)
	selectErr := p.SelectEvent(ctx, event)
	if selectErr != nil && !errors.Is(selectErr, services.ErrGeocodeRequired) {
		return echo.NewHTTPError(http.StatusBadRequest, selectErr.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"snapshot":        p.Snapshot(),
		"geocodeRequired": errors.Is(selectErr, services.ErrGeocodeRequired),
	})
}

// GeocodeCandidates returns geocode candidates for the pending event's stored
// location text, or for explicit query text.
func (h *RouteHandler) GeocodeCandidates(c echo.Context) error {
	sess, err := routeSession(c)
	if err != nil {
		return err
	}

	candidates, err := h.planner(sess.UserID).GeocodeCandidates(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		if errors.Is(err, services.ErrDestinationNotResolved) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if candidates == nil {
		candidates = []ors.Place{}
	}
	return c.JSON(http.StatusOK, candidates)
}

// ChooseCandidateRequest carries the user's explicit candidate pick.
type ChooseCandidateRequest struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ChooseCandidate completes the re-geocode sub-flow.
func (h *RouteHandler) ChooseCandidate(c echo.Context) error {
	sess, err := routeSession(c)
	if err != nil {
		return err
	}

	var req ChooseCandidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	p := h.planner(sess.UserID)
	if err := p.ChooseCandidate(c.Request().Context(), ors.Place{
		Label:     req.Label,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p.Snapshot())
}

// SetStartRequest carries an explicit start point.
type SetStartRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
}

// SetStart selects an explicit start location.
func (h *RouteHandler) SetStart(c echo.Context) error {
	sess, err := routeSession(c)
	if err != nil {
		return err
	}

	var req SetStartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	p := h.planner(sess.UserID)
	p.SetStart(c.Request().Context(), models.Point{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Label:     req.Label,
	})
	return c.JSON(http.StatusOK, p.Snapshot())
}

// DeviceFixRequest reports the device's location attempt: whether permission
// was granted and, if a fix was obtained, its coordinates.
type DeviceFixRequest struct {
	Granted   bool     `json:"granted"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// clientFix adapts a reported device fix to the planner's location source.
type clientFix struct {
	req DeviceFixRequest
}

func (f clientFix) Current(ctx context.Context) (float64, float64, error) {
	if !f.req.Granted {
		return 0, 0, services.ErrPermissionDenied
	}
	if f.req.Latitude == nil || f.req.Longitude == nil {
		return 0, 0, services.ErrLocationUnavailable
	}
	return *f.req.Latitude, *f.req.Longitude, nil
}

// UseDeviceFix sets the start from the reported device location. Denied
// permission or a missing fix falls back to the default start; the response
// carries the warning to surface while the workflow continues.
func (h *RouteHandler) UseDeviceFix(c echo.Context) error {
	sess, err := routeSession(c)
	if err != nil {
		return err
	}

	var req DeviceFixRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	p := h.planner(sess.UserID)
	fixErr := p.UseDeviceFix(c.Request().Context(), clientFix{req: req})

	resp := echo.Map{"snapshot": p.Snapshot()}
	if fixErr != nil {
		resp["warning"] = fixErr.Error()
		resp["warningKind"] = services.ClassifyRouteError(fixErr)
	}
	return c.JSON(http.StatusOK, resp)
}

// SetModeRequest names the travel mode to switch to.
type SetModeRequest struct {
	Mode string `json:"mode"`
}

// SetMode switches the travel mode. The transit placeholder is refused with
// an explicit notice and the previous mode stays selected.
func (h *RouteHandler) SetMode(c echo.Context) error {
	sess, err := routeSession(c)
	if err != nil {
		return err
	}

	var req SetModeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	p := h.planner(sess.UserID)
	if err := p.SetMode(c.Request().Context(), models.TravelMode(req.Mode)); err != nil {
		if errors.Is(err, services.ErrTransitNotImplemented) {
			return c.JSON(http.StatusOK, echo.Map{
				"snapshot": p.Snapshot(),
				"notice":   err.Error(),
			})
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p.Snapshot())
}

// ClearDestination drops the destination and any computed route.
func (h *RouteHandler) ClearDestination(c echo.Context) error {
	sess, err := routeSession(c)
	if err != nil {
		return err
	}

	p := h.planner(sess.UserID)
	p.ClearDestination()
	return c.JSON(http.StatusOK, p.Snapshot())
}
