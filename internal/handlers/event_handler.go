package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/models"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/repositories"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/session"
	"github.com/labstack/echo/v4"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventRepository repositories.EventRepository
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventRepo repositories.EventRepository) *EventHandler {
	return &EventHandler{eventRepository: eventRepo}
}

// RegisterEventRoutes registers event-related routes
func (h *EventHandler) RegisterEventRoutes(g *echo.Group) {
	g.POST("", h.CreateEvent)
	g.GET("", h.ListEvents)
	g.GET("/calendar", h.Calendar)
	g.GET("/calendar/stream", h.CalendarStream)
	g.GET("/:id", h.GetEvent)
	g.PUT("/:id", h.UpdateEvent)
	g.DELETE("/:id", h.DeleteEvent)
}

// CreateEvent creates an event owned by the signed-in user.
func (h *EventHandler) CreateEvent(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	var req models.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	event := &models.Event{
		UserID:      sess.UserID,
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Color:       req.Color,
		IsShared:    req.IsShared,
	}
	if err := h.eventRepository.CreateEvent(c.Request().Context(), event); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, event)
}

// ListEvents returns the user's events split into the personal and social
// tabs of the manage view.
func (h *EventHandler) ListEvents(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	events, err := h.eventRepository.GetEventsByOwner(c.Request().Context(), sess.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	partition := models.EventPartition{Personal: []models.Event{}, Social: []models.Event{}}
	for _, e := range events {
		if e.IsShared {
			partition.Social = append(partition.Social, e)
		} else {
			partition.Personal = append(partition.Personal, e)
		}
	}
	return c.JSON(http.StatusOK, partition)
}

// Calendar returns a one-shot snapshot of the user's events grouped by date.
func (h *EventHandler) Calendar(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	events, err := h.eventRepository.GetEventsByOwner(c.Request().Context(), sess.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	grouped := models.GroupEventsByDate(events)
	return c.JSON(http.StatusOK, echo.Map{
		"events": grouped,
		"dates":  grouped.SortedDates(),
	})
}

// CalendarStream serves the live calendar as server-sent events. Each message
// is a full replacement snapshot grouped by date; the subscription is torn
// down when the client disconnects.
func (h *EventHandler) CalendarStream(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	sub, err := h.eventRepository.Subscribe(c.Request().Context(), sess.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer sub.Close()

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	for snapshot := range sub.Snapshots {
		payload, err := json.Marshal(snapshot)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", payload); err != nil {
			return nil
		}
		c.Response().Flush()
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (h *EventHandler) GetEvent(c echo.Context) error {
	event, err := h.eventRepository.GetEventByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Event not found")
	}
	return c.JSON(http.StatusOK, event)
}

// UpdateEvent updates an event the signed-in user owns.
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	ctx := c.Request().Context()
	existing, err := h.eventRepository.GetEventByID(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Event not found")
	}
	if existing.UserID != sess.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "Not your event")
	}

	var req models.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Date = req.Date
	existing.StartTime = req.StartTime
	existing.EndTime = req.EndTime
	existing.Location = req.Location
	existing.Latitude = req.Latitude
	existing.Longitude = req.Longitude
	existing.Color = req.Color
	existing.IsShared = req.IsShared

	if err := h.eventRepository.UpdateEvent(ctx, c.Param("id"), existing); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, existing)
}

// DeleteEvent deletes an event the signed-in user owns.
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	ctx := c.Request().Context()
	existing, err := h.eventRepository.GetEventByID(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Event not found")
	}
	if existing.UserID != sess.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "Not your event")
	}

	if err := h.eventRepository.DeleteEvent(ctx, c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
