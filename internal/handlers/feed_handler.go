package handlers

import (
	"net/http"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/models"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/services"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/session"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles the social feed HTTP requests
type FeedHandler struct {
	feedService *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("", h.GetFeed)
}

// GetFeed returns the aggregated shared-events feed. The hideMine query
// parameter filters the caller's own events out of the view; the filter is
// presentational and never changes what was fetched.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	feed, err := h.feedService.Load(c.Request().Context(), sess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	hideMine := c.QueryParam("hideMine") == "true"
	events := feed.Visible(hideMine)
	if events == nil {
		events = []models.Event{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"events":      events,
		"friendCount": feed.FriendCount,
		"emptyState":  feed.Empty(hideMine),
	})
}
