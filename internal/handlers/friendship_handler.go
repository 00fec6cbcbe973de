package handlers

import (
	"net/http"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/models"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/services"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/session"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// FriendshipHandler handles friend-related HTTP requests
type FriendshipHandler struct {
	friendService *services.FriendService
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendService *services.FriendService) *FriendshipHandler {
	return &FriendshipHandler{friendService: friendService}
}

// RegisterFriendshipRoutes registers friend-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.GET("", h.ListFriends)
	g.GET("/search", h.SearchUsers)
	g.POST("", h.AddFriend)
	g.DELETE("/:userId", h.RemoveFriend)
	g.GET("/:userId", h.FriendInfo)
}

// ListFriends returns the session user's friends with usernames resolved.
func (h *FriendshipHandler) ListFriends(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	friends, err := h.friendService.LoadFriends(c.Request().Context(), sess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, friends)
}

// SearchUsers fuzzy-matches the query over the user directory, excluding the
// session user and anyone already friended. An empty query returns no
// matches.
func (h *FriendshipHandler) SearchUsers(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	ctx := c.Request().Context()
	candidates, err := h.friendService.Directory(ctx, sess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	friends, err := h.friendService.LoadFriends(ctx, sess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	results := h.friendService.SearchUsers(c.QueryParam("q"), candidates, friends)
	if results == nil {
		results = []models.DirectoryUser{}
	}
	return c.JSON(http.StatusOK, results)
}

// AddFriend adds a one-directional friend edge and returns the refreshed
// friend list.
func (h *FriendshipHandler) AddFriend(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	var req models.AddFriendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.UserID == sess.UserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot add yourself as a friend")
	}

	friends, err := h.friendService.AddFriend(c.Request().Context(), sess, req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, friends)
}

// RemoveFriend deletes the session user's edge toward the target and returns
// the refreshed friend list.
func (h *FriendshipHandler) RemoveFriend(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	friends, err := h.friendService.RemoveFriend(c.Request().Context(), sess, c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, friends)
}

// FriendInfo returns a friend's profile details.
func (h *FriendshipHandler) FriendInfo(c echo.Context) error {
	user, err := h.friendService.FriendInfo(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":           user.ID,
		"username":     user.DisplayName(),
		"location":     user.Location,
		"bio":          user.Bio,
		"socialHandle": user.SocialHandle,
	})
}
