package handlers

import (
	"net/http"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/models"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/repositories"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/session"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/me", h.GetProfile)
	g.PUT("/me", h.UpdateProfile)
	g.POST("/me/setup", h.CompleteSetup)
	g.GET("/:id", h.GetUser)
}

// GetProfile returns the signed-in user's profile.
func (h *UserHandler) GetProfile(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), sess.UserID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":          user,
		"setupComplete": user.SetupComplete(),
	})
}

// UpdateProfile merges the provided fields into the profile. Omitted fields
// keep their stored values; a new username must be free.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	fields := bson.M{}
	if req.Username != "" {
		taken, err := h.userRepository.UsernameTaken(ctx, req.Username, sess.UserID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if taken {
			return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
		}
		fields["username"] = req.Username
	}
	if req.Location != "" {
		fields["location"] = req.Location
	}
	if req.Bio != "" {
		fields["bio"] = req.Bio
	}
	if req.Phone != "" {
		fields["phone"] = req.Phone
	}
	if req.SocialHandle != "" {
		fields["socialHandle"] = req.SocialHandle
	}
	if len(fields) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No fields to update")
	}

	if err := h.userRepository.MergeProfile(ctx, sess.UserID, fields); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user, err := h.userRepository.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// CompleteSetup records the required profile fields that finish onboarding.
func (h *UserHandler) CompleteSetup(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	var req models.CompleteSetupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user.Location = req.Location
	user.Bio = req.Bio
	user.Phone = req.Phone
	user.SocialHandle = req.SocialHandle
	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":          user,
		"setupComplete": user.SetupComplete(),
	})
}

// GetUser returns another user's public profile by ID.
func (h *UserHandler) GetUser(c echo.Context) error {
	id := c.Param("id")

	user, err := h.userRepository.GetUserByID(c.Request().Context(), id)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":           user.ID,
		"username":     user.DisplayName(),
		"location":     user.Location,
		"bio":          user.Bio,
		"socialHandle": user.SocialHandle,
	})
}
