package handlers

import (
	"net/http"
	"os"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/models"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/repositories"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/session"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/pkg/firebase"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   *auth.Client
	identity       *firebase.IdentityClient
	bootstrapper   *session.Bootstrapper
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuthClient *auth.Client, identity *firebase.IdentityClient, bootstrapper *session.Bootstrapper) *AuthHandler {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "supersecretjwtkey"
	}
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuthClient,
		identity:       identity,
		bootstrapper:   bootstrapper,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/signin", h.SignIn)
	g.POST("/bootstrap", h.Bootstrap)
	g.POST("/signout", h.SignOut)
	g.POST("/password-reset", h.PasswordReset)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Register creates the provider account and the matching user document. The
// profile stays incomplete until the setup step runs.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	params := (&auth.UserToCreate{}).Email(req.Email).Password(req.Password).DisplayName(req.Username)
	record, err := h.firebaseAuth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return echo.NewHTTPError(http.StatusConflict, "Email is already in use")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Registration failed")
	}

	user := &models.User{
		ID:       record.UID,
		Username: req.Username,
		Email:    req.Email,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user":          user,
		"setupComplete": false,
	})
}

// SignIn authenticates with email and password, applies the remember-me
// policy for the calling device, and issues a local JWT.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// A device opting into remember-me without an ID gets one minted here;
	// the client persists it for later bootstraps.
	if req.RememberMe && req.DeviceID == "" {
		req.DeviceID = uuid.NewString()
	}

	ctx := c.Request().Context()
	sess, err := h.bootstrapper.SignIn(ctx, req.DeviceID, req.Email, req.Password, req.RememberMe)
	if err != nil {
		// Wrong credentials get one generic message and no retry.
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.generateJWT(sess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	setupComplete := false
	if user, err := h.userRepository.GetUserByID(ctx, sess.UserID); err == nil {
		setupComplete = user.SetupComplete()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":         token,
		"deviceId":      req.DeviceID,
		"setupComplete": setupComplete,
	})
}

// BootstrapRequest identifies the device and optionally carries a provider
// ID token proving a live session.
type BootstrapRequest struct {
	DeviceID string `json:"deviceId" validate:"required"`
	IDToken  string `json:"idToken,omitempty"`
}

// Bootstrap resolves launch-time authentication state: a live provider
// session wins, then restored remember-me credentials, else unauthenticated.
func (h *AuthHandler) Bootstrap(c echo.Context) error {
	var req BootstrapRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	var live *session.Session
	if req.IDToken != "" {
		if token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken); err == nil {
			email, _ := token.Claims["email"].(string)
			live = &session.Session{UserID: token.UID, Email: email}
		}
	}

	result, err := h.bootstrapper.Bootstrap(ctx, req.DeviceID, live)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := echo.Map{"state": result.State.String()}
	if result.Session != nil {
		token, err := h.generateJWT(result.Session)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
		}
		resp["token"] = token
		resp["remembered"] = result.Session.Remembered
	}
	if !result.RememberExpiresAt.IsZero() {
		resp["rememberExpiresAt"] = result.RememberExpiresAt.Unix()
		resp["rememberDaysLeft"] = result.RememberDaysLeft(time.Now())
	}
	return c.JSON(http.StatusOK, resp)
}

// SignOutRequest names the device whose stored credentials are cleared.
type SignOutRequest struct {
	DeviceID string `json:"deviceId,omitempty"`
}

// SignOut clears the device's remember-me credentials. The client discards
// its tokens; nothing stays stored for a signed-out user.
func (h *AuthHandler) SignOut(c echo.Context) error {
	var req SignOutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	if err := h.bootstrapper.SignOut(c.Request().Context(), req.DeviceID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Sign out failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// PasswordReset asks the provider to send a password-reset email.
func (h *AuthHandler) PasswordReset(c echo.Context) error {
	var req models.PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.identity.SendPasswordResetEmail(c.Request().Context(), req.Email); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send password reset email")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset email sent"})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin handles Firebase ID token verification and issues a local
// JWT, creating the user document on first login.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)

	user, err := h.userRepository.GetUserByID(ctx, token.UID)
	if err != nil {
		if err != repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
		}
		user = &models.User{
			ID:       token.UID,
			Username: name,
			Email:    email,
		}
		if err := h.userRepository.CreateUser(ctx, user); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
		}
	}

	sess := &session.Session{UserID: user.ID, Email: user.Email}
	localJWT, err := h.generateJWT(sess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": localJWT})
}

// generateJWT generates a JWT token for a given session
func (h *AuthHandler) generateJWT(sess *session.Session) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: sess.UserID,
		Email:  sess.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)), // Token expires in 72 hours
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return "", err
	}
	return t, nil
}
