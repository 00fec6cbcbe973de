package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is a user profile document. The document ID is the Firebase UID, so
// point reads by provider identity need no extra index.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	Location     string    `json:"location,omitempty" bson:"location,omitempty"`
	Bio          string    `json:"bio,omitempty" bson:"bio,omitempty"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	SocialHandle string    `json:"socialHandle,omitempty" bson:"socialHandle,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updatedAt"`
}

// SetupComplete reports whether the mandatory profile setup step has run.
// Login redirects to setup until a location is present.
func (u *User) SetupComplete() bool {
	return u.Location != ""
}

// DisplayName returns the username, or a short placeholder derived from the
// user ID when the profile has no username yet.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	id := u.ID
	if len(id) > 5 {
		id = id[:5]
	}
	return "User " + id
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type SignInRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
	DeviceID   string `json:"deviceId,omitempty"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CompleteSetupRequest carries the mandatory profile fields collected after
// registration. Location and bio block completion when missing.
type CompleteSetupRequest struct {
	Location     string `json:"location" validate:"required"`
	Bio          string `json:"bio" validate:"required"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,numeric"`
	SocialHandle string `json:"socialHandle,omitempty"`
}

type UpdateUserRequest struct {
	Username     string `json:"username,omitempty" validate:"omitempty,min=2,max=50"`
	Location     string `json:"location,omitempty"`
	Bio          string `json:"bio,omitempty"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,numeric"`
	SocialHandle string `json:"socialHandle,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
