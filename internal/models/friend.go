package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendEdge is a one-directional relation from an owner to a target user.
// An edge A→B never implies B→A. The (ownerId, userId) pair is unique, so a
// user holds at most one edge per target.
type FriendEdge struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID string             `json:"ownerId" bson:"ownerId"`
	UserID  string             `json:"userId" bson:"userId"`
	AddedAt time.Time          `json:"addedAt" bson:"addedAt"`
}

// Friend is a resolved friend entry: the edge plus the target's current
// username looked up at load time.
type Friend struct {
	EdgeID   string `json:"id"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type AddFriendRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// DirectoryUser is a searchable entry in the user directory.
type DirectoryUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
