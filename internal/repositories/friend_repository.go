package repositories

import (
	"context"
	"time"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FriendRepository defines the interface for friend-edge data operations.
// Edges are one-directional: an edge from owner to target never implies the
// reverse edge.
type FriendRepository interface {
	GetFriendEdges(ctx context.Context, ownerID string) ([]models.FriendEdge, error)
	AddFriend(ctx context.Context, ownerID, targetUserID string) error
	RemoveFriend(ctx context.Context, ownerID, targetUserID string) error
}

// MongoFriendRepository implements FriendRepository for MongoDB
type MongoFriendRepository struct {
	collection *mongo.Collection
}

// NewMongoFriendRepository creates a new MongoFriendRepository and installs
// the unique (ownerId, userId) index that holds the one-edge-per-pair
// invariant.
func NewMongoFriendRepository(ctx context.Context, db *mongo.Database) (*MongoFriendRepository, error) {
	collection := db.Collection("friends")
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return &MongoFriendRepository{collection: collection}, nil
}

// GetFriendEdges retrieves all outbound friend edges for the owner
func (r *MongoFriendRepository) GetFriendEdges(ctx context.Context, ownerID string) ([]models.FriendEdge, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var edges []models.FriendEdge
	if err = cursor.All(ctx, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}

// AddFriend writes the edge owner→target. Re-adding an existing target is a
// no-op rather than a duplicate, keyed on the (owner, target) pair.
func (r *MongoFriendRepository) AddFriend(ctx context.Context, ownerID, targetUserID string) error {
	filter := bson.M{"ownerId": ownerID, "userId": targetUserID}
	update := bson.M{"$setOnInsert": bson.M{
		"ownerId": ownerID,
		"userId":  targetUserID,
		"addedAt": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// RemoveFriend deletes the edge owner→target if present
func (r *MongoFriendRepository) RemoveFriend(ctx context.Context, ownerID, targetUserID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"ownerId": ownerID, "userId": targetUserID})
	return err
}
