package repositories

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository defines the interface for event data operations
type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetEventsByOwner(ctx context.Context, userID string) ([]models.Event, error)
	GetSharedByOwners(ctx context.Context, ownerIDs []string) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id string, event *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	Subscribe(ctx context.Context, userID string) (*EventSubscription, error)
}

// MongoEventRepository implements EventRepository for MongoDB
type MongoEventRepository struct {
	collection *mongo.Collection
}

// NewMongoEventRepository creates a new MongoEventRepository
func NewMongoEventRepository(db *mongo.Database) *MongoEventRepository {
	return &MongoEventRepository{collection: db.Collection("events")}
}

// CreateEvent creates a new event in MongoDB
func (r *MongoEventRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	event.ID = primitive.NewObjectID()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	_, err := r.collection.InsertOne(ctx, event)
	return err
}

// GetEventByID retrieves an event by ID from MongoDB
func (r *MongoEventRepository) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID format: %w", err)
	}

	var event models.Event
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("event not found")
		}
		return nil, err
	}
	return &event, nil
}

// GetEventsByOwner retrieves a user's events ordered by date ascending. Ties
// within a day keep arbitrary store order.
func (r *MongoEventRepository) GetEventsByOwner(ctx context.Context, userID string) ([]models.Event, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetSharedByOwners retrieves shared events owned by any of the given users
func (r *MongoEventRepository) GetSharedByOwners(ctx context.Context, ownerIDs []string) ([]models.Event, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{
		"userId":   bson.M{"$in": ownerIDs},
		"isShared": true,
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateEvent updates an existing event in MongoDB
func (r *MongoEventRepository) UpdateEvent(ctx context.Context, id string, event *models.Event) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid event ID format: %w", err)
	}

	event.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":        event.Name,
			"description": event.Description,
			"date":        event.Date,
			"startTime":   event.StartTime,
			"endTime":     event.EndTime,
			"location":    event.Location,
			"latitude":    event.Latitude,
			"longitude":   event.Longitude,
			"color":       event.Color,
			"isShared":    event.IsShared,
			"updatedAt":   event.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("event not found")
	}
	return nil
}

// DeleteEvent deletes an event by ID from MongoDB
func (r *MongoEventRepository) DeleteEvent(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid event ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("event not found")
	}
	return nil
}

// EventSubscription is a live view of one user's events. Every value on
// Snapshots is a complete replacement grouped by date, never a delta.
// Close tears the subscription down; the channel closes and nothing is
// delivered afterward.
type EventSubscription struct {
	Snapshots <-chan models.EventsByDate
	cancel    context.CancelFunc
}

// Close disposes of the subscription.
func (s *EventSubscription) Close() {
	s.cancel()
}

// changeStream is the slice of the driver's change stream the pump consumes.
type changeStream interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

// Subscribe opens a live query for the user's events. An initial snapshot is
// emitted immediately, then a fresh one after every change to the events
// collection, in the order the backend reports them.
func (r *MongoEventRepository) Subscribe(ctx context.Context, userID string) (*EventSubscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	stream, err := r.collection.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("opening event change stream: %w", err)
	}

	fetch := func(ctx context.Context) (models.EventsByDate, error) {
		events, err := r.GetEventsByOwner(ctx, userID)
		if err != nil {
			return nil, err
		}
		return models.GroupEventsByDate(events), nil
	}

	// Unbuffered: a snapshot is handed over only while a consumer is
	// receiving, so nothing sits queued for delivery after Close.
	snapshots := make(chan models.EventsByDate)
	go pumpSnapshots(ctx, stream, userID, fetch, snapshots)

	return &EventSubscription{Snapshots: snapshots, cancel: cancel}, nil
}

func pumpSnapshots(ctx context.Context, stream changeStream, userID string, fetch func(context.Context) (models.EventsByDate, error), snapshots chan<- models.EventsByDate) {
	defer close(snapshots)
	defer stream.Close(context.Background())

	if !emitSnapshot(ctx, userID, fetch, snapshots) {
		return
	}

	for stream.Next(ctx) {
		if !emitSnapshot(ctx, userID, fetch, snapshots) {
			return
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		log.Printf("Event change stream for user %s ended: %v", userID, err)
	}
}

// emitSnapshot re-runs the live query and delivers a full replacement
// snapshot. Returns false once the subscription context is done.
func emitSnapshot(ctx context.Context, userID string, fetch func(context.Context) (models.EventsByDate, error), snapshots chan<- models.EventsByDate) bool {
	snapshot, err := fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		log.Printf("Error refreshing event snapshot for user %s: %v", userID, err)
		return true
	}

	select {
	case snapshots <- snapshot:
		return true
	case <-ctx.Done():
		return false
	}
}
