package services

import (
	"context"
	"log"
	"sort"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/models"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/repositories"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/session"
)

// UnknownUser substitutes for an event owner whose profile cannot be
// resolved; the event stays in the feed.
const UnknownUser = "Unknown User"

// EmptyState explains why a feed has nothing to show.
type EmptyState string

const (
	// EmptyNone: the feed has events.
	EmptyNone EmptyState = ""
	// EmptyNoFriends: the user holds zero outbound friend edges.
	EmptyNoFriends EmptyState = "no_friends"
	// EmptyNoMatches: friends exist but nothing is currently shared.
	EmptyNoMatches EmptyState = "no_matches"
)

// Feed is one aggregation result: the complete fetched set plus the context
// needed to apply presentational filters without refetching.
type Feed struct {
	OwnerID     string
	Events      []models.Event
	FriendCount int
}

// Visible applies the hide-my-events view filter. The filter is purely
// presentational: the underlying Events slice is never mutated, so toggling
// hideMine off restores the exact pre-toggle list.
func (f *Feed) Visible(hideMine bool) []models.Event {
	if !hideMine {
		return f.Events
	}
	visible := make([]models.Event, 0, len(f.Events))
	for _, event := range f.Events {
		if event.UserID != f.OwnerID {
			visible = append(visible, event)
		}
	}
	return visible
}

// Empty reports the feed's empty-state kind for the given view, separating
// "no friends yet" from "friends exist but nothing matches".
func (f *Feed) Empty(hideMine bool) EmptyState {
	if len(f.Visible(hideMine)) > 0 {
		return EmptyNone
	}
	if f.FriendCount == 0 {
		return EmptyNoFriends
	}
	return EmptyNoMatches
}

// FeedService aggregates shared events from the session user and their
// outbound friends.
type FeedService struct {
	eventRepository  repositories.EventRepository
	friendRepository repositories.FriendRepository
	userRepository   repositories.UserRepository
}

// NewFeedService creates a new FeedService
func NewFeedService(eventRepo repositories.EventRepository, friendRepo repositories.FriendRepository, userRepo repositories.UserRepository) *FeedService {
	return &FeedService{
		eventRepository:  eventRepo,
		friendRepository: friendRepo,
		userRepository:   userRepo,
	}
}

// Load computes the id set {session user} ∪ {outbound edge targets}, fetches
// every shared event those users own, resolves each owner's display name
// (one point read per event, no cache), and sorts ascending by date with
// unparseable dates last.
func (s *FeedService) Load(ctx context.Context, sess *session.Session) (*Feed, error) {
	edges, err := s.friendRepository.GetFriendEdges(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	ownerIDs := make([]string, 0, len(edges)+1)
	ownerIDs = append(ownerIDs, sess.UserID)
	for _, edge := range edges {
		ownerIDs = append(ownerIDs, edge.UserID)
	}

	events, err := s.eventRepository.GetSharedByOwners(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	for i := range events {
		events[i].Username = s.resolveUsername(ctx, events[i].UserID)
	}
	SortEventsByDate(events)

	return &Feed{
		OwnerID:     sess.UserID,
		Events:      events,
		FriendCount: len(edges),
	}, nil
}

// resolveUsername looks up an event owner's display name. Failures degrade
// to the fixed placeholder rather than dropping the event.
func (s *FeedService) resolveUsername(ctx context.Context, userID string) string {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		log.Printf("Error getting username for %s: %v", userID, err)
		return UnknownUser
	}
	return user.DisplayName()
}

// SortEventsByDate orders events ascending by calendar date. An event with
// an unparseable date sorts after one with a valid date; two unparseable
// dates keep an unspecified relative order.
func SortEventsByDate(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, iOK := events[i].ParsedDate()
		tj, jOK := events[j].ParsedDate()
		if iOK && jOK {
			return ti.Before(tj)
		}
		return iOK && !jOK
	})
}
