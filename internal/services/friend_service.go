package services

import (
	"context"
	"log"
	"strings"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/models"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/repositories"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/session"
	"github.com/agnivade/levenshtein"
)

// FuzzyThreshold is the normalized edit-distance score a candidate must stay
// at or under to count as a match. Lower is stricter; substrings always pass.
const FuzzyThreshold = 0.3

// FriendService loads the friend list, searches the user directory, and
// maintains friend edges.
type FriendService struct {
	friendRepository repositories.FriendRepository
	userRepository   repositories.UserRepository
}

// NewFriendService creates a new FriendService
func NewFriendService(friendRepo repositories.FriendRepository, userRepo repositories.UserRepository) *FriendService {
	return &FriendService{
		friendRepository: friendRepo,
		userRepository:   userRepo,
	}
}

// LoadFriends fetches the session user's friend edges and resolves each
// target's current username with a point read. An edge whose target cannot
// be resolved is logged and omitted; one bad edge never fails the load.
func (s *FriendService) LoadFriends(ctx context.Context, sess *session.Session) ([]models.Friend, error) {
	edges, err := s.friendRepository.GetFriendEdges(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	friends := make([]models.Friend, 0, len(edges))
	for _, edge := range edges {
		user, err := s.userRepository.GetUserByID(ctx, edge.UserID)
		if err != nil {
			log.Printf("Error getting friend data for %s: %v", edge.UserID, err)
			continue
		}
		friends = append(friends, models.Friend{
			EdgeID:   edge.ID.Hex(),
			UserID:   edge.UserID,
			Username: user.DisplayName(),
		})
	}
	return friends, nil
}

// Directory lists every user except the session user as search candidates.
func (s *FriendService) Directory(ctx context.Context, sess *session.Session) ([]models.DirectoryUser, error) {
	users, err := s.userRepository.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	directory := make([]models.DirectoryUser, 0, len(users))
	for _, user := range users {
		if user.ID == sess.UserID {
			continue
		}
		email := user.Email
		if email == "" {
			email = "No email"
		}
		directory = append(directory, models.DirectoryUser{
			ID:       user.ID,
			Username: user.DisplayName(),
			Email:    email,
		})
	}
	return directory, nil
}

// SearchUsers approximately matches the query against username and email
// over the candidate pool, excluding users the searcher already has an edge
// to. An empty query means "not searching" and yields no results rather than
// the whole directory.
func (s *FriendService) SearchUsers(query string, candidates []models.DirectoryUser, friends []models.Friend) []models.DirectoryUser {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	friended := make(map[string]bool, len(friends))
	for _, f := range friends {
		friended[f.UserID] = true
	}

	var results []models.DirectoryUser
	for _, candidate := range candidates {
		if friended[candidate.ID] {
			continue
		}
		if fuzzyMatch(query, candidate.Username) || fuzzyMatch(query, candidate.Email) {
			results = append(results, candidate)
		}
	}
	return results
}

// AddFriend writes the edge and reloads the friend list from the store; the
// caller never sees an optimistic local patch.
func (s *FriendService) AddFriend(ctx context.Context, sess *session.Session, targetUserID string) ([]models.Friend, error) {
	if _, err := s.userRepository.GetUserByID(ctx, targetUserID); err != nil {
		return nil, err
	}
	if err := s.friendRepository.AddFriend(ctx, sess.UserID, targetUserID); err != nil {
		return nil, err
	}
	return s.LoadFriends(ctx, sess)
}

// RemoveFriend deletes the edge and reloads the friend list from the store.
func (s *FriendService) RemoveFriend(ctx context.Context, sess *session.Session, targetUserID string) ([]models.Friend, error) {
	if err := s.friendRepository.RemoveFriend(ctx, sess.UserID, targetUserID); err != nil {
		return nil, err
	}
	return s.LoadFriends(ctx, sess)
}

// FriendInfo resolves a friend's profile by point read.
func (s *FriendService) FriendInfo(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepository.GetUserByID(ctx, userID)
}

// fuzzyMatch reports whether the query approximately matches the field: a
// case-insensitive substring always matches, otherwise the best normalized
// edit distance over query-sized windows of the field must stay at or under
// FuzzyThreshold.
func fuzzyMatch(query, field string) bool {
	q := strings.ToLower(query)
	f := strings.ToLower(field)
	if q == "" || f == "" {
		return false
	}
	if strings.Contains(f, q) {
		return true
	}

	qLen := len([]rune(q))
	runes := []rune(f)
	best := levenshtein.ComputeDistance(q, f)
	for i := 0; i+qLen <= len(runes); i++ {
		d := levenshtein.ComputeDistance(q, string(runes[i:i+qLen]))
		if d < best {
			best = d
		}
	}
	return float64(best)/float64(qLen) <= FuzzyThreshold
}
