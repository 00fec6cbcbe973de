package services

import (
	"testing"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSearchUsers(t *testing.T) {
	candidates := []models.DirectoryUser{
		{ID: "u1", Username: "alice", Email: "alice@example.com"},
		{ID: "u2", Username: "alicia", Email: "alicia@example.com"},
		{ID: "u3", Username: "bob", Email: "bob@example.com"},
		{ID: "u4", Username: "charlotte", Email: "char@example.com"},
	}

	s := &FriendService{}

	tests := []struct {
		name    string
		query   string
		friends []models.Friend
		wantIDs []string
	}{
		{
			name:    "empty query yields nothing",
			query:   "",
			wantIDs: nil,
		},
		{
			name:    "whitespace query yields nothing",
			query:   "   ",
			wantIDs: nil,
		},
		{
			name:    "substring match",
			query:   "ali",
			wantIDs: []string{"u1", "u2"},
		},
		{
			name:    "case insensitive",
			query:   "BOB",
			wantIDs: []string{"u3"},
		},
		{
			name:    "near match within threshold",
			query:   "alise",
			wantIDs: []string{"u1"},
		},
		{
			name:    "match via email",
			query:   "char@",
			wantIDs: []string{"u4"},
		},
		{
			name:    "no match past threshold",
			query:   "zzzzzz",
			wantIDs: nil,
		},
		{
			name:    "already-friended users are excluded",
			query:   "ali",
			friends: []models.Friend{{UserID: "u1", Username: "alice"}},
			wantIDs: []string{"u2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := s.SearchUsers(tt.query, candidates, tt.friends)
			var ids []string
			for _, r := range results {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		query string
		field string
		want  bool
	}{
		{"alice", "alice", true},
		{"lic", "alice", true},
		{"alise", "alice", true},   // one edit over five runes: 0.2
		{"alxse", "alice", false},  // two edits over five runes: 0.4
		{"bob", "charlotte", false},
		{"", "alice", false},
		{"alice", "", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, fuzzyMatch(tt.query, tt.field), "fuzzyMatch(%q, %q)", tt.query, tt.field)
	}
}
