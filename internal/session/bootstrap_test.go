package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/pkg/firebase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	email    string
	password string
	uid      string
	calls    int
}

func (p *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*firebase.SignInResult, error) {
	p.calls++
	if email != p.email || password != p.password {
		return nil, errors.New("INVALID_LOGIN_CREDENTIALS")
	}
	return &firebase.SignInResult{UID: p.uid, Email: email}, nil
}

type memoryStore struct {
	creds map[string]Credentials
}

func newMemoryStore() *memoryStore {
	return &memoryStore{creds: make(map[string]Credentials)}
}

func (s *memoryStore) Save(ctx context.Context, deviceID string, creds Credentials) error {
	s.creds[deviceID] = creds
	return nil
}

func (s *memoryStore) Load(ctx context.Context, deviceID string) (Credentials, error) {
	return s.creds[deviceID], nil
}

func (s *memoryStore) Clear(ctx context.Context, deviceID string) error {
	delete(s.creds, deviceID)
	return nil
}

func newTestBootstrapper(provider IdentityProvider, store CredentialStore, now time.Time) *Bootstrapper {
	b := NewBootstrapper(provider, store)
	b.now = func() time.Time { return now }
	return b
}

func TestBootstrapLiveSessionWins(t *testing.T) {
	store := newMemoryStore()
	store.creds["dev1"] = Credentials{RememberMe: true, Email: "x@y.com", Password: "pw"}
	provider := &fakeProvider{}
	b := newTestBootstrapper(provider, store, time.Now())

	live := &Session{UserID: "uid1", Email: "x@y.com"}
	result, err := b.Bootstrap(context.Background(), "dev1", live)
	require.NoError(t, err)

	assert.Equal(t, AuthenticatedLive, result.State)
	assert.Same(t, live, result.Session)
	// Stored credentials are never consulted when a live session exists.
	assert.Zero(t, provider.calls)
}

func TestBootstrapNoStoredCredentials(t *testing.T) {
	b := newTestBootstrapper(&fakeProvider{}, newMemoryStore(), time.Now())

	result, err := b.Bootstrap(context.Background(), "dev1", nil)
	require.NoError(t, err)
	assert.Equal(t, Unauthenticated, result.State)
	assert.Nil(t, result.Session)
}

func TestBootstrapIncompleteCredentials(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		creds Credentials
	}{
		{"flag off", Credentials{Email: "x@y.com", Password: "pw", Expiration: now.Add(time.Hour)}},
		{"no email", Credentials{RememberMe: true, Password: "pw", Expiration: now.Add(time.Hour)}},
		{"no password", Credentials{RememberMe: true, Email: "x@y.com", Expiration: now.Add(time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			store.creds["dev1"] = tt.creds
			provider := &fakeProvider{}
			b := newTestBootstrapper(provider, store, now)

			result, err := b.Bootstrap(context.Background(), "dev1", nil)
			require.NoError(t, err)
			assert.Equal(t, Unauthenticated, result.State)
			assert.Zero(t, provider.calls)
		})
	}
}

func TestBootstrapExpiredCredentialsCleared(t *testing.T) {
	now := time.Now()
	store := newMemoryStore()
	store.creds["dev1"] = Credentials{
		RememberMe: true,
		Email:      "x@y.com",
		Password:   "pw",
		Expiration: now.Add(-time.Minute),
	}
	provider := &fakeProvider{}
	b := newTestBootstrapper(provider, store, now)

	result, err := b.Bootstrap(context.Background(), "dev1", nil)
	require.NoError(t, err)

	assert.Equal(t, Unauthenticated, result.State)
	assert.Zero(t, provider.calls)
	_, ok := store.creds["dev1"]
	assert.False(t, ok, "expired credentials must be cleared")
}

func TestBootstrapRejectedCredentialsCleared(t *testing.T) {
	now := time.Now()
	store := newMemoryStore()
	store.creds["dev1"] = Credentials{
		RememberMe: true,
		Email:      "x@y.com",
		Password:   "stale-password",
		Expiration: now.Add(time.Hour),
	}
	provider := &fakeProvider{email: "x@y.com", password: "current-password", uid: "uid1"}
	b := newTestBootstrapper(provider, store, now)

	result, err := b.Bootstrap(context.Background(), "dev1", nil)
	require.NoError(t, err)

	assert.Equal(t, Unauthenticated, result.State)
	assert.Equal(t, 1, provider.calls, "exactly one sign-in attempt")
	_, ok := store.creds["dev1"]
	assert.False(t, ok, "rejected credentials must be cleared")
}

func TestBootstrapRememberedSignIn(t *testing.T) {
	now := time.Now()
	store := newMemoryStore()
	store.creds["dev1"] = Credentials{
		RememberMe: true,
		Email:      "x@y.com",
		Password:   "pw",
		Expiration: now.Add(24 * time.Hour),
	}
	provider := &fakeProvider{email: "x@y.com", password: "pw", uid: "uid1"}
	b := newTestBootstrapper(provider, store, now)

	result, err := b.Bootstrap(context.Background(), "dev1", nil)
	require.NoError(t, err)

	assert.Equal(t, AuthenticatedRemembered, result.State)
	require.NotNil(t, result.Session)
	assert.Equal(t, "uid1", result.Session.UserID)
	assert.True(t, result.Session.Remembered)

	// A successful remembered bootstrap never extends the expiration.
	assert.Equal(t, now.Add(24*time.Hour).Unix(), store.creds["dev1"].Expiration.Unix())

	// The stored window's end is surfaced so clients can show time left.
	assert.Equal(t, now.Add(24*time.Hour).Unix(), result.RememberExpiresAt.Unix())
	assert.Equal(t, 1, result.RememberDaysLeft(now))
}

func TestResultRememberDaysLeft(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      int
	}{
		{"nothing stored", time.Time{}, 0},
		{"already ended", now.Add(-time.Hour), 0},
		{"partial day rounds up", now.Add(time.Hour), 1},
		{"just over a day", now.Add(25 * time.Hour), 2},
		{"full window", now.Add(RememberWindow), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Result{RememberExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, r.RememberDaysLeft(now))
		})
	}
}

func TestSignInRememberMeSavesFreshWindow(t *testing.T) {
	now := time.Now()
	store := newMemoryStore()
	provider := &fakeProvider{email: "x@y.com", password: "pw", uid: "uid1"}
	b := newTestBootstrapper(provider, store, now)

	sess, err := b.SignIn(context.Background(), "dev1", "x@y.com", "pw", true)
	require.NoError(t, err)
	assert.Equal(t, "uid1", sess.UserID)
	assert.True(t, sess.Remembered)

	creds := store.creds["dev1"]
	assert.True(t, creds.RememberMe)
	assert.Equal(t, "x@y.com", creds.Email)
	assert.Equal(t, "pw", creds.Password)
	assert.Equal(t, now.Add(RememberWindow).Unix(), creds.Expiration.Unix())
}

func TestSignInWithoutRememberMeClears(t *testing.T) {
	store := newMemoryStore()
	store.creds["dev1"] = Credentials{RememberMe: true, Email: "x@y.com", Password: "pw"}
	provider := &fakeProvider{email: "x@y.com", password: "pw", uid: "uid1"}
	b := newTestBootstrapper(provider, store, time.Now())

	_, err := b.SignIn(context.Background(), "dev1", "x@y.com", "pw", false)
	require.NoError(t, err)

	_, ok := store.creds["dev1"]
	assert.False(t, ok)
}

func TestSignInWrongPassword(t *testing.T) {
	store := newMemoryStore()
	provider := &fakeProvider{email: "x@y.com", password: "pw", uid: "uid1"}
	b := newTestBootstrapper(provider, store, time.Now())

	_, err := b.SignIn(context.Background(), "dev1", "x@y.com", "wrong", true)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, store.creds, "nothing is stored for a failed sign-in")
}

func TestSignOutClearsDevice(t *testing.T) {
	store := newMemoryStore()
	store.creds["dev1"] = Credentials{RememberMe: true, Email: "x@y.com", Password: "pw"}
	b := newTestBootstrapper(&fakeProvider{}, store, time.Now())

	require.NoError(t, b.SignOut(context.Background(), "dev1"))
	assert.Empty(t, store.creds)
}

func TestCredentialsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.True(t, Credentials{}.Expired(now), "zero expiration counts as expired")
	assert.True(t, Credentials{Expiration: now.Add(-time.Second)}.Expired(now))
	assert.False(t, Credentials{Expiration: now.Add(time.Second)}.Expired(now))
	assert.False(t, Credentials{Expiration: now}.Expired(now))
}
