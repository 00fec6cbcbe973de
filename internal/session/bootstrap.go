package session

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/pkg/firebase"
)

// RememberWindow is how long stored credentials stay usable after the login
// that enabled remember-me. App use never extends it.
const RememberWindow = 30 * 24 * time.Hour

// ErrInvalidCredentials is returned when the provider rejects an
// email+password pair.
var ErrInvalidCredentials = errors.New("session: invalid email or password")

// State is the launch-time authentication outcome. Bootstrap resolves to
// exactly one of the three.
type State int

const (
	// Unauthenticated means no live session and no usable stored credentials.
	Unauthenticated State = iota
	// AuthenticatedLive means the provider reported an active session.
	AuthenticatedLive
	// AuthenticatedRemembered means stored credentials were replayed
	// successfully.
	AuthenticatedRemembered
)

func (s State) String() string {
	switch s {
	case AuthenticatedLive:
		return "authenticated"
	case AuthenticatedRemembered:
		return "remembered"
	default:
		return "unauthenticated"
	}
}

// IdentityProvider is the slice of the auth provider the bootstrap sequence
// uses.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*firebase.SignInResult, error)
}

// Result is the outcome of a bootstrap: the resolved state and, when
// authenticated, the session. RememberExpiresAt is set only for a remembered
// sign-in and carries the stored window's end, so clients can show how long
// the saved login lasts.
type Result struct {
	State             State
	Session           *Session
	RememberExpiresAt time.Time
}

// RememberDaysLeft reports the whole days remaining in the stored window,
// rounded up to the next full day. Zero when nothing is stored or the window
// has ended.
func (r *Result) RememberDaysLeft(now time.Time) int {
	if r.RememberExpiresAt.IsZero() {
		return 0
	}
	d := r.RememberExpiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// Bootstrapper resolves launch-time authentication state, layering the
// persisted remember-me credentials on top of provider session state.
type Bootstrapper struct {
	provider IdentityProvider
	store    CredentialStore
	now      func() time.Time
}

// NewBootstrapper creates a Bootstrapper over the given provider and store.
func NewBootstrapper(provider IdentityProvider, store CredentialStore) *Bootstrapper {
	return &Bootstrapper{provider: provider, store: store, now: time.Now}
}

// Bootstrap determines the launch authentication state for a device. live is
// the session the provider already reports, or nil.
//
// With no live session, the stored credentials are consulted: the flag must
// be set, an expiration must exist and lie in the future, and the replayed
// sign-in must succeed. Expired or rejected credentials are cleared in full
// (all four keys) and the device degrades to unauthenticated — a single
// attempt, never retried and never left ambiguous.
func (b *Bootstrapper) Bootstrap(ctx context.Context, deviceID string, live *Session) (*Result, error) {
	if live != nil {
		return &Result{State: AuthenticatedLive, Session: live}, nil
	}

	creds, err := b.store.Load(ctx, deviceID)
	if err != nil {
		// Unable to consult storage: degrade rather than guess.
		log.Printf("Error reading stored credentials for device %s: %v", deviceID, err)
		return &Result{State: Unauthenticated}, nil
	}

	if !creds.RememberMe || creds.Email == "" || creds.Password == "" {
		return &Result{State: Unauthenticated}, nil
	}

	if creds.Expired(b.now()) {
		if err := b.store.Clear(ctx, deviceID); err != nil {
			log.Printf("Error clearing expired credentials for device %s: %v", deviceID, err)
		}
		return &Result{State: Unauthenticated}, nil
	}

	signIn, err := b.provider.SignInWithPassword(ctx, creds.Email, creds.Password)
	if err != nil {
		log.Printf("Auto-login failed for device %s, clearing saved credentials: %v", deviceID, err)
		if clearErr := b.store.Clear(ctx, deviceID); clearErr != nil {
			log.Printf("Error clearing credentials for device %s: %v", deviceID, clearErr)
		}
		return &Result{State: Unauthenticated}, nil
	}

	return &Result{
		State: AuthenticatedRemembered,
		Session: &Session{
			UserID:     signIn.UID,
			Email:      signIn.Email,
			Remembered: true,
		},
		RememberExpiresAt: creds.Expiration,
	}, nil
}

// SignIn authenticates against the provider and applies the remember-me
// policy: opting in stores all four keys with a fresh 30-day expiration
// (recomputed on every successful opted-in login); opting out clears them.
func (b *Bootstrapper) SignIn(ctx context.Context, deviceID, email, password string, rememberMe bool) (*Session, error) {
	signIn, err := b.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if rememberMe && deviceID != "" {
		creds := Credentials{
			RememberMe: true,
			Email:      email,
			Password:   password,
			Expiration: b.now().Add(RememberWindow),
		}
		if err := b.store.Save(ctx, deviceID, creds); err != nil {
			log.Printf("Error saving remember-me credentials for device %s: %v", deviceID, err)
		}
	} else if deviceID != "" {
		if err := b.store.Clear(ctx, deviceID); err != nil {
			log.Printf("Error clearing remember-me credentials for device %s: %v", deviceID, err)
		}
	}

	return &Session{
		UserID:     signIn.UID,
		Email:      signIn.Email,
		Remembered: rememberMe,
	}, nil
}

// SignOut clears the device's stored credentials. Provider-side sign-out is
// the caller's concern; storage is never left holding credentials for a
// signed-out user.
func (b *Bootstrapper) SignOut(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return nil
	}
	return b.store.Clear(ctx, deviceID)
}
