package session

import "context"

// Session identifies the authenticated user for the duration of a request.
// It is passed explicitly to every component that scopes a query to the
// current user; nothing reads authentication state from a global.
type Session struct {
	UserID     string
	Email      string
	Remembered bool
}

type contextKey struct{}

// WithSession returns a context carrying the session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext extracts the session placed by the auth middleware. The second
// return value is false for unauthenticated requests.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}
