package common

import "context"

// Session identifies the authenticated caller for one request. The email
// is the user record's primary key; everything else hangs off it.
type Session struct {
	Email string
}

type contextKey int

const sessionContextKey contextKey = iota

// WithSession stores a Session in the request context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext retrieves the Session from context, or nil if the
// request is unauthenticated.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionContextKey).(*Session)
	return s
}
