package goSession

import "context"

type sessionContextKey struct{}

// WithSession attaches a session to ctx. The middleware package does
// this automatically for wrapped handlers.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the session attached by WithSession, or nil
// when the request did not pass through the session middleware.
func SessionFromContext(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}

	s, _ := ctx.Value(sessionContextKey{}).(*Session)
	return s
}
