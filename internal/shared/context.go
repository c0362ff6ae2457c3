package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// SessionTokens reads the bearer token from the request-scoped session. It is
// the token source handed to the backend client.
type SessionTokens struct{}

// Token returns the persisted token for the session bound to ctx.
func (SessionTokens) Token(ctx context.Context) string {
	return SessionFromContext(ctx).Token()
}
