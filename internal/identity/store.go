package identity

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/jobhub/employer-console/internal/shared"
)

// Identity is the authenticated employer as seen by the views.
type Identity struct {
	Claims   Claims
	RawToken string
}

// Anonymous is returned by Store.Current when nobody is logged in.
var Anonymous = Identity{}

// Authenticated reports whether the identity carries a decoded token.
func (i Identity) Authenticated() bool {
	return i.RawToken != ""
}

// Store is the single holder of the current identity for one request. It never
// touches persisted storage.
type Store struct {
	mu      sync.RWMutex
	current *Identity
	logger  *slog.Logger
}

// NewStore returns an empty store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger}
}

// Login decodes rawToken and, on success, makes it the current identity. A
// token that does not decode is logged and leaves the store untouched; the
// caller never sees an error.
func (s *Store) Login(rawToken string) bool {
	claims, err := Decode(rawToken)
	if err != nil {
		s.logger.Warn("decode token", slog.Any("error", err))
		return false
	}
	s.mu.Lock()
	s.current = &Identity{Claims: claims, RawToken: rawToken}
	s.mu.Unlock()
	return true
}

// Logout clears the current identity. Calling it again is a no-op.
func (s *Store) Logout() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Current returns the identity or Anonymous.
func (s *Store) Current() Identity {
	if s == nil {
		return Anonymous
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Anonymous
	}
	return *s.current
}

type storeContextKey struct{}

// WithStore binds the store to ctx.
func WithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, store)
}

// FromContext returns the request's store, or nil outside Middleware.
func FromContext(ctx context.Context) *Store {
	store, _ := ctx.Value(storeContextKey{}).(*Store)
	return store
}

// Current is shorthand for FromContext(ctx).Current().
func Current(ctx context.Context) Identity {
	return FromContext(ctx).Current()
}

// Middleware creates one Store per request, seeded from the token persisted in
// the session. It must run after the session middleware.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := NewStore(logger)
			if token := shared.SessionFromContext(r.Context()).Token(); token != "" {
				store.Login(token)
			}
			next.ServeHTTP(w, r.WithContext(WithStore(r.Context(), store)))
		})
	}
}
