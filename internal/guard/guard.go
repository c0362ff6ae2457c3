package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jobhub/employer-console/internal/identity"
	"github.com/jobhub/employer-console/internal/platform/httpx"
	"github.com/jobhub/employer-console/internal/shared"
)

// DefaultLoginPath is where denied HTML requests are sent.
const DefaultLoginPath = "/auth/login"

// Recorder observes guard decisions.
type Recorder interface {
	ObserveGuard(reason string)
}

// Guard wraps protected routes.
type Guard struct {
	checker   RoleChecker
	loginPath string
	recorder  Recorder
	logger    *slog.Logger
}

// Option customises a Guard.
type Option func(*Guard)

// WithLoginPath overrides DefaultLoginPath.
func WithLoginPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithRecorder attaches a decision recorder.
func WithRecorder(r Recorder) Option {
	return func(g *Guard) { g.recorder = r }
}

// WithLogger attaches a logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// New constructs a Guard asking checker for roles.
func New(checker RoleChecker, opts ...Option) *Guard {
	g := &Guard{
		checker:   checker,
		loginPath: DefaultLoginPath,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type (
	mountContextKey struct{}
	guardContextKey struct{}
)

// MountFromContext returns the mount that admitted the request.
func MountFromContext(ctx context.Context) *Mount {
	m, _ := ctx.Value(mountContextKey{}).(*Mount)
	return m
}

// Require admits a request only when the persisted token belongs to role.
// The role check runs once per request.
func (g *Guard) Require(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			mount := NewMount(g.checker, role, sess.Token())

			decision, ok := mount.Resolve(r.Context())
			if !ok {
				g.logger.Debug("guard check abandoned", slog.String("path", r.URL.Path), slog.Any("error", r.Context().Err()))
				return
			}
			if g.recorder != nil {
				g.recorder.ObserveGuard(string(decision.Reason))
			}
			body := mount.Body(next)
			if body == nil {
				g.deny(w, r, sess, decision)
				return
			}

			ctx := context.WithValue(r.Context(), mountContextKey{}, mount)
			ctx = context.WithValue(ctx, guardContextKey{}, g)
			body.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, sess *shared.Session, d Decision) {
	switch d.Reason {
	case ReasonNoToken:
		identity.FromContext(r.Context()).Logout()
	case ReasonRejected:
		identity.FromContext(r.Context()).Logout()
		sess.ClearIdentity()
	}
	if d.Err != nil {
		g.logger.Warn("guard denied", slog.String("path", r.URL.Path), slog.String("reason", string(d.Reason)), slog.Any("error", d.Err))
	}

	if httpx.WantsJSON(r) {
		httpx.RespondError(w, problemFor(d))
		return
	}
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: d.Message})
	}
	http.Redirect(w, r, g.loginPath, http.StatusSeeOther)
}

func problemFor(d Decision) error {
	switch d.Reason {
	case ReasonNoToken, ReasonRejected:
		return fmt.Errorf("%w: %s", httpx.ErrUnauthorized, d.Message)
	case ReasonRole:
		return fmt.Errorf("%w: %s", httpx.ErrForbidden, d.Message)
	default:
		return fmt.Errorf("%w: %s", httpx.ErrBadGateway, d.Message)
	}
}

// Unauthorized is called by protected views when a backend call fails. It
// defers to the Guard that admitted the request, falling back to
// DefaultLoginPath outside a guarded route.
func Unauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	g, _ := r.Context().Value(guardContextKey{}).(*Guard)
	return g.Unauthorized(w, r, err)
}

// Unauthorized ends the session the way a denied mount does when err is a
// rejected token and redirects to the login page. It reports whether it wrote
// the response; any other error is left to the caller.
func (g *Guard) Unauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	var u unauthorizer
	if err == nil || !errors.As(err, &u) || !u.Unauthorized() {
		return false
	}
	sess := shared.SessionFromContext(r.Context())
	identity.FromContext(r.Context()).Logout()
	sess.ClearIdentity()
	if httpx.WantsJSON(r) {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUnauthorized, MessageTokenExpired))
		return true
	}
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: MessageTokenExpired})
	}
	loginPath := DefaultLoginPath
	if g != nil {
		loginPath = g.loginPath
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
	return true
}
