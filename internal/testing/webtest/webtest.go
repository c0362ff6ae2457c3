// Package webtest drives dashboard handlers in tests: a Redis-backed session
// that survives across requests, a request-scoped identity store and a
// backend client pointed at a stub server.
package webtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/jobhub/employer-console/internal/backend"
	"github.com/jobhub/employer-console/internal/identity"
	"github.com/jobhub/employer-console/internal/shared"
	"github.com/jobhub/employer-console/internal/view"
)

// Harness holds the collaborators every handler needs.
type Harness struct {
	t         *testing.T
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Sessions  *shared.SessionManager
	Session   *shared.Session
	Store     *identity.Store
}

// New builds a harness with an empty session.
func New(t *testing.T) *Harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	sess, err := sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	return &Harness{
		t:         t,
		Templates: templates,
		CSRF:      shared.NewCSRFManager("csrfsecret"),
		Sessions:  sessions,
		Session:   sess,
	}
}

// EmployerToken signs a token the identity store accepts.
func EmployerToken(t *testing.T) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "hr@acme.vn",
		"role": backend.EmployerRole,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

// Login persists an employer identity the way a successful login does.
func (h *Harness) Login() string {
	h.t.Helper()
	token := EmployerToken(h.t)
	h.Session.Set(shared.KeyToken, token)
	h.Session.Set(shared.KeyAdminID, "42")
	h.Session.Set(shared.KeyEmail, "hr@acme.vn")
	h.Session.Set(shared.KeyFirstName, "Lan")
	h.Session.Set(shared.KeyLastName, "Nguyen")
	return token
}

// Router mounts routes on a fresh chi router.
func Router(mount func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	mount(r)
	return r
}

// Serve runs req through handler with the harness session and a store seeded
// from it.
func (h *Harness) Serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	h.t.Helper()
	h.Store = identity.NewStore(nil)
	if token := h.Session.Token(); token != "" {
		h.Store.Login(token)
	}
	ctx := shared.ContextWithSession(req.Context(), h.Session)
	ctx = identity.WithStore(ctx, h.Store)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req.WithContext(ctx))
	return rr
}

// Get is Serve for a GET request.
func (h *Harness) Get(handler http.Handler, target string) *httptest.ResponseRecorder {
	return h.Serve(handler, httptest.NewRequest(http.MethodGet, target, nil))
}

// Post is Serve for a urlencoded form POST.
func (h *Harness) Post(handler http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.Serve(handler, req)
}

// Flashes returns the queued flash texts without consuming them.
func (h *Harness) Flashes() []string {
	var out []string
	for _, f := range h.Session.Flashes() {
		out = append(out, f.Message)
	}
	return out
}

// Backend starts a stub backend and a client that reads the token from the
// request session.
func Backend(t *testing.T, handler http.Handler) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	hc := srv.Client()
	t.Cleanup(hc.CloseIdleConnections)
	return backend.NewClient(srv.URL, shared.SessionTokens{}, backend.WithHTTPClient(hc))
}
