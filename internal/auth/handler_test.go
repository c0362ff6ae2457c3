package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobhub/employer-console/internal/auth"
	"github.com/jobhub/employer-console/internal/backend"
	"github.com/jobhub/employer-console/internal/shared"
	"github.com/jobhub/employer-console/internal/testing/webtest"
	_ "github.com/jobhub/employer-console/testing"
)

type authBackend struct {
	token      string
	role       string
	registered []string
}

func (b *authBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login-employer", func(w http.ResponseWriter, r *http.Request) {
		var creds backend.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Bad credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":     b.token,
			"id":        42,
			"email":     creds.Email,
			"firstName": "Lan",
			"lastName":  "Nguyen",
		})
	})
	mux.HandleFunc("GET /check-role", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"role": b.role})
	})
	mux.HandleFunc("POST /register-employer", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.registered = append(b.registered, r.FormValue("email"))
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Registration successful."})
	})
	mux.HandleFunc("GET /api/address/all", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]backend.Address{{ID: 1, Name: "Hà Nội"}})
	})
	return mux
}

func setup(t *testing.T, b *authBackend) (*webtest.Harness, http.Handler) {
	t.Helper()
	h := webtest.New(t)
	client := webtest.Backend(t, b.handler())
	handler := auth.NewHandler(nil, auth.NewService(client, nil), h.Templates, h.Sessions, h.CSRF)
	return h, webtest.Router(func(r chi.Router) {
		r.Route("/auth", handler.MountRoutes)
	})
}

func TestLoginPersistsIdentity(t *testing.T) {
	b := &authBackend{token: webtest.EmployerToken(t), role: backend.EmployerRole}
	h, router := setup(t, b)

	rr := h.Post(router, "/auth/login", url.Values{"email": {"hr@acme.vn"}, "password": {"secret"}})

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, auth.HomePath, rr.Header().Get("Location"))
	assert.Equal(t, b.token, h.Session.Token())
	assert.Equal(t, "42", h.Session.Get(shared.KeyAdminID))
	assert.Equal(t, "Lan", h.Session.Get(shared.KeyFirstName))
	assert.True(t, h.Store.Current().Authenticated())
	assert.Equal(t, "hr@acme.vn", h.Store.Current().Claims.Subject)
	assert.Contains(t, h.Flashes(), "Welcome back, Lan Nguyen.")
}

func TestLoginSurvivesSessionRoundTrip(t *testing.T) {
	b := &authBackend{token: webtest.EmployerToken(t), role: backend.EmployerRole}
	h, router := setup(t, b)

	rr := h.Post(router, "/auth/login", url.Values{"email": {"hr@acme.vn"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	commit := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, h.Sessions.Commit(context.Background(), commit, req, h.Session))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range commit.Result().Cookies() {
		next.AddCookie(c)
	}
	loaded, err := h.Sessions.Load(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, b.token, loaded.Token())
	assert.Equal(t, "hr@acme.vn", loaded.Get(shared.KeyEmail))
}

func TestLoginRejectsNonEmployer(t *testing.T) {
	b := &authBackend{token: webtest.EmployerToken(t), role: "ROLE_CANDIDATE"}
	h, router := setup(t, b)

	rr := h.Post(router, "/auth/login", url.Values{"email": {"hr@acme.vn"}, "password": {"secret"}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Access restricted to employers only.")
	assert.Empty(t, h.Session.Token())
	assert.False(t, h.Store.Current().Authenticated())
}

func TestLoginBadCredentials(t *testing.T) {
	b := &authBackend{token: webtest.EmployerToken(t), role: backend.EmployerRole}
	h, router := setup(t, b)

	rr := h.Post(router, "/auth/login", url.Values{"email": {"hr@acme.vn"}, "password": {"wrong"}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid email or password.")
	assert.Empty(t, h.Session.Token())
}

func TestLoginValidation(t *testing.T) {
	h, router := setup(t, &authBackend{})

	rr := h.Post(router, "/auth/login", url.Values{"email": {""}, "password": {""}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "This field is required.")
}

func TestShowLoginRedirectsWhenAuthenticated(t *testing.T) {
	h, router := setup(t, &authBackend{})
	h.Login()

	rr := h.Get(router, "/auth/login")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, auth.HomePath, rr.Header().Get("Location"))
}

func TestShowLoginRendersForm(t *testing.T) {
	h, router := setup(t, &authBackend{})

	rr := h.Get(router, "/auth/login")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<form")
}

func TestLogoutClearsIdentity(t *testing.T) {
	h, router := setup(t, &authBackend{})
	h.Login()

	rr := h.Post(router, "/auth/logout", nil)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/auth/login", rr.Header().Get("Location"))
	assert.Empty(t, h.Session.Token())
	assert.Empty(t, h.Session.Get(shared.KeyEmail))
	assert.False(t, h.Store.Current().Authenticated())
}

func TestRegisterSubmitsMultipart(t *testing.T) {
	b := &authBackend{}
	h, router := setup(t, b)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range map[string]string{
		"email":       "new@acme.vn",
		"password":    "secret1",
		"firstName":   "Minh",
		"lastName":    "Tran",
		"companyName": "Acme",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := h.Serve(router, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/auth/login", rr.Header().Get("Location"))
	assert.Equal(t, []string{"new@acme.vn"}, b.registered)
	assert.Contains(t, h.Flashes(), "Registration successful.")
}

func TestRegisterValidation(t *testing.T) {
	b := &authBackend{}
	h, router := setup(t, b)

	rr := h.Post(router, "/auth/register", url.Values{"email": {"new@acme.vn"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "This field is required.")
	assert.Contains(t, rr.Body.String(), "Hà Nội")
	assert.Empty(t, b.registered)
}
