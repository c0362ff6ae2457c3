package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobhub/employer-console/internal/shared"
)

type mutableToken struct {
	mu    sync.Mutex
	value string
}

func (m *mutableToken) Token(context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

func (m *mutableToken) set(v string) {
	m.mu.Lock()
	m.value = v
	m.mu.Unlock()
}

type mapSink map[string]string

func (m mapSink) Set(key, value string) { m[key] = value }
func (m mapSink) Delete(key string)     { delete(m, key) }

type recordedCall struct {
	op, outcome string
}

type stubRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *stubRecorder) ObserveBackend(op, outcome string, _ time.Duration) {
	r.mu.Lock()
	r.calls = append(r.calls, recordedCall{op, outcome})
	r.mu.Unlock()
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, tokens, opts...)
}

func TestHeadersAreRebuiltOnEveryCall(t *testing.T) {
	tokens := &mutableToken{value: "first"}
	var (
		mu   sync.Mutex
		seen []string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}, tokens)

	_, err := client.ListJobs(context.Background())
	require.NoError(t, err)
	tokens.set("second")
	_, err = client.ListJobs(context.Background())
	require.NoError(t, err)
	tokens.set("")
	_, err = client.ListJobs(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Bearer first", "Bearer second", "Bearer "}, seen)
}

func TestHeadersMissingTokenStillBearer(t *testing.T) {
	client := NewClient("http://backend.invalid", nil)
	h := client.Headers(context.Background())
	assert.Equal(t, "Bearer ", h.Get("Authorization"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
}

func TestListEmptyResponses(t *testing.T) {
	for name, respond := range map[string]func(w http.ResponseWriter){
		"no content":  func(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) },
		"empty array": func(w http.ResponseWriter) { _, _ = io.WriteString(w, "[]") },
		"empty body":  func(w http.ResponseWriter) { w.WriteHeader(http.StatusOK) },
	} {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { respond(w) }, nil)
			items, err := client.ListCartItems(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, items)
			assert.Empty(t, items)
		})
	}
}

func TestListDecodesPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/employer/job/all-job-by-employer", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":7,"jobName":"Backend Engineer","price":1500,"experience":"2 years","categoryId":3,"quantity":2}]`)
	}, nil)

	jobs, err := client.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, int64(7), jobs[0].ID)
	assert.Equal(t, Text("1500"), jobs[0].Price)
	assert.Equal(t, Text("2 years"), jobs[0].Experience)
}

func TestErrorNormalization(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"json message", http.StatusBadRequest, `{"message":"Cart is empty"}`, "Cart is empty"},
		{"json string", http.StatusConflict, `"Email already exists"`, "Email already exists"},
		{"plain text", http.StatusBadRequest, "Quantity too large", "Quantity too large"},
		{"html page", http.StatusBadGateway, "<html>bad gateway</html>", "Error trying to delete cart item."},
		{"empty", http.StatusInternalServerError, "", "Error trying to delete cart item."},
		{"json without message", http.StatusInternalServerError, `{"code":1}`, "Error trying to delete cart item."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}, nil)

			err := client.DeleteCartItem(context.Background(), 3)
			require.Error(t, err)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.message, apiErr.Message)
			assert.Equal(t, tc.message, shared.UserSafeMessage(err))
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	recorder := &stubRecorder{}
	client := NewClient(srv.URL, nil, WithRecorder(recorder))

	_, err := client.ListServices(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, "Error trying to fetch services.", apiErr.Message)
	assert.NotNil(t, apiErr.Unwrap())
	assert.Equal(t, []recordedCall{{"fetch services", "network_error"}}, recorder.calls)
}

func TestUnauthorizedMatchesSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, nil)

	_, err := client.GetCart(context.Background())
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestCheckRole(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/check-role", r.URL.Path)
		switch r.Header.Get("Authorization") {
		case "Bearer employer":
			_, _ = io.WriteString(w, `{"role":"ROLE_EMPLOYER"}`)
		case "Bearer candidate":
			_, _ = io.WriteString(w, `{"role":"ROLE_CANDIDATE"}`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}, TokenFunc(func(context.Context) string { return "employer" }))

	ok, err := client.CheckRole(context.Background(), "employer", EmployerRole)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.CheckRole(context.Background(), "candidate", EmployerRole)
	require.NoError(t, err)
	assert.False(t, ok)

	// The explicit empty token wins over the persisted one.
	_, err = client.CheckRole(context.Background(), "", EmployerRole)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func loginBackend(role string, token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login-employer":
			if token == "" {
				_, _ = io.WriteString(w, `{"id":9}`)
				return
			}
			_, _ = io.WriteString(w, `{"token":"`+token+`","id":9,"email":"hr@acme.vn","firstName":"Lan","lastName":"Nguyen","avatar":"aGk="}`)
		case "/check-role":
			_, _ = io.WriteString(w, `{"role":"`+role+`"}`)
		}
	}
}

func TestLoginEmployerPersistsIdentity(t *testing.T) {
	client := newTestClient(t, loginBackend(EmployerRole, "tok"), nil)
	sink := mapSink{}

	employer, err := client.LoginEmployer(context.Background(), LoginRequest{Email: "hr@acme.vn", Password: "secret"}, sink)
	require.NoError(t, err)
	assert.Equal(t, "Lan", employer.FirstName)
	assert.Equal(t, mapSink{
		shared.KeyToken:     "tok",
		shared.KeyAdminID:   "9",
		shared.KeyEmail:     "hr@acme.vn",
		shared.KeyFirstName: "Lan",
		shared.KeyLastName:  "Nguyen",
		shared.KeyAvatar:    "aGk=",
	}, sink)
}

func TestLoginEmployerRejectsOtherRoles(t *testing.T) {
	client := newTestClient(t, loginBackend("ROLE_CANDIDATE", "tok"), nil)
	sink := mapSink{}

	_, err := client.LoginEmployer(context.Background(), LoginRequest{Email: "a@b.c", Password: "secret"}, sink)
	assert.ErrorIs(t, err, ErrNotEmployer)
	assert.NotContains(t, sink, shared.KeyToken)
}

func TestLoginEmployerWithoutToken(t *testing.T) {
	client := newTestClient(t, loginBackend(EmployerRole, ""), nil)
	sink := mapSink{}

	_, err := client.LoginEmployer(context.Background(), LoginRequest{Email: "a@b.c", Password: "secret"}, sink)
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Empty(t, sink)
}

func TestRegisterEmployerSendsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "hr@acme.vn", r.FormValue("email"))
		assert.Equal(t, "Acme", r.FormValue("companyName"))
		file, header, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "me.png", header.Filename)
		assert.Equal(t, []byte("png"), data)
		_, _ = io.WriteString(w, "Employer registered")
	}, nil)

	msg, err := client.RegisterEmployer(context.Background(), Registration{
		Email:       "hr@acme.vn",
		Password:    "secret1",
		CompanyName: "Acme",
		Avatar:      &Upload{Filename: "me.png", Data: []byte("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Employer registered", msg)
}

func TestUpdateEmployerOmitsEmptyBirthDate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/employer/update/hr@acme.vn", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hasBirthDate := r.MultipartForm.Value["birthDate"]
		assert.False(t, hasBirthDate)
		_, _ = io.WriteString(w, `{"email":"hr@acme.vn","firstName":"Mai"}`)
	}, TokenFunc(func(context.Context) string { return "tok" }))

	employer, err := client.UpdateEmployer(context.Background(), "hr@acme.vn", ProfileUpdate{FirstName: "Mai", LastName: "Tran", CompanyName: "Acme"})
	require.NoError(t, err)
	require.NotNil(t, employer)
	assert.Equal(t, "Mai", employer.FirstName)
}

func TestCreateJobResults(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status":"success","job":{"id":5,"jobName":"QA"}}`)
		}, nil)
		res, err := client.CreateJob(context.Background(), JobInput{JobName: "QA"})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "Job created successfully", res.Message)
		require.NotNil(t, res.Job)
		assert.Equal(t, int64(5), res.Job.ID)
	})
	t.Run("rejected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status":"error","message":"Out of job credits"}`)
		}, nil)
		res, err := client.CreateJob(context.Background(), JobInput{JobName: "QA"})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "Out of job credits", res.Message)
	})
}

func TestCartQueries(t *testing.T) {
	recorder := &stubRecorder{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/cart/update":
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "4", r.URL.Query().Get("serviceId"))
			assert.Equal(t, "3", r.URL.Query().Get("quantity"))
		case "/api/order/create":
			assert.Equal(t, "11", r.URL.Query().Get("cart"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}, nil, WithRecorder(recorder))

	require.NoError(t, client.UpdateCartItem(context.Background(), 4, 3))
	require.NoError(t, client.CreateOrder(context.Background(), 11))
	assert.Equal(t, []recordedCall{{"update cart", "ok"}, {"create order", "ok"}}, recorder.calls)
}

func TestApplicationsByStatusQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "APPROVED", r.URL.Query().Get("status"))
		assert.Equal(t, "9", r.URL.Query().Get("adminId"))
		_, _ = io.WriteString(w, `[{"id":1,"jobId":2,"status":"APPROVED"}]`)
	}, nil)

	docs, err := client.ApplicationsByStatus(context.Background(), "APPROVED", "9")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, int64(2), docs[0].JobID)
}
