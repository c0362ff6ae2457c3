package guard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobhub/employer-console/internal/backend"
)

type stubChecker struct {
	calls atomic.Int32
	ok    bool
	err   error
	seen  string
	mu    sync.Mutex
}

func (s *stubChecker) CheckRole(_ context.Context, token, role string) (bool, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.seen = token + "|" + role
	s.mu.Unlock()
	return s.ok, s.err
}

func TestMountWithoutTokenDeniesWithoutCheck(t *testing.T) {
	checker := &stubChecker{ok: true}
	mount := NewMount(checker, backend.EmployerRole, "")

	decision, ok := mount.Resolve(context.Background())

	require.True(t, ok)
	assert.Equal(t, StateDenied, decision.State)
	assert.Equal(t, ReasonNoToken, decision.Reason)
	assert.Equal(t, MessageTokenExpired, decision.Message)
	assert.Zero(t, checker.calls.Load())
}

func TestMountChecksOnce(t *testing.T) {
	checker := &stubChecker{ok: true}
	mount := NewMount(checker, backend.EmployerRole, "tok")
	assert.Equal(t, StateInit, mount.State())

	for i := 0; i < 3; i++ {
		decision, ok := mount.Resolve(context.Background())
		require.True(t, ok)
		assert.True(t, decision.Authorized())
	}

	assert.Equal(t, int32(1), checker.calls.Load())
	assert.Equal(t, StateAuthorized, mount.State())
	assert.Equal(t, "tok|ROLE_EMPLOYER", checker.seen)
}

func TestMountDecisions(t *testing.T) {
	cases := []struct {
		name    string
		checker *stubChecker
		reason  Reason
		message string
	}{
		{"role mismatch", &stubChecker{ok: false}, ReasonRole, MessageRestricted},
		{"network error", &stubChecker{err: &backend.APIError{Op: "check role", Message: "Error trying to check role."}}, ReasonError, MessageCheckFailed},
		{"server error", &stubChecker{err: &backend.APIError{Op: "check role", Status: http.StatusInternalServerError}}, ReasonError, MessageCheckFailed},
		{"token rejected", &stubChecker{err: &backend.APIError{Op: "check role", Status: http.StatusUnauthorized}}, ReasonRejected, MessageCheckFailed},
		{"plain error", &stubChecker{err: errors.New("boom")}, ReasonError, MessageCheckFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mount := NewMount(tc.checker, backend.EmployerRole, "tok")
			decision, ok := mount.Resolve(context.Background())
			require.True(t, ok)
			assert.False(t, decision.Authorized())
			assert.Equal(t, StateDenied, mount.State())
			assert.Equal(t, tc.reason, decision.Reason)
			assert.Equal(t, tc.message, decision.Message)
		})
	}
}

type blockingChecker struct {
	started chan struct{}
	release chan struct{}
	done    chan struct{}
}

func (b *blockingChecker) CheckRole(ctx context.Context, _, _ string) (bool, error) {
	defer close(b.done)
	close(b.started)
	<-b.release
	return true, nil
}

func TestMountCancelledCheckIsDiscarded(t *testing.T) {
	checker := &blockingChecker{
		started: make(chan struct{}),
		release: make(chan struct{}),
		done:    make(chan struct{}),
	}
	mount := NewMount(checker, backend.EmployerRole, "tok")
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-checker.started
		cancel()
	}()
	decision, ok := mount.Resolve(ctx)

	assert.False(t, ok)
	assert.Equal(t, Decision{}, decision)
	assert.Equal(t, StateChecking, mount.State())

	// The late answer must not move the mount.
	close(checker.release)
	<-checker.done
	_, ok = mount.Resolve(context.Background())
	assert.False(t, ok)
	assert.Equal(t, StateChecking, mount.State())
}

func TestMountBody(t *testing.T) {
	child := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	pending := NewMount(&stubChecker{ok: true}, backend.EmployerRole, "tok")
	assert.Nil(t, pending.Body(child))

	_, _ = pending.Resolve(context.Background())
	rr := httptest.NewRecorder()
	pending.Body(child).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	denied := NewMount(&stubChecker{ok: false}, backend.EmployerRole, "tok")
	_, _ = denied.Resolve(context.Background())
	assert.Nil(t, denied.Body(child))
}
