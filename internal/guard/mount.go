// Package guard decides, once per request, whether a protected view may
// render. It fails closed: anything short of a confirmed role denies access.
package guard

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// State is the position of a mount in the authorization check.
type State int

const (
	StateInit State = iota
	StateChecking
	StateAuthorized
	StateDenied
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateChecking:
		return "checking"
	case StateAuthorized:
		return "authorized"
	case StateDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state can no longer change.
func (s State) Terminal() bool {
	return s == StateAuthorized || s == StateDenied
}

// Reason classifies a decision for logs and metrics.
type Reason string

const (
	ReasonAuthorized Reason = "authorized"
	ReasonNoToken    Reason = "no_token"
	ReasonRole       Reason = "role_mismatch"
	ReasonRejected   Reason = "token_rejected"
	ReasonError      Reason = "check_failed"
)

// Messages shown to the employer after a denial.
const (
	MessageTokenExpired = "Token expired. Please log in again."
	MessageRestricted   = "Access restricted to employers only."
	MessageCheckFailed  = "An error occurred. Please try again."
)

// RoleChecker asks the backend whether token holds role.
type RoleChecker interface {
	CheckRole(ctx context.Context, token, role string) (bool, error)
}

// Decision is the terminal outcome of a mount.
type Decision struct {
	State   State
	Reason  Reason
	Message string
	Err     error
}

// Authorized reports whether the protected view may render.
func (d Decision) Authorized() bool {
	return d.State == StateAuthorized
}

// unauthorizer is implemented by backend errors that carry a 401/403.
type unauthorizer interface {
	Unauthorized() bool
}

// Mount is the authorization check of one protected view for one request.
type Mount struct {
	checker RoleChecker
	role    string
	token   string

	once     sync.Once
	mu       sync.Mutex
	state    State
	decision Decision
}

// NewMount prepares a check of token against role.
func NewMount(checker RoleChecker, role, token string) *Mount {
	return &Mount{checker: checker, role: role, token: token}
}

// State returns the current state.
func (m *Mount) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Resolve runs the check the first time it is called and returns the decision.
// Later calls return the same decision without contacting the backend. ok is
// false when ctx ended before the check finished; the late result is then
// dropped and the mount stays in StateChecking.
func (m *Mount) Resolve(ctx context.Context) (decision Decision, ok bool) {
	m.once.Do(func() { m.run(ctx) })
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decision, m.state.Terminal()
}

// Body is the only way to the protected view: it returns child once the
// mount is authorized and nil while the check is pending or after a denial.
func (m *Mount) Body(child http.Handler) http.Handler {
	if m.State() != StateAuthorized {
		return nil
	}
	return child
}

func (m *Mount) run(ctx context.Context) {
	if m.token == "" {
		m.settle(Decision{State: StateDenied, Reason: ReasonNoToken, Message: MessageTokenExpired})
		return
	}
	if m.checker == nil {
		m.settle(Decision{State: StateDenied, Reason: ReasonError, Message: MessageCheckFailed, Err: errors.New("guard: no role checker")})
		return
	}

	m.mu.Lock()
	m.state = StateChecking
	m.mu.Unlock()

	// Buffered so the checker goroutine can always deliver and exit.
	result := make(chan Decision, 1)
	go func() {
		ok, err := m.checker.CheckRole(ctx, m.token, m.role)
		result <- decide(ok, err)
	}()

	select {
	case <-ctx.Done():
	case d := <-result:
		if ctx.Err() != nil {
			return
		}
		m.settle(d)
	}
}

func (m *Mount) settle(d Decision) {
	m.mu.Lock()
	m.state = d.State
	m.decision = d
	m.mu.Unlock()
}

func decide(ok bool, err error) Decision {
	if err != nil {
		var u unauthorizer
		if errors.As(err, &u) && u.Unauthorized() {
			return Decision{State: StateDenied, Reason: ReasonRejected, Message: MessageCheckFailed, Err: err}
		}
		return Decision{State: StateDenied, Reason: ReasonError, Message: MessageCheckFailed, Err: err}
	}
	if !ok {
		return Decision{State: StateDenied, Reason: ReasonRole, Message: MessageRestricted}
	}
	return Decision{State: StateAuthorized, Reason: ReasonAuthorized}
}
