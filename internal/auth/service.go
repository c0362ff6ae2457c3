package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jobhub/employer-console/internal/backend"
	"github.com/jobhub/employer-console/internal/identity"
	"github.com/jobhub/employer-console/internal/shared"
)

// Gateway is the slice of the backend client the auth pages use.
type Gateway interface {
	LoginEmployer(ctx context.Context, creds backend.LoginRequest, sink backend.IdentitySink) (*backend.Employer, error)
	RegisterEmployer(ctx context.Context, reg backend.Registration) (string, error)
	ListAddresses(ctx context.Context) ([]backend.Address, error)
}

// Service wraps the login, registration and logout flows.
type Service struct {
	gateway Gateway
	logger  *slog.Logger
}

// NewService constructs a new Service.
func NewService(gateway Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gateway: gateway, logger: logger}
}

// Login authenticates against the backend, persists the identity fields in
// sess and makes the token the store's current identity.
func (s *Service) Login(ctx context.Context, creds backend.LoginRequest, sess *shared.Session, store *identity.Store) (*backend.Employer, error) {
	if sess == nil {
		return nil, shared.ErrSessionMissing
	}
	employer, err := s.gateway.LoginEmployer(ctx, creds, sess)
	if err != nil {
		return nil, err
	}
	if store != nil && !store.Login(sess.Token()) {
		s.logger.Warn("login token could not be decoded", slog.String("email", creds.Email))
	}
	return employer, nil
}

// Register creates an employer account and returns the backend's message.
func (s *Service) Register(ctx context.Context, reg backend.Registration) (string, error) {
	return s.gateway.RegisterEmployer(ctx, reg)
}

// Addresses lists the address choices of the registration form.
func (s *Service) Addresses(ctx context.Context) ([]backend.Address, error) {
	return s.gateway.ListAddresses(ctx)
}

// Logout clears the identity from the store and the persisted session.
func (s *Service) Logout(sess *shared.Session, store *identity.Store) {
	store.Logout()
	sess.ClearIdentity()
}

// LoginMessage turns a login failure into the text shown on the form.
func LoginMessage(err error) string {
	switch {
	case errors.Is(err, backend.ErrNotEmployer):
		return "Access restricted to employers only."
	case errors.Is(err, backend.ErrNoToken):
		return "No token received from server."
	case errors.Is(err, backend.ErrUnauthorized):
		return shared.UserSafeMessage(shared.ErrInvalidCredentials)
	default:
		return shared.UserSafeMessage(err)
	}
}
