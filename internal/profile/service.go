// Package profile shows and updates the employer's own profile.
package profile

import (
	"context"
	"errors"
	"strconv"

	"github.com/jobhub/employer-console/internal/backend"
)

// ErrNoEmail is returned when no email is persisted for the session.
var ErrNoEmail = errors.New("profile: no email in session")

// Gateway is the slice of the backend client the profile view uses.
type Gateway interface {
	GetEmployer(ctx context.Context, email string) (*backend.Employer, error)
	UpdateEmployer(ctx context.Context, email string, upd backend.ProfileUpdate) (*backend.Employer, error)
	ListAddresses(ctx context.Context) ([]backend.Address, error)
}

// Service implements the profile view.
type Service struct {
	gateway Gateway
}

// NewService constructs a Service.
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// Get loads the profile of email.
func (s *Service) Get(ctx context.Context, email string) (*backend.Employer, error) {
	if email == "" {
		return nil, ErrNoEmail
	}
	return s.gateway.GetEmployer(ctx, email)
}

// Addresses lists the address choices.
func (s *Service) Addresses(ctx context.Context) ([]backend.Address, error) {
	return s.gateway.ListAddresses(ctx)
}

// Update saves the profile. The persisted session fields are owned by login
// and stay as they are until the next one.
func (s *Service) Update(ctx context.Context, email string, upd backend.ProfileUpdate) (*backend.Employer, error) {
	if email == "" {
		return nil, ErrNoEmail
	}
	return s.gateway.UpdateEmployer(ctx, email, upd)
}

// UpdateFromEmployer pre-fills the update form.
func UpdateFromEmployer(e *backend.Employer) backend.ProfileUpdate {
	if e == nil {
		return backend.ProfileUpdate{}
	}
	birth := e.BirthDate
	if len(birth) > 10 {
		birth = birth[:10]
	}
	upd := backend.ProfileUpdate{
		FirstName:     e.FirstName,
		LastName:      e.LastName,
		Gender:        e.Gender,
		Telephone:     e.Telephone,
		BirthDate:     birth,
		CompanyName:   e.CompanyName,
		Scale:         e.Scale.String(),
		FieldActivity: e.FieldActivity,
	}
	if e.AddressID != 0 {
		upd.AddressID = strconv.FormatInt(e.AddressID, 10)
	}
	return upd
}
