package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobhub/employer-console/internal/backend"
)

func TestUpdateFromEmployer(t *testing.T) {
	upd := UpdateFromEmployer(&backend.Employer{
		FirstName: "Lan",
		BirthDate: "1990-04-02T00:00:00.000+00:00",
		Scale:     "50",
		AddressID: 3,
	})
	assert.Equal(t, "Lan", upd.FirstName)
	assert.Equal(t, "1990-04-02", upd.BirthDate)
	assert.Equal(t, "50", upd.Scale)
	assert.Equal(t, "3", upd.AddressID)

	assert.Equal(t, backend.ProfileUpdate{}, UpdateFromEmployer(nil))
}

type gatewayStub struct {
	updates int
	reads   int
}

func (g *gatewayStub) GetEmployer(context.Context, string) (*backend.Employer, error) {
	g.reads++
	return &backend.Employer{}, nil
}

func (g *gatewayStub) UpdateEmployer(_ context.Context, email string, upd backend.ProfileUpdate) (*backend.Employer, error) {
	g.updates++
	return &backend.Employer{Email: email, FirstName: upd.FirstName}, nil
}

func (g *gatewayStub) ListAddresses(context.Context) ([]backend.Address, error) { return nil, nil }

func TestUpdateOnlyCallsBackend(t *testing.T) {
	gw := &gatewayStub{}
	employer, err := NewService(gw).Update(context.Background(), "hr@acme.vn", backend.ProfileUpdate{FirstName: "Mai"})
	require.NoError(t, err)
	assert.Equal(t, "Mai", employer.FirstName)
	assert.Equal(t, 1, gw.updates)
	assert.Zero(t, gw.reads)

	_, err = NewService(gw).Update(context.Background(), "", backend.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrNoEmail)
	assert.Equal(t, 1, gw.updates)
}
