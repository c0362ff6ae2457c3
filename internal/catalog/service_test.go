package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobhub/employer-console/internal/backend"
)

type stubGateway struct {
	services []backend.ServicePack
	details  []backend.OrderDetail
	added    map[int64]int
}

func (s *stubGateway) ListServices(context.Context) ([]backend.ServicePack, error) {
	return s.services, nil
}
func (s *stubGateway) GetServicePack(_ context.Context, id int64) (*backend.ServicePack, error) {
	for _, sp := range s.services {
		if sp.ID == id {
			return &sp, nil
		}
	}
	return nil, &backend.APIError{Op: "fetch service", Status: 404, Message: "Service not found"}
}
func (s *stubGateway) AddCartItem(_ context.Context, id int64, q int) error {
	if s.added == nil {
		s.added = map[int64]int{}
	}
	s.added[id] += q
	return nil
}
func (s *stubGateway) ListOrderDetails(context.Context) ([]backend.OrderDetail, error) {
	return s.details, nil
}
func (s *stubGateway) DeleteOrderDetail(context.Context, int64) error { return nil }

func TestAddToCartRequiresPositiveQuantity(t *testing.T) {
	gw := &stubGateway{}
	svc := NewService(gw)

	assert.ErrorIs(t, svc.AddToCart(context.Background(), 1, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, svc.AddToCart(context.Background(), 1, -2), ErrInvalidQuantity)
	require.NoError(t, svc.AddToCart(context.Background(), 1, 2))
	assert.Equal(t, map[int64]int{1: 2}, gw.added)
}

func TestMyServicesJoinsAndDropsUnknown(t *testing.T) {
	gw := &stubGateway{
		services: []backend.ServicePack{{ID: 1, ServiceName: "Top listing", Description: "Pin a job"}},
		details:  []backend.OrderDetail{{ServiceID: 1, Quantity: 2}, {ServiceID: 99, Quantity: 1}},
	}
	page, err := NewService(gw).MyServices(context.Background(), "", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Top listing", page.Items[0].Service.ServiceName)
}

func TestMyServicesFilterAndPages(t *testing.T) {
	gw := &stubGateway{}
	for i := 1; i <= 7; i++ {
		gw.services = append(gw.services, backend.ServicePack{ID: int64(i), ServiceName: fmt.Sprintf("Pack %d", i), Description: "visibility"})
		gw.details = append(gw.details, backend.OrderDetail{ServiceID: int64(i)})
	}
	gw.services[6].Description = "Urgent hiring badge"
	svc := NewService(gw)

	page, err := svc.MyServices(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	page, err = svc.MyServices(context.Background(), "URGENT", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(7), page.Items[0].ServiceID)
}
