// Package catalog serves the service catalog and the services the employer
// already bought.
package catalog

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jobhub/employer-console/internal/backend"
	"github.com/jobhub/employer-console/internal/shared"
)

// PageSize is the number of purchased services per page.
const PageSize = 5

// ErrInvalidQuantity rejects cart additions below one unit.
var ErrInvalidQuantity = errors.New("catalog: quantity must be at least 1")

// Gateway is the slice of the backend client the catalog views use.
type Gateway interface {
	ListServices(ctx context.Context) ([]backend.ServicePack, error)
	GetServicePack(ctx context.Context, id int64) (*backend.ServicePack, error)
	AddCartItem(ctx context.Context, serviceID int64, quantity int) error
	ListOrderDetails(ctx context.Context) ([]backend.OrderDetail, error)
	DeleteOrderDetail(ctx context.Context, serviceID int64) error
}

// Purchase is an order detail with its catalog entry.
type Purchase struct {
	backend.OrderDetail
	Service backend.ServicePack
}

// Purchases is one page of the employer's purchased services.
type Purchases struct {
	Items      []Purchase
	Filter     string
	Pagination shared.Pagination
}

// Service implements the catalog views.
type Service struct {
	gateway Gateway
}

// NewService constructs a Service.
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ([]backend.ServicePack, error) {
	return s.gateway.ListServices(ctx)
}

// Get returns one catalog entry.
func (s *Service) Get(ctx context.Context, id int64) (*backend.ServicePack, error) {
	return s.gateway.GetServicePack(ctx, id)
}

// AddToCart puts quantity units of a service in the cart.
func (s *Service) AddToCart(ctx context.Context, serviceID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return s.gateway.AddCartItem(ctx, serviceID, quantity)
}

// MyServices fetches order details and the catalog concurrently and returns
// the requested page of purchases matching filter.
func (s *Service) MyServices(ctx context.Context, filter string, page int) (Purchases, error) {
	var (
		details  []backend.OrderDetail
		services []backend.ServicePack
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = s.gateway.ListOrderDetails(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		services, err = s.gateway.ListServices(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Purchases{}, err
	}

	items := FilterPurchases(JoinPurchases(details, services), filter)
	pagination := shared.NewPagination(page, PageSize, len(items))
	start, end := pagination.Bounds()
	return Purchases{Items: items[start:end], Filter: filter, Pagination: pagination}, nil
}

// JoinPurchases pairs order details with their services. Details whose
// service left the catalog are dropped.
func JoinPurchases(details []backend.OrderDetail, services []backend.ServicePack) []Purchase {
	catalog := make(map[int64]backend.ServicePack, len(services))
	for _, sp := range services {
		catalog[sp.ID] = sp
	}
	out := make([]Purchase, 0, len(details))
	for _, d := range details {
		sp, ok := catalog[d.ServiceID]
		if !ok {
			continue
		}
		out = append(out, Purchase{OrderDetail: d, Service: sp})
	}
	return out
}

// FilterPurchases keeps purchases whose service name or description contains
// term, ignoring case.
func FilterPurchases(items []Purchase, term string) []Purchase {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	out := make([]Purchase, 0, len(items))
	for _, p := range items {
		if strings.Contains(strings.ToLower(p.Service.ServiceName), term) || strings.Contains(strings.ToLower(p.Service.Description), term) {
			out = append(out, p)
		}
	}
	return out
}

// RemovePurchase deletes an order detail.
func (s *Service) RemovePurchase(ctx context.Context, serviceID int64) error {
	return s.gateway.DeleteOrderDetail(ctx, serviceID)
}
