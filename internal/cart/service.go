// Package cart serves the employer's shopping cart of services.
package cart

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/jobhub/employer-console/internal/backend"
)

// VATRate is applied on top of the cart total.
const VATRate = 0.08

var (
	// ErrQuantityTooLow rejects quantities below one.
	ErrQuantityTooLow = errors.New("cart: quantity must be at least 1")
	// ErrMissingCart is returned when an order is placed without a cart id.
	ErrMissingCart = errors.New("cart: cart id is missing")
)

// Gateway is the slice of the backend client the cart view uses.
type Gateway interface {
	ListCartItems(ctx context.Context) ([]backend.CartItem, error)
	ListServices(ctx context.Context) ([]backend.ServicePack, error)
	GetCart(ctx context.Context) (*backend.Cart, error)
	UpdateCartItem(ctx context.Context, serviceID int64, quantity int) error
	DeleteCartItem(ctx context.Context, serviceID int64) error
	CreateOrder(ctx context.Context, cartID int64) error
}

// Line is a cart item with its catalog entry. Service is zero when the
// service left the catalog.
type Line struct {
	backend.CartItem
	Service backend.ServicePack
}

// Summary is everything the cart page shows.
type Summary struct {
	Lines    []Line
	CartID   int64
	Subtotal float64
	VAT      float64
	Total    float64
}

// Service implements the cart view.
type Service struct {
	gateway Gateway
}

// NewService constructs a Service.
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// Load fetches items, catalog and cart header concurrently. Any failure fails
// the whole load.
func (s *Service) Load(ctx context.Context) (Summary, error) {
	var (
		items    []backend.CartItem
		services []backend.ServicePack
		header   *backend.Cart
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.gateway.ListCartItems(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		services, err = s.gateway.ListServices(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		header, err = s.gateway.GetCart(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return Summarize(items, services, header), nil
}

// Summarize joins items with the catalog and computes the totals from the
// cart header.
func Summarize(items []backend.CartItem, services []backend.ServicePack, header *backend.Cart) Summary {
	catalog := make(map[int64]backend.ServicePack, len(services))
	for _, sp := range services {
		catalog[sp.ID] = sp
	}
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{CartItem: it, Service: catalog[it.ServiceID]})
	}
	sum := Summary{Lines: lines}
	if header != nil {
		sum.CartID = header.ID
		sum.Subtotal = header.TotalAmounts
	}
	sum.VAT, sum.Total = WithVAT(sum.Subtotal)
	return sum
}

// WithVAT returns the VAT on amount and the amount including it.
func WithVAT(amount float64) (vat, total float64) {
	vat = amount * VATRate
	return vat, amount + vat
}

// SetQuantity changes the quantity of a line.
func (s *Service) SetQuantity(ctx context.Context, serviceID int64, quantity int) error {
	if quantity < 1 {
		return ErrQuantityTooLow
	}
	return s.gateway.UpdateCartItem(ctx, serviceID, quantity)
}

// Remove deletes a line.
func (s *Service) Remove(ctx context.Context, serviceID int64) error {
	return s.gateway.DeleteCartItem(ctx, serviceID)
}

// Checkout places an order for the cart.
func (s *Service) Checkout(ctx context.Context, cartID int64) error {
	if cartID <= 0 {
		return ErrMissingCart
	}
	return s.gateway.CreateOrder(ctx, cartID)
}
