package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func serviceQuery(serviceID int64, quantity *int) url.Values {
	q := url.Values{"serviceId": {strconv.FormatInt(serviceID, 10)}}
	if quantity != nil {
		q.Set("quantity", strconv.Itoa(*quantity))
	}
	return q
}

// ListCartItems returns the lines of the employer's cart.
func (c *Client) ListCartItems(ctx context.Context) ([]CartItem, error) {
	return list[CartItem](ctx, c, call{op: "fetch cart items", method: http.MethodGet, path: "/api/cart/all-item"})
}

// AddCartItem adds quantity units of a service to the cart.
func (c *Client) AddCartItem(ctx context.Context, serviceID int64, quantity int) error {
	_, err := c.do(ctx, call{op: "add item to cart", method: http.MethodPost, path: "/api/cart/create", query: serviceQuery(serviceID, &quantity)}, nil)
	return err
}

// UpdateCartItem sets the quantity of a cart line.
func (c *Client) UpdateCartItem(ctx context.Context, serviceID int64, quantity int) error {
	_, err := c.do(ctx, call{op: "update cart", method: http.MethodPut, path: "/api/cart/update", query: serviceQuery(serviceID, &quantity)}, nil)
	return err
}

// DeleteCartItem removes a service from the cart.
func (c *Client) DeleteCartItem(ctx context.Context, serviceID int64) error {
	_, err := c.do(ctx, call{op: "delete cart item", method: http.MethodDelete, path: "/api/cart/delete", query: serviceQuery(serviceID, nil)}, nil)
	return err
}

// GetCart returns the cart header with its total.
func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if _, err := c.do(ctx, call{op: "fetch cart", method: http.MethodGet, path: "/api/cart/cart-by-employer"}, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// CreateOrder turns cart into an order.
func (c *Client) CreateOrder(ctx context.Context, cartID int64) error {
	q := url.Values{"cart": {strconv.FormatInt(cartID, 10)}}
	_, err := c.do(ctx, call{op: "create order", method: http.MethodPost, path: "/api/order/create", query: q}, nil)
	return err
}

// ListOrderDetails returns the services the employer purchased.
func (c *Client) ListOrderDetails(ctx context.Context) ([]OrderDetail, error) {
	return list[OrderDetail](ctx, c, call{op: "fetch order details", method: http.MethodGet, path: "/api/order/order-details"})
}

// DeleteOrderDetail removes a purchased service line.
func (c *Client) DeleteOrderDetail(ctx context.Context, serviceID int64) error {
	_, err := c.do(ctx, call{op: "delete order detail", method: http.MethodDelete, path: "/api/order/delete-order-details", query: serviceQuery(serviceID, nil)}, nil)
	return err
}
