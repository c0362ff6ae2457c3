package backend

import (
	"context"
	"net/http"
	"strconv"
)

// ListServices returns the purchasable service catalog.
func (c *Client) ListServices(ctx context.Context) ([]ServicePack, error) {
	return list[ServicePack](ctx, c, call{op: "fetch services", method: http.MethodGet, path: "/admin/service/all"})
}

// GetServicePack returns one catalog entry.
func (c *Client) GetServicePack(ctx context.Context, id int64) (*ServicePack, error) {
	var pack ServicePack
	if _, err := c.do(ctx, call{op: "fetch service", method: http.MethodGet, path: "/admin/service/" + strconv.FormatInt(id, 10)}, &pack); err != nil {
		return nil, err
	}
	return &pack, nil
}

// ListCategories returns the job categories. The endpoint is public.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	return list[Category](ctx, c, call{op: "fetch categories", method: http.MethodGet, path: "/admin/category/all", anonymous: true})
}

// ListAddresses returns the selectable addresses. The endpoint is public.
func (c *Client) ListAddresses(ctx context.Context) ([]Address, error) {
	return list[Address](ctx, c, call{op: "fetch addresses", method: http.MethodGet, path: "/api/address/all", anonymous: true})
}
