package catalog_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobhub/employer-console/internal/backend"
	"github.com/jobhub/employer-console/internal/catalog"
	"github.com/jobhub/employer-console/internal/testing/webtest"
	_ "github.com/jobhub/employer-console/testing"
)

func catalogBackend(added map[string]string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/service/all", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]backend.ServicePack{{ID: 1, ServiceName: "Top listing", Price: 1500000, Description: "Pin a job", ValidityPeriod: 30}})
	})
	mux.HandleFunc("GET /admin/service/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Service pack not found"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(backend.ServicePack{ID: 1, ServiceName: "Top listing", Price: 1500000})
	})
	mux.HandleFunc("POST /api/cart/create", func(w http.ResponseWriter, r *http.Request) {
		added[r.URL.Query().Get("serviceId")] = r.URL.Query().Get("quantity")
	})
	mux.HandleFunc("GET /api/order/order-details", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]backend.OrderDetail{{ServiceID: 1, Quantity: 2, Price: 1500000, TotalAmounts: 3000000}})
	})
	mux.HandleFunc("DELETE /api/order/delete-order-details", func(w http.ResponseWriter, r *http.Request) {})
	return mux
}

func setup(t *testing.T, added map[string]string) (*webtest.Harness, http.Handler) {
	t.Helper()
	h := webtest.New(t)
	h.Login()
	client := webtest.Backend(t, catalogBackend(added))
	handler := catalog.NewHandler(nil, catalog.NewService(client), h.Templates, h.CSRF)
	return h, webtest.Router(func(r chi.Router) { r.Route("/employer", handler.MountRoutes) })
}

func TestServicesPages(t *testing.T) {
	h, router := setup(t, map[string]string{})

	rr := h.Get(router, "/employer/services")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Top listing")
	assert.Contains(t, rr.Body.String(), "1.500.000 ₫")

	rr = h.Get(router, "/employer/services/1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Top listing")

	rr = h.Get(router, "/employer/services/2")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "Service pack not found")
}

func TestAddToCart(t *testing.T) {
	added := map[string]string{}
	h, router := setup(t, added)

	rr := h.Post(router, "/employer/services/1/cart", url.Values{"quantity": {"3"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/employer/services/1", rr.Header().Get("Location"))
	assert.Equal(t, "3", added["1"])
	assert.Equal(t, []string{catalog.MessageAdded}, h.Flashes())

	h.Session.PopFlash()
	rr = h.Post(router, "/employer/services/1/cart", url.Values{"quantity": {"0"}, "return": {"/employer/services"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/employer/services", rr.Header().Get("Location"))
	assert.Equal(t, []string{catalog.MessageInvalidQuantity}, h.Flashes())
	assert.Equal(t, "3", added["1"])
}

func TestMyServices(t *testing.T) {
	h, router := setup(t, map[string]string{})

	rr := h.Get(router, "/employer/my-services")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Top listing")
	assert.Contains(t, rr.Body.String(), "3.000.000 ₫")

	rr = h.Post(router, "/employer/my-services/1/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, []string{catalog.MessagePurchaseRemoved}, h.Flashes())
}
