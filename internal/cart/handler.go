package cart

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jobhub/employer-console/internal/guard"
	"github.com/jobhub/employer-console/internal/platform/httpx"
	"github.com/jobhub/employer-console/internal/shared"
	"github.com/jobhub/employer-console/internal/view"
)

// Flash texts.
const (
	MessageLoadFailed      = "Error loading data."
	MessageQuantityTooLow  = "Quantity cannot be less than 1."
	MessageQuantityUpdated = "Quantity updated successfully."
	MessageQuantityFailed  = "Failed to update quantity."
	MessageRemoved         = "Service removed from cart."
	MessageRemoveFailed    = "Failed to remove service."
	MessageOrderCreated    = "Order created successfully."
	MessageOrderFailed     = "Failed to create order."
	MessageMissingCart     = "Cart ID is missing."
)

const cartPath = "/employer/cart"

// Handler serves the cart page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers cart routes under the protected /employer group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/cart", h.show)
	r.Post("/cart/items/{serviceID}/quantity", h.setQuantity)
	r.Post("/cart/items/{serviceID}/delete", h.remove)
	r.Post("/cart/order", h.checkout)
}

type pageData struct {
	Summary Summary
	Error   string
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Load(r.Context())
	if err != nil {
		if guard.Unauthorized(w, r, err) {
			return
		}
		h.logger.Error("load cart", slog.Any("error", err))
		h.render(w, r, http.StatusBadGateway, pageData{Error: MessageLoadFailed})
		return
	}
	h.render(w, r, http.StatusOK, pageData{Summary: summary})
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := parseServiceID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil {
		quantity = 0
	}
	err = h.service.SetQuantity(r.Context(), serviceID, quantity)
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, shared.FlashSuccess, MessageQuantityUpdated)
	case errors.Is(err, ErrQuantityTooLow):
		h.redirectWithFlash(w, r, shared.FlashWarning, MessageQuantityTooLow)
	case guard.Unauthorized(w, r, err):
	default:
		h.logger.Warn("update cart quantity", slog.Int64("service_id", serviceID), slog.Any("error", err))
		h.redirectWithFlash(w, r, shared.FlashError, MessageQuantityFailed)
	}
}

type removeResult struct {
	ServiceID int64  `json:"serviceId"`
	Message   string `json:"message"`
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := parseServiceID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.service.Remove(r.Context(), serviceID); err != nil {
		if guard.Unauthorized(w, r, err) {
			return
		}
		h.logger.Warn("remove cart item", slog.Int64("service_id", serviceID), slog.Any("error", err))
		if httpx.WantsJSON(r) {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrBadGateway, MessageRemoveFailed))
			return
		}
		h.redirectWithFlash(w, r, shared.FlashError, MessageRemoveFailed)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, removeResult{ServiceID: serviceID, Message: MessageRemoved})
		return
	}
	h.redirectWithFlash(w, r, shared.FlashSuccess, MessageRemoved)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	cartID, _ := strconv.ParseInt(r.PostFormValue("cartId"), 10, 64)
	err := h.service.Checkout(r.Context(), cartID)
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, shared.FlashSuccess, MessageOrderCreated)
	case errors.Is(err, ErrMissingCart):
		h.redirectWithFlash(w, r, shared.FlashError, MessageMissingCart)
	case guard.Unauthorized(w, r, err):
	default:
		h.logger.Warn("create order", slog.Int64("cart_id", cartID), slog.Any("error", err))
		h.redirectWithFlash(w, r, shared.FlashError, MessageOrderFailed)
	}
}

func parseServiceID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "serviceID"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	viewData := view.NewTemplateData(r, h.csrf, "Cart", data)
	if err := h.templates.RenderStatus(w, status, "pages/cart.html", viewData); err != nil {
		h.logger.Error("render cart", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, cartPath, http.StatusSeeOther)
}
