package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jobhub/employer-console/internal/backend"
	"github.com/jobhub/employer-console/internal/guard"
	"github.com/jobhub/employer-console/internal/shared"
	"github.com/jobhub/employer-console/internal/view"
)

// Flash texts.
const (
	MessageAdded           = "Service added to your cart."
	MessageInvalidQuantity = "Quantity must be at least 1."
	MessagePurchaseRemoved = "Service removed from your services."
	MessageRemoveFailed    = "Failed to remove service."
)

const (
	servicesPath   = "/employer/services"
	myServicesPath = "/employer/my-services"
)

// Handler serves the catalog pages.
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

// MountRoutes registers catalog routes under the protected /employer group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/services", h.list)
	r.Get("/services/{id}", h.detail)
	r.Post("/services/{id}/cart", h.addToCart)
	r.Get("/my-services", h.myServices)
	r.Post("/my-services/{id}/delete", h.removePurchase)
}

type listData struct {
	Services []backend.ServicePack
	Error    string
}

type detailData struct {
	Service  *backend.ServicePack
	Quantity int
	Error    string
}

type myServicesData struct {
	Purchases Purchases
	Error     string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.List(r.Context())
	if err != nil {
		if guard.Unauthorized(w, r, err) {
			return
		}
		h.logger.Error("list services", slog.Any("error", err))
		h.render(w, r, http.StatusBadGateway, "pages/services.html", "Services", listData{Error: shared.UserSafeMessage(err)})
		return
	}
	h.render(w, r, http.StatusOK, "pages/services.html", "Services", listData{Services: services})
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	pack, err := h.service.Get(r.Context(), id)
	if err != nil {
		if guard.Unauthorized(w, r, err) {
			return
		}
		h.logger.Warn("load service", slog.Int64("service_id", id), slog.Any("error", err))
		h.render(w, r, http.StatusBadGateway, "pages/service_detail.html", "Service", detailData{Quantity: 1, Error: shared.UserSafeMessage(err)})
		return
	}
	h.render(w, r, http.StatusOK, "pages/service_detail.html", pack.ServiceName, detailData{Service: pack, Quantity: 1})
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	quantity := 1
	if raw := strings.TrimSpace(r.PostFormValue("quantity")); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil {
			q = 0
		}
		quantity = q
	}
	back := r.PostFormValue("return")
	if back != servicesPath {
		back = servicesPath + "/" + strconv.FormatInt(id, 10)
	}

	err := h.service.AddToCart(r.Context(), id, quantity)
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, back, shared.FlashSuccess, MessageAdded)
	case errors.Is(err, ErrInvalidQuantity):
		h.redirectWithFlash(w, r, back, shared.FlashWarning, MessageInvalidQuantity)
	case guard.Unauthorized(w, r, err):
	default:
		h.logger.Warn("add to cart", slog.Int64("service_id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, back, shared.FlashError, shared.UserSafeMessage(err))
	}
}

func (h *Handler) myServices(w http.ResponseWriter, r *http.Request) {
	filter := strings.TrimSpace(r.URL.Query().Get("q"))
	purchases, err := h.service.MyServices(r.Context(), filter, shared.PageFromRequest(r))
	if err != nil {
		if guard.Unauthorized(w, r, err) {
			return
		}
		h.logger.Error("list purchased services", slog.Any("error", err))
		h.render(w, r, http.StatusBadGateway, "pages/my_services.html", "My services", myServicesData{Purchases: Purchases{Filter: filter}, Error: "Failed to load your services."})
		return
	}
	h.render(w, r, http.StatusOK, "pages/my_services.html", "My services", myServicesData{Purchases: purchases})
}

func (h *Handler) removePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.service.RemovePurchase(r.Context(), id); err != nil {
		if guard.Unauthorized(w, r, err) {
			return
		}
		h.logger.Warn("remove purchased service", slog.Int64("service_id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, myServicesPath, shared.FlashError, MessageRemoveFailed)
		return
	}
	h.redirectWithFlash(w, r, myServicesPath, shared.FlashSuccess, MessagePurchaseRemoved)
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	viewData := view.NewTemplateData(r, h.csrf, title, data)
	if err := h.templates.RenderStatus(w, status, name, viewData); err != nil {
		h.logger.Error("render template", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
