package applications

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
	MessageDeleted        = "Application deleted successfully."
	MessageDeleteFailed   = "Failed to delete application."
	MessageStatusUpdated  = "Application status updated."
	MessageStatusRequired = "Choose a status."
)

const listPath = "/employer/applications"

// Handler serves the application pages.
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

// MountRoutes registers application routes under the protected /employer group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/applications", h.list)
	r.Post("/applications/{id}/status", h.updateStatus)
	r.Post("/applications/{id}/delete", h.remove)
}

type listData struct {
	Page  Page
	Error string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	q := Query{
		Filter:  strings.TrimSpace(r.URL.Query().Get("q")),
		Status:  strings.TrimSpace(r.URL.Query().Get("status")),
		AdminID: sess.Get(shared.KeyAdminID),
		Page:    shared.PageFromRequest(r),
	}
	page, err := h.service.List(r.Context(), q)
	if err != nil {
		if guard.Unauthorized(w, r, err) {
			return
		}
		empty := Page{Query: q, Statuses: backend.ApplicationStatuses}
		h.logger.Error("list applications", slog.Any("error", err))
		h.render(w, r, http.StatusBadGateway, listData{Page: empty, Error: "Failed to load applications."})
		return
	}
	h.render(w, r, http.StatusOK, listData{Page: page})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	err := h.service.UpdateStatus(r.Context(), id, r.PostFormValue("status"))
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, shared.FlashSuccess, MessageStatusUpdated)
	case errors.Is(err, ErrStatusRequired):
		h.redirectWithFlash(w, r, shared.FlashWarning, MessageStatusRequired)
	case guard.Unauthorized(w, r, err):
	default:
		h.logger.Warn("update application status", slog.Int64("application_id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, shared.FlashError, shared.UserSafeMessage(err))
	}
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if guard.Unauthorized(w, r, err) {
			return
		}
		h.logger.Warn("delete application", slog.Int64("application_id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, shared.FlashError, MessageDeleteFailed)
		return
	}
	h.redirectWithFlash(w, r, shared.FlashSuccess, MessageDeleted)
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data listData) {
	viewData := view.NewTemplateData(r, h.csrf, "Applications", data)
	if err := h.templates.RenderStatus(w, status, "pages/applications.html", viewData); err != nil {
		h.logger.Error("render applications", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}
