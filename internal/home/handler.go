// Package home serves the employer landing page.
package home

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jobhub/employer-console/internal/identity"
	"github.com/jobhub/employer-console/internal/shared"
	"github.com/jobhub/employer-console/internal/view"
)

// Handler renders the landing page.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	now       func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, templates: templates, csrf: csrf, now: time.Now}
}

// MountRoutes registers the landing page under the protected /employer group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.redirect)
	r.Get("/index", h.index)
}

type pageData struct {
	Greeting  string
	Role      string
	ExpiresAt time.Time
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/employer/index", http.StatusSeeOther)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	current := identity.Current(r.Context())
	viewData := view.NewTemplateData(r, h.csrf, "Dashboard", nil)
	data := pageData{
		Greeting:  Greeting(h.now(), viewData.User.DisplayName()),
		Role:      current.Claims.Role,
		ExpiresAt: current.Claims.ExpiresAt,
	}
	viewData.Data = data
	if err := h.templates.Render(w, "pages/index.html", viewData); err != nil {
		h.logger.Error("render index", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Greeting picks a salutation for the hour of now.
func Greeting(now time.Time, name string) string {
	var salutation string
	switch h := now.Hour(); {
	case h < 12:
		salutation = "Good morning"
	case h < 18:
		salutation = "Good afternoon"
	default:
		salutation = "Good evening"
	}
	if name == "" {
		return salutation + "!"
	}
	return salutation + ", " + name + "!"
}
