package profile

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jobhub/employer-console/internal/backend"
	"github.com/jobhub/employer-console/internal/guard"
	"github.com/jobhub/employer-console/internal/platform/httpx"
	"github.com/jobhub/employer-console/internal/shared"
	"github.com/jobhub/employer-console/internal/view"
)

// MessageUpdated is flashed after a successful update.
const MessageUpdated = "Profile updated successfully."

const profilePath = "/employer/profile"

// Handler serves the profile page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, validator: validator.New()}
}

// MountRoutes registers profile routes under the protected /employer group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profile", h.show)
	r.Post("/profile", h.update)
}

type pageData struct {
	Employer  *backend.Employer
	Form      backend.ProfileUpdate
	Addresses []backend.Address
	Errors    map[string]string
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	employer, err := h.service.Get(r.Context(), sess.Get(shared.KeyEmail))
	if err != nil {
		if guard.Unauthorized(w, r, err) {
			return
		}
		h.logger.Error("load profile", slog.Any("error", err))
		h.render(w, r, http.StatusBadGateway, pageData{Errors: map[string]string{"general": "Failed to load profile."}})
		return
	}
	h.render(w, r, http.StatusOK, pageData{Employer: employer, Form: UpdateFromEmployer(employer)})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	filename, avatar, err := httpx.FormFile(r, "avatar")
	if err != nil {
		if errors.Is(err, httpx.ErrUploadTooLarge) {
			h.render(w, r, http.StatusRequestEntityTooLarge, pageData{Errors: map[string]string{"Avatar": "The image is too large."}})
			return
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := backend.ProfileUpdate{
		FirstName:     strings.TrimSpace(r.PostFormValue("firstName")),
		LastName:      strings.TrimSpace(r.PostFormValue("lastName")),
		Gender:        strings.TrimSpace(r.PostFormValue("gender")),
		Telephone:     strings.TrimSpace(r.PostFormValue("telephone")),
		BirthDate:     strings.TrimSpace(r.PostFormValue("birthDate")),
		CompanyName:   strings.TrimSpace(r.PostFormValue("companyName")),
		Scale:         strings.TrimSpace(r.PostFormValue("scale")),
		FieldActivity: strings.TrimSpace(r.PostFormValue("fieldActivity")),
		AddressID:     strings.TrimSpace(r.PostFormValue("addressId")),
	}
	if len(avatar) > 0 {
		form.Avatar = &backend.Upload{Filename: filename, Data: avatar}
	}

	data := pageData{Form: form, Errors: map[string]string{}}
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				data.Errors[fieldErr.Field()] = "This field is required."
			}
		}
		h.render(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	if _, err := h.service.Update(r.Context(), sess.Get(shared.KeyEmail), form); err != nil {
		if guard.Unauthorized(w, r, err) {
			return
		}
		h.logger.Warn("update profile", slog.Any("error", err))
		data.Errors["general"] = shared.UserSafeMessage(err)
		h.render(w, r, http.StatusBadGateway, data)
		return
	}
	sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: MessageUpdated})
	http.Redirect(w, r, profilePath, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	addresses, err := h.service.Addresses(r.Context())
	if err != nil {
		h.logger.Warn("load addresses", slog.Any("error", err))
	}
	data.Addresses = addresses
	viewData := view.NewTemplateData(r, h.csrf, "Profile", data)
	if err := h.templates.RenderStatus(w, status, "pages/profile.html", viewData); err != nil {
		h.logger.Error("render profile", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
