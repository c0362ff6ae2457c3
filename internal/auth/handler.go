package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jobhub/employer-console/internal/backend"
	"github.com/jobhub/employer-console/internal/identity"
	"github.com/jobhub/employer-console/internal/platform/httpx"
	"github.com/jobhub/employer-console/internal/shared"
	"github.com/jobhub/employer-console/internal/view"
)

// HomePath is where a logged in employer lands.
const HomePath = "/employer/index"

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/register", h.showRegister)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

type registerPageData struct {
	Form      registerForm
	Addresses []backend.Address
	Errors    map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if identity.Current(r.Context()).Authenticated() {
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "pages/login.html", "Log in", loginPageData{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				errs[fieldErr.Field()] = fieldMessage(fieldErr)
			}
		}
	}

	if len(errs) == 0 {
		creds := backend.LoginRequest{Email: form.Email, Password: form.Password}
		employer, err := h.service.Login(r.Context(), creds, sess, identity.FromContext(r.Context()))
		if err == nil {
			name := strings.TrimSpace(employer.FirstName + " " + employer.LastName)
			if name == "" {
				name = employer.Email
			}
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Welcome back, " + name + "."})
			http.Redirect(w, r, HomePath, http.StatusSeeOther)
			return
		}
		h.logger.Warn("login failed", slog.String("email", form.Email), slog.Any("error", err))
		errs["general"] = LoginMessage(err)
	}

	form.Password = ""
	h.render(w, r, http.StatusBadRequest, "pages/login.html", "Log in", loginPageData{Form: form, Errors: errs})
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, http.StatusOK, registerPageData{})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	filename, avatar, err := httpx.FormFile(r, "avatar")
	if err != nil {
		if errors.Is(err, httpx.ErrUploadTooLarge) {
			h.renderRegister(w, r, http.StatusRequestEntityTooLarge, registerPageData{Errors: map[string]string{"Avatar": "The image is too large."}})
			return
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := registerForm{
		Email:         strings.TrimSpace(r.PostFormValue("email")),
		Password:      r.PostFormValue("password"),
		FirstName:     strings.TrimSpace(r.PostFormValue("firstName")),
		LastName:      strings.TrimSpace(r.PostFormValue("lastName")),
		BirthDate:     strings.TrimSpace(r.PostFormValue("birthDate")),
		Gender:        strings.TrimSpace(r.PostFormValue("gender")),
		Telephone:     strings.TrimSpace(r.PostFormValue("telephone")),
		AddressID:     strings.TrimSpace(r.PostFormValue("addressId")),
		CompanyName:   strings.TrimSpace(r.PostFormValue("companyName")),
		Scale:         strings.TrimSpace(r.PostFormValue("scale")),
		FieldActivity: strings.TrimSpace(r.PostFormValue("fieldActivity")),
	}
	data := registerPageData{Form: form, Errors: map[string]string{}}
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				data.Errors[fieldErr.Field()] = fieldMessage(fieldErr)
			}
		}
		data.Form.Password = ""
		h.renderRegister(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	reg := backend.Registration{
		Email:         form.Email,
		Password:      form.Password,
		FirstName:     form.FirstName,
		LastName:      form.LastName,
		BirthDate:     form.BirthDate,
		Gender:        form.Gender,
		Telephone:     form.Telephone,
		AddressID:     form.AddressID,
		CompanyName:   form.CompanyName,
		Scale:         form.Scale,
		FieldActivity: form.FieldActivity,
	}
	if len(avatar) > 0 {
		reg.Avatar = &backend.Upload{Filename: filename, Data: avatar}
	}
	message, err := h.service.Register(r.Context(), reg)
	if err != nil {
		h.logger.Warn("register employer", slog.String("email", form.Email), slog.Any("error", err))
		data.Errors["general"] = shared.UserSafeMessage(err)
		data.Form.Password = ""
		h.renderRegister(w, r, http.StatusBadRequest, data)
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: message})
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	h.service.Logout(sess, identity.FromContext(r.Context()))
	if sess != nil && h.sessionManager != nil {
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) renderRegister(w http.ResponseWriter, r *http.Request, status int, data registerPageData) {
	addresses, err := h.service.Addresses(r.Context())
	if err != nil {
		h.logger.Warn("load addresses", slog.Any("error", err))
	}
	data.Addresses = addresses
	h.render(w, r, status, "pages/register.html", "Register", data)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	viewData := view.NewTemplateData(r, h.csrfManager, title, data)
	if err := h.templates.RenderStatus(w, status, name, viewData); err != nil {
		h.logger.Error("render auth page", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Must be at least " + fe.Param() + " characters."
	default:
		return "This field is required."
	}
}
