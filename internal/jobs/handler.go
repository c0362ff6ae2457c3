package jobs

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jobhub/employer-console/internal/backend"
	"github.com/jobhub/employer-console/internal/guard"
	"github.com/jobhub/employer-console/internal/shared"
	"github.com/jobhub/employer-console/internal/view"
)

// Flash texts of the delete action.
const (
	MessageDeleted      = "Job deleted successfully."
	MessageDeleteFailed = "Failed to delete job."
)

const listPath = "/employer/jobs"

// Handler serves the job pages.
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

// MountRoutes registers job routes under the protected /employer group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/jobs", h.list)
	r.Get("/jobs/new", h.showCreate)
	r.Post("/jobs", h.create)
	r.Get("/jobs/{id}/edit", h.showEdit)
	r.Post("/jobs/{id}", h.update)
	r.Post("/jobs/{id}/delete", h.remove)
}

type listData struct {
	Page  Page
	Error string
}

type formData struct {
	ID         int64
	Form       backend.JobInput
	Categories []backend.Category
	Errors     map[string]string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := strings.TrimSpace(r.URL.Query().Get("q"))
	page, err := h.service.List(r.Context(), filter, shared.PageFromRequest(r))
	if err != nil {
		if guard.Unauthorized(w, r, err) {
			return
		}
		h.logger.Error("list jobs", slog.Any("error", err))
		h.render(w, r, http.StatusBadGateway, "pages/jobs.html", "Jobs", listData{Page: Page{Filter: filter}, Error: "Failed to load jobs."})
		return
	}
	h.render(w, r, http.StatusOK, "pages/jobs.html", "Jobs", listData{Page: page})
}

func (h *Handler) showCreate(w http.ResponseWriter, r *http.Request) {
	h.showForm(w, r, http.StatusOK, formData{})
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	job, err := h.service.Find(r.Context(), id)
	if err != nil {
		if guard.Unauthorized(w, r, err) {
			return
		}
		if errors.Is(err, ErrJobNotFound) {
			h.redirectWithFlash(w, r, listPath, shared.FlashError, shared.UserSafeMessage(shared.ErrNotFound))
			return
		}
		h.logger.Error("load job", slog.Any("error", err))
		h.redirectWithFlash(w, r, listPath, shared.FlashError, "Failed to load data.")
		return
	}
	h.showForm(w, r, http.StatusOK, formData{ID: id, Form: InputFromJob(job)})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, 0)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.submit(w, r, id)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, id int64) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := parseJobForm(r)
	data := formData{ID: id, Form: form, Errors: map[string]string{}}
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				data.Errors[fieldErr.Field()] = "This field is required."
			}
		}
		h.showForm(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	var (
		result backend.JobResult
		err    error
	)
	if id == 0 {
		result, err = h.service.Create(r.Context(), form)
	} else {
		result, err = h.service.Update(r.Context(), id, form)
	}
	if err != nil {
		if guard.Unauthorized(w, r, err) {
			return
		}
		h.logger.Warn("save job", slog.Int64("job_id", id), slog.Any("error", err))
		data.Errors["general"] = shared.UserSafeMessage(err)
		h.showForm(w, r, http.StatusBadGateway, data)
		return
	}
	if !result.Success {
		data.Errors["general"] = result.Message
		h.showForm(w, r, http.StatusUnprocessableEntity, data)
		return
	}
	h.redirectWithFlash(w, r, listPath, shared.FlashSuccess, result.Message)
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
		h.logger.Warn("delete job", slog.Int64("job_id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, listPath, shared.FlashError, MessageDeleteFailed)
		return
	}
	h.redirectWithFlash(w, r, listPath, shared.FlashSuccess, MessageDeleted)
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request, status int, data formData) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.logger.Warn("load categories", slog.Any("error", err))
		if data.Errors == nil {
			data.Errors = map[string]string{}
		}
		if data.Errors["general"] == "" {
			data.Errors["general"] = "Failed to load data."
		}
	}
	data.Categories = categories
	title := "Create job"
	if data.ID != 0 {
		title = "Update job"
	}
	h.render(w, r, status, "pages/job_form.html", title, data)
}

func parseJobForm(r *http.Request) backend.JobInput {
	categoryID, _ := strconv.ParseInt(r.PostFormValue("categoryId"), 10, 64)
	quantity, _ := strconv.Atoi(r.PostFormValue("quantity"))
	return backend.JobInput{
		JobName:             strings.TrimSpace(r.PostFormValue("jobName")),
		Experience:          strings.TrimSpace(r.PostFormValue("experience")),
		Price:               strings.TrimSpace(r.PostFormValue("price")),
		ApplicationDeadline: strings.TrimSpace(r.PostFormValue("applicationDeadline")),
		RecruitmentDetails:  strings.TrimSpace(r.PostFormValue("recruitmentDetails")),
		CategoryID:          categoryID,
		Ranker:              strings.TrimSpace(r.PostFormValue("ranker")),
		Quantity:            quantity,
		WorkingForm:         strings.TrimSpace(r.PostFormValue("workingForm")),
		Gender:              strings.TrimSpace(r.PostFormValue("gender")),
	}
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
