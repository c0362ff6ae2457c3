package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jobhub/employer-console/internal/identity"
	"github.com/jobhub/employer-console/internal/shared"
	"github.com/jobhub/employer-console/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// User is the employer shown in the navigation bar.
type User struct {
	Authenticated bool
	Email         string
	FirstName     string
	LastName      string
	Avatar        string
}

// DisplayName prefers the persisted names, then the email.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flashes     []shared.FlashMessage
	CurrentPath string
	User        User
	Data        any
}

// NewTemplateData fills the shared fields from the request: the CSRF token,
// the pending flashes (consumed) and the navigation user.
func NewTemplateData(r *http.Request, csrf *shared.CSRFManager, title string, data any) TemplateData {
	sess := shared.SessionFromContext(r.Context())
	var token string
	if csrf != nil && sess != nil {
		token, _ = csrf.EnsureToken(r.Context(), sess)
	}
	var flashes []shared.FlashMessage
	for msg := sess.PopFlash(); msg != nil; msg = sess.PopFlash() {
		flashes = append(flashes, *msg)
	}
	current := identity.Current(r.Context())
	user := User{
		Authenticated: current.Authenticated(),
		Email:         sess.Get(shared.KeyEmail),
		FirstName:     sess.Get(shared.KeyFirstName),
		LastName:      sess.Get(shared.KeyLastName),
		Avatar:        sess.Get(shared.KeyAvatar),
	}
	if user.Email == "" {
		user.Email = current.Claims.Email
	}
	if user.FirstName == "" && user.LastName == "" {
		user.FirstName, user.LastName = current.Claims.FirstName, current.Claims.LastName
	}
	return TemplateData{
		Title:       title,
		CSRFToken:   token,
		Flashes:     flashes,
		CurrentPath: r.URL.Path,
		User:        user,
		Data:        data,
	}
}

var moneyPrinter = message.NewPrinter(language.Vietnamese)

// FormatMoney renders an amount in Vietnamese dong, e.g. "1.500.000 ₫".
func FormatMoney(v any) string {
	return moneyPrinter.Sprintf("%d ₫", int64(cast.ToFloat64(v)+0.5))
}

// FormatDate renders a time or an ISO date string as "02 Jan 2006".
func FormatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006 15:04")
	case string:
		if t == "" {
			return ""
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.Format("02 Jan 2006")
			}
		}
		return t
	default:
		return cast.ToString(v)
	}
}

// AvatarURL turns the persisted base64 avatar into an image source.
func AvatarURL(avatar string) template.URL {
	if avatar == "" {
		return "/static/img/avatar.svg"
	}
	if strings.HasPrefix(avatar, "data:") || strings.HasPrefix(avatar, "http") {
		return template.URL(avatar)
	}
	return template.URL("data:image/jpeg;base64," + avatar)
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate":  FormatDate,
		"formatMoney": FormatMoney,
		"avatarURL":   AvatarURL,
		"add":         func(a, b int) int { return a + b },
		"sub":         func(a, b int) int { return a - b },
		"lower":       strings.ToLower,
		"isActive": func(current, prefix string) bool {
			return current == prefix || strings.HasPrefix(current, prefix+"/")
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData. Output is buffered so a
// failing template never leaves a half-written page.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
