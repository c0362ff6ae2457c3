package app

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jobhub/employer-console/internal/applications"
	"github.com/jobhub/employer-console/internal/auth"
	"github.com/jobhub/employer-console/internal/cart"
	"github.com/jobhub/employer-console/internal/catalog"
	"github.com/jobhub/employer-console/internal/guard"
	"github.com/jobhub/employer-console/internal/home"
	"github.com/jobhub/employer-console/internal/jobs"
	"github.com/jobhub/employer-console/internal/observability"
	"github.com/jobhub/employer-console/internal/profile"
	"github.com/jobhub/employer-console/internal/shared"
	"github.com/jobhub/employer-console/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Guard          *guard.Guard
	Metrics        *observability.Metrics
	// HealthCheck reports whether the session store is reachable.
	HealthCheck func(context.Context) error

	AuthHandler         *auth.Handler
	HomeHandler         *home.Handler
	JobsHandler         *jobs.Handler
	ApplicationsHandler *applications.Handler
	CatalogHandler      *catalog.Handler
	CartHandler         *cart.Handler
	ProfileHandler      *profile.Handler
}

// NewRouter constructs the chi.Router with dashboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.HealthCheck != nil {
			if err := params.HealthCheck(r.Context()); err != nil {
				params.Logger.Warn("health check", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, auth.HomePath, http.StatusSeeOther)
	})

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}

	role := ""
	if params.Config != nil {
		role = params.Config.RequiredRole
	}
	r.Route("/employer", func(r chi.Router) {
		if params.Guard != nil {
			r.Use(params.Guard.Require(role))
		}
		if params.HomeHandler != nil {
			params.HomeHandler.MountRoutes(r)
		}
		if params.JobsHandler != nil {
			params.JobsHandler.MountRoutes(r)
		}
		if params.ApplicationsHandler != nil {
			params.ApplicationsHandler.MountRoutes(r)
		}
		if params.CatalogHandler != nil {
			params.CatalogHandler.MountRoutes(r)
		}
		if params.CartHandler != nil {
			params.CartHandler.MountRoutes(r)
		}
		if params.ProfileHandler != nil {
			params.ProfileHandler.MountRoutes(r)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("static assets unavailable", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler caches static assets in the browser for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
