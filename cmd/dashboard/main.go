package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jobhub/employer-console/internal/app"
	"github.com/jobhub/employer-console/internal/applications"
	"github.com/jobhub/employer-console/internal/auth"
	"github.com/jobhub/employer-console/internal/backend"
	"github.com/jobhub/employer-console/internal/cart"
	"github.com/jobhub/employer-console/internal/catalog"
	"github.com/jobhub/employer-console/internal/guard"
	"github.com/jobhub/employer-console/internal/home"
	"github.com/jobhub/employer-console/internal/jobs"
	"github.com/jobhub/employer-console/internal/observability"
	"github.com/jobhub/employer-console/internal/platform/cache"
	"github.com/jobhub/employer-console/internal/profile"
	"github.com/jobhub/employer-console/internal/shared"
	"github.com/jobhub/employer-console/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "dashboard_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	client := backend.NewClient(cfg.BackendURL, shared.SessionTokens{},
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithRecorder(metrics),
		backend.WithLogger(logger),
	)

	routeGuard := guard.New(client,
		guard.WithRecorder(metrics),
		guard.WithLogger(logger),
	)

	authHandler := auth.NewHandler(logger, auth.NewService(client, logger), templates, sessionManager, csrfManager)
	homeHandler := home.NewHandler(logger, templates, csrfManager)
	jobsHandler := jobs.NewHandler(logger, jobs.NewService(client), templates, csrfManager)
	applicationsHandler := applications.NewHandler(logger, applications.NewService(client), templates, csrfManager)
	catalogHandler := catalog.NewHandler(logger, catalog.NewService(client), templates, csrfManager)
	cartHandler := cart.NewHandler(logger, cart.NewService(client), templates, csrfManager)
	profileHandler := profile.NewHandler(logger, profile.NewService(client), templates, csrfManager)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		Guard:               routeGuard,
		Metrics:             metrics,
		HealthCheck:         cache.Checker(redisClient),
		AuthHandler:         authHandler,
		HomeHandler:         homeHandler,
		JobsHandler:         jobsHandler,
		ApplicationsHandler: applicationsHandler,
		CatalogHandler:      catalogHandler,
		CartHandler:         cartHandler,
		ProfileHandler:      profileHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("backend", client.BaseURL()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
