package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/velvetdesk/agencyops-backend/internal/db"
	"github.com/velvetdesk/agencyops-backend/internal/handlers"
	"github.com/velvetdesk/agencyops-backend/internal/hints"
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/middleware"
	"github.com/velvetdesk/agencyops-backend/internal/observability"
	"github.com/velvetdesk/agencyops-backend/internal/server"
)

type App struct {
	cfg          *Config
	log          *logger.Logger
	postgres     db.PostgresService
	httpServer   *http.Server
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	bootstrapLog, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	cfg := LoadConfig(bootstrapLog)
	log := bootstrapLog.With("app", "agencyops")

	if cfg.JWTSecretKey == "" {
		return nil, errors.New("JWT_SECRET_KEY is required")
	}

	observability.Init()
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "agencyops-backend",
		Environment: cfg.Mode,
		Version:     cfg.Version,
	})

	postgres, err := db.NewPostgresService(log)
	if err != nil {
		return nil, err
	}
	if err := postgres.AutoMigrateAll(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	repos := NewRepos(postgres.DB(), log)
	svcs := NewServices(cfg, repos, log)

	keywords := hints.LoadKeywordCategories(log)
	assembler := hints.NewAssembler(repos.Fans, repos.Transactions, svcs.Messages, keywords, log)
	cache := hints.NewHintCache()
	limiter := hints.NewRateLimiter()
	orchestrator := hints.NewOrchestrator(assembler, svcs.Advice, cache, repos.HintCallLogs, repos.LifecycleEvents, log)

	authMW := middleware.NewAuthMiddleware(svcs.Auth, log)
	router := server.NewRouter(server.RouterConfig{
		Log:            log,
		Mode:           cfg.Mode,
		AllowedOrigins: cfg.AllowedOrigins,
		AuthMW:         authMW,
		Healthcheck:    handlers.NewHealthcheckHandler(log),
		Metrics:        handlers.NewMetricsHandler(),
		Auth:           handlers.NewAuthHandler(svcs.Auth, log),
		Hints:          handlers.NewHintsHandler(repos.Creators, orchestrator, cache, limiter, log),
	})

	return &App{
		cfg:      cfg,
		log:      log,
		postgres: postgres,
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", a.httpServer.Addr, "mode", a.cfg.Mode)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		a.log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Warn("http shutdown incomplete", "error", err)
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.log.Warn("otel shutdown incomplete", "error", err)
		}
	}
	if err := a.postgres.Close(); err != nil {
		a.log.Warn("postgres close failed", "error", err)
	}
	a.log.Sync()
	return nil
}
