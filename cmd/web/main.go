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

	"github.com/AdamBeresnev/bracket-master/internal/config"
	"github.com/AdamBeresnev/bracket-master/internal/db"
	"github.com/AdamBeresnev/bracket-master/internal/middleware"
	"github.com/AdamBeresnev/bracket-master/internal/service"
	"github.com/AdamBeresnev/bracket-master/internal/spectator"
	"github.com/AdamBeresnev/bracket-master/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type application struct {
	sessionManager *scs.SessionManager
	userStore      *store.UserStore
	users          *service.UserService
	tournaments    *service.TournamentService
	roster         *service.RosterService
	commentator    service.Commentator
	hub            *spectator.Hub
	registry       *prometheus.Registry
	providers      []string
}

func newApplication(cfg *config.Config, database *sqlx.DB, hub *spectator.Hub, providers []string) *application {
	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)
	sessionManager.Cookie.Secure = !cfg.IsDevelopment()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := service.NewMetrics(registry)

	userStore := store.NewUserStore(database)
	tournaments := service.NewTournamentService(database, store.NewTournamentStore(database),
		service.WithPublisher(hub),
		service.WithMetrics(metrics),
		service.WithRand(service.NewRand(cfg.Seed)),
		service.WithStrictValidation(cfg.IsDevelopment()),
	)

	return &application{
		sessionManager: sessionManager,
		userStore:      userStore,
		users:          service.NewUserService(database, userStore),
		tournaments:    tournaments,
		roster:         service.NewRosterService(tournaments),
		commentator:    service.NewHTTPCommentator(cfg.Commentary, metrics),
		hub:            hub,
		registry:       registry,
		providers:      providers,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer database.Close()

	providers := middleware.InitAuth(cfg.OAuth)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := spectator.NewHub()
	go hub.Run(ctx)

	app := newApplication(cfg, database, hub, providers)
	if cfg.Seed != nil {
		slog.Warn("using a fixed random seed, draws are reproducible", "seed", *cfg.Seed)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newRouter(app),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
