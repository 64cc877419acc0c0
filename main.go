// Command taskman runs the task-tracking web application: server-rendered
// pages plus a small JSON API, both sitting behind cookie-session
// authentication. Storage and session backends are selected by
// configuration, so one binary serves both the all-in-memory development
// setup and the Postgres/Redis production one.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/user/taskman-go/api"
	"github.com/user/taskman-go/auth"
	"github.com/user/taskman-go/config"
	"github.com/user/taskman-go/db"
	"github.com/user/taskman-go/session"
	"github.com/user/taskman-go/tasks"
	"github.com/user/taskman-go/web"
)

func main() {
	// A missing .env is fine outside development.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Storage backend: one parameterized wiring instead of parallel route
	// files per backend.
	var credentials auth.CredentialStore
	var taskRepo tasks.Repository
	if cfg.StorageBackend == config.StoragePostgres {
		pool, err := db.NewPool(cfg.Database)
		if err != nil {
			logger.Fatal("failed to create database pool", zap.Error(err))
		}
		defer pool.Close()

		if err := db.RunMigrations(cfg.Database, "./migrations"); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}

		credentials = auth.NewPostgresCredentialStore(pool)
		taskRepo = tasks.NewPostgresRepository(pool)
	} else {
		credentials = auth.NewMemoryCredentialStore()
		taskRepo = tasks.NewMemoryRepository()
	}

	// Session backend.
	var sessions session.Store
	if cfg.Session.Backend == config.SessionRedis {
		client, err := session.NewRedisClient(cfg.Session.RedisAddr, cfg.Session.RedisPassword)
		if err != nil {
			logger.Fatal("failed to connect to session store", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		sessions = session.NewRedisStore(client, cfg.Session.TTL)
	} else {
		memStore := session.NewMemoryStore(cfg.Session.TTL)
		defer memStore.Close()
		sessions = memStore
	}

	renderer, err := web.NewRenderer(logger)
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	authService := auth.NewService(credentials)
	taskService := tasks.NewService(taskRepo)

	app := &application{
		sessions:     sessions,
		authHandlers: auth.NewHandlers(authService, sessions, cfg.Session.TTL, renderer, logger),
		taskHandlers: tasks.NewHandlers(taskService, renderer, logger),
		apiHandlers:  api.NewHandlers(authService, taskService, cfg.Server.Environment, cfg.StorageBackend, logger),
		renderer:     renderer,
		logger:       logger,
		startedAt:    time.Now(),
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.buildRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("storage", cfg.StorageBackend),
			zap.String("sessions", cfg.Session.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
}

// newLogger picks the zap preset matching the environment.
func newLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
