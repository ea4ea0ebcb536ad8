package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portsrepo "github.com/SscSPs/gst_return_app/internal/core/ports/repositories"
	"github.com/SscSPs/gst_return_app/internal/core/services"
	"github.com/SscSPs/gst_return_app/internal/handlers"
	"github.com/SscSPs/gst_return_app/internal/middleware"
	"github.com/SscSPs/gst_return_app/internal/platform/analytics"
	"github.com/SscSPs/gst_return_app/internal/platform/catalog"
	"github.com/SscSPs/gst_return_app/internal/platform/config"
	"github.com/SscSPs/gst_return_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/gst_return_app/internal/repositories/memory"
	"github.com/SscSPs/gst_return_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title GST Return API
// @version 1.0
// @description Categorises NZ bank transactions for GST and produces a balanced GST journal.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var containerOpts []services.ContainerOption
	if cfg.CatalogFile != "" {
		def, err := catalog.Load(cfg.CatalogFile)
		if err != nil {
			logger.Error("Failed to load catalog file", slog.String("path", cfg.CatalogFile), slog.String("error", err.Error()))
			os.Exit(1)
		}
		containerOpts = append(containerOpts, services.WithContainerCatalog(def))
		logger.Info("Loaded default catalog", slog.String("path", cfg.CatalogFile), slog.Int("categories", len(def.Categories)))
	}

	var repos portsrepo.RepositoryProvider
	if cfg.DatabaseURL != "" {
		dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.ClosePgxPool(dbPool)
		logger.Info("Database connection pool established.")

		if err := runMigrations(logger, cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		repos = pgsql.NewRepositoryProvider(dbPool)
	} else {
		logger.Warn("No database configured, sessions are kept in memory")
		repos = portsrepo.RepositoryProvider{
			SessionRepo: memory.NewSessionRepository(),
			CatalogRepo: memory.NewCatalogRepository(),
		}
	}

	tracker, err := analytics.NewPosthogTracker(cfg.PostHogAPIKey, cfg.PostHogEndpoint, logger)
	if err != nil {
		logger.Error("Failed to initialize PostHog client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := tracker.Close(); err != nil {
			logger.Error("Failed to flush PostHog events", slog.String("error", err.Error()))
		}
	}()
	containerOpts = append(containerOpts, services.WithContainerTracker(tracker))

	uploadLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Failed to initialize rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	container := services.NewServiceContainer(cfg, repos, containerOpts...)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, uploadLimiter, tracker)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
}

// runMigrations applies every pending "up" migration through a temporary database/sql connection.
func runMigrations(logger *slog.Logger, databaseURL, migrationsPath string) error {
	logger.Info("Running database migrations...")

	// pgx/v5/stdlib driver keeps migrations on the same driver as the pool
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
