package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pdfshelf/docs"
	"pdfshelf/internal/config"
	"pdfshelf/internal/database"
	"pdfshelf/internal/database/migration"
	"pdfshelf/internal/factory"
	handlers "pdfshelf/internal/http/handler"
	"pdfshelf/internal/http/middleware"
	"pdfshelf/internal/library"
	"pdfshelf/internal/observability/logging"
	"pdfshelf/internal/otel"
	"pdfshelf/internal/store/sqlite"
)

// @title PDF Shelf API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Opt-in OTLP tracing; a noop provider is installed when no endpoint is configured
	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() { _ = shutdownTracing(ctx) }()

	// Open the embedded SQLite library database (via database/sql + otelsql)
	if dir := filepath.Dir(cfg.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("failed to create store directory: %v", err)
		}
	}
	db, err := database.NewSQLite(cfg.Store)
	if err != nil {
		log.Fatalf("failed to open document store: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Store.Path); err != nil {
		log.Fatalf("failed to migrate document store: %v", err)
	}

	// Wire the store, the PDF factory and the library controller
	docStore := sqlite.NewDocumentSQLite(db, logging.NewJSONLogger("store", os.Getenv("LOG_LEVEL")))
	pdfGen := factory.New()
	svc := library.NewService(
		docStore,
		pdfGen,
		time.Duration(cfg.Library.OpenHandleTTLSec)*time.Second,
		logging.NewJSONLogger("library", os.Getenv("LOG_LEVEL")),
	)
	defer svc.Close()

	// Prime the cached view; an unreadable store means the library cannot start
	if err := svc.Refresh(ctx); err != nil {
		log.Fatalf("failed to load library: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.Library.MaxUploadMB * 1024 * 1024,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, svc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	// Loopback by default: the library is a single-device application
	addr := cfg.Host + ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
