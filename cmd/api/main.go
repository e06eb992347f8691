package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/docs"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/cache"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/collab"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/config"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/database"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/database/migration"
	handlers "github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/http/handler"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/http/middleware"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration/amazon"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration/anthropic"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration/facebook"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration/openai"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration/searchconsole"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/jobs"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/otel"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/repository/postgres"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/service"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/storage"
)

// @title Brain API Gateway
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.Local

	ctx := context.Background()
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Token and presence cache
	redis, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redis.Close()

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Repositories
	connRepo := postgres.NewConnectionPostgres(db)
	approvalRepo := postgres.NewApprovalPostgres(db)
	shipmentRepo := postgres.NewShipmentPostgres(db)
	assetRepo := postgres.NewAssetPostgres(db)

	// Integration modules: OAuth manager plus one connector per vendor
	oauthMgr := integration.NewOAuthManager(cfg.Integrations, connRepo, redis)
	registry := integration.NewRegistry()
	for _, family := range []amazon.Family{
		amazon.Ads, amazon.DSP, amazon.Fresh,
		amazon.Business, amazon.Logistics, amazon.BrandRegistry,
	} {
		registry.Register(amazon.New(family, cfg.Integrations, oauthMgr))
	}
	registry.Register(facebook.New(cfg.Integrations, oauthMgr))
	registry.Register(searchconsole.New(cfg.Integrations, oauthMgr))

	openaiClient := openai.New(cfg.Integrations)
	anthropicClient := anthropic.New(cfg.Integrations)
	registry.Register(openaiClient)
	registry.Register(anthropicClient)

	// Services
	hub := collab.NewHub(redis)
	insightSvc := service.NewInsightService(anthropicClient, openaiClient)
	approvalSvc := service.NewApprovalService(approvalRepo, cfg.HITL, hub)
	fulfillmentSvc := service.NewFulfillmentService(shipmentRepo)
	assetSvc := service.NewAssetService(objStore, assetRepo)

	// Background jobs: HITL expiry sweep and shipment status poller
	runner := jobs.NewRunner(loc)
	if err := runner.AddApprovalSweep(cfg.HITL.SweepSpec, approvalSvc); err != nil {
		log.Fatalf("failed to schedule approval sweep: %v", err)
	}
	if err := runner.AddShipmentPoller(cfg.Fulfillment.PollSpec, fulfillmentSvc); err != nil {
		log.Fatalf("failed to schedule shipment poller: %v", err)
	}
	runner.Start()
	defer runner.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	// Tenant middleware binds X-Tenant-ID into the request context
	app.Use(middleware.Tenant(cfg.DefaultTenant))
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to initialize prometheus middleware: %v", err)
	}
	app.Use(promMW.Handler())

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, handlers.Deps{
		DB:          db,
		Cache:       redis,
		Registry:    registry,
		OAuth:       oauthMgr,
		Approvals:   approvalSvc,
		Fulfillment: fulfillmentSvc,
		Assets:      assetSvc,
		Insights:    insightSvc,
		Hub:         hub,
		Presence:    redis,
	})

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

	// Serve until interrupted, then drain connections
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
