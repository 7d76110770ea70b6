package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/config"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/database"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/handlers"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/jobqueue"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/logging"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/worker"

	_ "github.com/rngSwoop/split-sheet-webapp-sub000/docs/api" // Swagger docs
)

// @title Split Sheet API
// @version 1.0.0
// @description Royalty split sheets for songwriters, with notifications and account deletion
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/rngSwoop/split-sheet-webapp

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

// queueCapacity bounds the in-memory deletion queue
const queueCapacity = 1024

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLog := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Connect to database
	db, err := database.Connect(cfg, appLog)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	provider, err := services.NewAuthorizerProvider(cfg, appLog)
	if err != nil {
		log.Fatalf("Failed to initialize authorizer: %v", err)
	}

	// Deletion queue; redis when configured so jobs survive a restart
	var queue jobqueue.Queue
	var queuePinger services.Pinger
	if cfg.RedisURL != "" {
		rq, err := jobqueue.NewRedisQueue(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to open redis queue: %v", err)
		}
		queue, queuePinger = rq, rq
		appLog.Info("using redis deletion queue")
	} else {
		queue = jobqueue.NewMemoryQueue(queueCapacity)
		appLog.Info("using in-memory deletion queue")
	}
	defer queue.Close()

	notifier := services.NewNotifier(db, appLog)
	splits := services.NewSplitService(db, notifier, appLog)
	deletions := services.NewDeletionService(db, queue, appLog)
	invites := services.NewInviteService(db, appLog)
	inbox := services.NewInboxService(db)
	pipeline := services.NewPipeline(db, provider, appLog, cfg.DeletionStaleAfter)

	deletionWorker := worker.New(queue, pipeline, deletions, worker.Config{
		Concurrency:    cfg.DeletionWorkers,
		ResumeInterval: cfg.DeletionResumeInterval,
	}, appLog)
	if err := deletionWorker.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start deletion worker: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(appLog),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("splitsheet")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api, followed by the 404 handler
	handlers.Register(app, handlers.Deps{
		Config:    cfg,
		DB:        db,
		Provider:  provider,
		Queue:     queuePinger,
		Splits:    splits,
		Deletions: deletions,
		Invites:   invites,
		Inbox:     inbox,
		Log:       appLog,
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		appLog.Info("gracefully shutting down")
		_ = app.Shutdown()
	}()

	// Start server
	appLog.Info("starting server", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		appLog.Error("server failed", "error", err)
	}

	// In-flight pipelines are cancelled and resume on the next start
	deletionWorker.Stop()
	appLog.Info("server stopped")
}
