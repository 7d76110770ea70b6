package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/config"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/middleware"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/utils"
	"gorm.io/gorm"
)

// Deps are the collaborators the API routes need
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Provider  services.IdentityProvider
	Queue     services.Pinger
	Splits    *services.SplitService
	Deletions *services.DeletionService
	Invites   *services.InviteService
	Inbox     *services.InboxService
	Log       *slog.Logger

	// Auth replaces session authentication when set
	Auth fiber.Handler
}

// Register mounts the API under /api
func Register(app *fiber.App, deps Deps) {
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	health := &HealthHandler{
		Config:   deps.Config,
		DB:       deps.DB,
		Provider: deps.Provider,
		Queue:    deps.Queue,
		Log:      deps.Log,
	}
	api.Get("/health", health.Health)

	auth := deps.Auth
	if auth == nil {
		auth = middleware.Authenticate(deps.Provider, deps.DB)
	}

	splitHandler := &SplitHandler{Splits: deps.Splits, Log: deps.Log}
	profileHandler := &ProfileHandler{Deletions: deps.Deletions, Log: deps.Log}
	notificationHandler := &NotificationHandler{Inbox: deps.Inbox, Log: deps.Log}
	inviteHandler := &InviteHandler{Invites: deps.Invites, Log: deps.Log}
	adminHandler := &AdminHandler{Deletions: deps.Deletions, Invites: deps.Invites, Log: deps.Log}

	// Split sheet routes
	splits := api.Group("/splits", auth)
	splits.Post("/", splitHandler.CreateSplit)
	splits.Get("/", splitHandler.ListSplits)
	splits.Get("/:id", splitHandler.GetSplit)
	splits.Put("/:id", splitHandler.UpdateSplit)
	splits.Patch("/:id/contributor", splitHandler.PatchContributor)
	splits.Post("/:id/finalize", splitHandler.FinalizeSplit)
	splits.Post("/:id/dispute", splitHandler.DisputeSplit)
	splits.Post("/:id/notify", splitHandler.NotifySplit)
	splits.Delete("/:id", splitHandler.DeleteSplit)

	// Account deletion routes
	profiles := api.Group("/profiles", auth)
	profiles.Post("/delete-account", profileHandler.RequestDeletion)
	profiles.Get("/delete-account", profileHandler.GetDeletionProgress)
	profiles.Delete("/delete-account", profileHandler.CancelDeletion)

	// Notification inbox routes
	notifications := api.Group("/notifications", auth)
	notifications.Get("/", notificationHandler.ListNotifications)
	notifications.Post("/read", notificationHandler.MarkManyRead)
	notifications.Patch("/:id/read", notificationHandler.MarkRead)

	api.Post("/invites/redeem", auth, inviteHandler.RedeemInvite)

	// Admin-only routes
	admin := api.Group("/admin", auth, middleware.RequireAdmin())
	admin.Post("/invites", adminHandler.CreateInvite)
	admin.Get("/deletion-jobs", adminHandler.ListDeletionJobs)
	admin.Post("/deletion-jobs/:jobId/stop", adminHandler.StopDeletionJob)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"error":     "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})
}

// ErrorHandler renders errors that escape a handler, such as those returned
// by middleware, in the standard envelope.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return utils.HandleError(c, log, err)
	}
}
