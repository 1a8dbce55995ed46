package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/daniswara/kumpul-api/internal/config"
	"github.com/daniswara/kumpul-api/internal/handler"
	"github.com/daniswara/kumpul-api/internal/middleware"
	"github.com/daniswara/kumpul-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	FriendshipHandler   *handler.FriendshipHandler
	ChatHandler         *handler.ChatHandler
	NotificationHandler *handler.NotificationHandler
	PostHandler         *handler.PostHandler
	MarketplaceHandler  *handler.MarketplaceHandler
	ModerationHandler   *handler.ModerationHandler
	AdminHandler        *handler.AdminHandler
	UploadHandler       *handler.UploadHandler
	JWTMiddleware       fiber.Handler
	HealthProbes        []handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 10, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users", jwtMiddleware))
	}

	if deps.FriendshipHandler != nil {
		deps.FriendshipHandler.Register(api.Group("/friends", jwtMiddleware))
	}

	if deps.ChatHandler != nil {
		deps.ChatHandler.Register(api.Group("/chats", jwtMiddleware))
	}

	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications", jwtMiddleware))
	}

	if deps.PostHandler != nil {
		deps.PostHandler.Register(api.Group("/posts", jwtMiddleware))
	}

	if deps.MarketplaceHandler != nil {
		deps.MarketplaceHandler.Register(api.Group("/marketplace", jwtMiddleware))
	}

	if deps.ModerationHandler != nil {
		deps.ModerationHandler.Register(api.Group("/reports", jwtMiddleware))
	}

	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", jwtMiddleware, middleware.RateLimit("uploads", 30, time.Minute))
		deps.UploadHandler.Register(uploads)
	}

	if deps.AdminHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, adminOnly)
		deps.AdminHandler.Register(admin)
	}
}

var adminOnly = middleware.WithAuth(func(c *fiber.Ctx) error {
	return c.Next()
}, middleware.AuthOptions{Role: middleware.AuthRoleAdmin})
