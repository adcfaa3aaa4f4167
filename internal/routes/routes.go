package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/storelane/internal/config"
	"github.com/example/storelane/internal/handlers"
	"github.com/example/storelane/internal/middleware"
	"github.com/example/storelane/internal/models"
	"github.com/example/storelane/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, log *zap.Logger) {
	mailer := services.NewMailer(cfg, log)
	images := services.NewLocalImageStore(cfg.UploadDir, cfg.UploadBaseURL, log)

	authHandler := handlers.NewAuthHandler(db, cfg, mailer, images, log)
	resetHandler := handlers.NewPasswordResetHandler(db, cfg, mailer)
	productHandler := handlers.NewProductHandler(db, images)
	cartHandler := handlers.NewCartHandler(db)
	profileHandler := handlers.NewProfileHandler(db, images)
	adminHandler := handlers.NewAdminHandler(db)

	app.Static(cfg.UploadBaseURL, cfg.UploadDir)

	api := app.Group("/api/v1")

	// Public routes
	api.Post("/register", authHandler.Register)
	api.Get("/signup/activate/:token", authHandler.Activate)
	api.Post("/activation-token", authHandler.RequestActivationToken)
	api.Post("/password-reset/create", resetHandler.Create)
	api.Get("/password-reset/:token", resetHandler.Find)
	api.Post("/password-reset", resetHandler.Reset)
	api.Post("/login", authHandler.Login)
	api.Get("/product", productHandler.List)
	api.Get("/product/:id", productHandler.Show)

	// Authenticated routes
	protected := api.Group("", middleware.Auth(db, cfg))
	protected.Get("/logout", authHandler.Logout)
	protected.Get("/profile", profileHandler.Show)
	protected.Patch("/profile-update/:id", profileHandler.Update)

	// Catalog management, agents only
	agent := protected.Group("", middleware.RequireRole(models.RoleAgent))
	agent.Post("/product", productHandler.Create)
	agent.Put("/product/:id", productHandler.Update)
	agent.Delete("/product/:id", productHandler.Destroy)

	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.List)
	cart.Post("/", cartHandler.Add)
	cart.Patch("/update/:id", cartHandler.Update)
	cart.Delete("/remove/:id", cartHandler.Remove)
	cart.Delete("/clear", cartHandler.Clear)

	admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Get("/users", adminHandler.Index)
	admin.Get("/users/:id", adminHandler.Show)
	admin.Patch("/users/:id", adminHandler.Update)
	admin.Delete("/users/:id", adminHandler.Destroy)
}
