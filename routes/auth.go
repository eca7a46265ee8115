package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/meinhoongagan/maternity-app/controllers"
	"github.com/meinhoongagan/maternity-app/middleware"
	"github.com/meinhoongagan/maternity-app/utils"
)

const (
	loginAttempts = 20
	loginWindow   = time.Minute
)

func loginLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        loginAttempts,
		Expiration: loginWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return utils.ClientIP(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.NewError(fiber.StatusTooManyRequests, "Demasiados intentos, intente más tarde")
		},
	})
}

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App, h *controllers.Handler) {
	auth := app.Group("/api/auth")

	// Public routes
	auth.Post("/login", loginLimiter(), h.Login)

	// Protected routes
	auth.Get("/me", middleware.Protected(h.Sessions, h.Log), h.Me)
	auth.Post("/logout", middleware.Protected(h.Sessions, h.Log), h.Logout)
}

// SetupDevRoutes mounts the development-only helpers. Outside development
// they answer 403 before any handler runs.
func SetupDevRoutes(app *fiber.App, h *controllers.Handler) {
	dev := app.Group("/api/dev", middleware.DevOnly(h.Config, h.Log))
	dev.Get("/users", h.DevUsers)
	dev.Post("/login", h.DevLogin)
}
