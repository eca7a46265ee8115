package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/maternity-app/controllers"
	"github.com/meinhoongagan/maternity-app/controllers/pages"
	"github.com/meinhoongagan/maternity-app/metrics"
	"github.com/meinhoongagan/maternity-app/middleware"
	"github.com/meinhoongagan/maternity-app/rbac"
)

// Setup registers every route of the application.
func Setup(app *fiber.App, h *controllers.Handler) error {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	SetupAuthRoutes(app, h)
	SetupDevRoutes(app, h)
	SetupRecordRoutes(app, h)
	SetupURNIRoutes(app, h)
	SetupRBACRoutes(app, h)

	p, err := pages.New(h)
	if err != nil {
		return err
	}
	SetupPageRoutes(app, p)
	return nil
}

// authorize gates a route on req and audits insufficient-permission denials
// against entity.
func authorize(h *controllers.Handler, entity string, req rbac.Requirement) fiber.Handler {
	return middleware.Authorize(h.Gate, h.Audit, h.DB, entity, req)
}
