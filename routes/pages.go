package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/maternity-app/controllers/pages"
)

// SetupPageRoutes configures the server-rendered dashboard. Pages check
// permissions themselves so that a denial renders in place.
func SetupPageRoutes(app *fiber.App, p *pages.Handler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	})
	app.Get("/login", p.LoginForm)
	app.Post("/login", loginLimiter(), p.Login)
	app.Post("/logout", p.Logout)

	dash := app.Group("/dashboard")
	dash.Get("/", p.Dashboard)
	dash.Get("/madres", p.Mothers)
	dash.Get("/madres/nueva", p.NewMotherForm)
	dash.Post("/madres/nueva", p.CreateMother)
	dash.Get("/partos", p.Births)
	dash.Get("/urni", p.Episodes)
	dash.Get("/urni/:id/alta", p.DischargeForm)
	dash.Post("/urni/:id/alta", p.Discharge)
	dash.Get("/auditoria", p.Audit)
	dash.Get("/admin/roles", p.Roles)
	dash.Get("/reportes-rem", p.REMReports)
}
