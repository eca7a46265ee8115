package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/maternity-app/controllers"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/rbac"
)

// SetupURNIRoutes configures URNI episode and discharge routes
func SetupURNIRoutes(app *fiber.App, h *controllers.Handler) {
	api := app.Group("/api")

	episodes := api.Group("/urni/episodios")
	episodes.Get("/", authorize(h, controllers.EntityEpisode, rbac.Require(models.PermURNIView)), h.ListEpisodes)
	episodes.Post("/", authorize(h, controllers.EntityEpisode, rbac.Require(models.PermURNICreate)), h.AdmitEpisode)
	episodes.Get("/:id", authorize(h, controllers.EntityEpisode, rbac.Require(models.PermURNIView)), h.GetEpisode)
	episodes.Post("/:id/alta", authorize(h, controllers.EntityEpisode, rbac.Require(models.PermURNIDischarge)), h.DischargeEpisode)

	api.Get("/modulo-alta", authorize(h, controllers.EntityReport, rbac.Require(models.PermReportView)), h.ListDischargeModule)
	api.Get("/informes-alta/episodio/:episodioId", authorize(h, controllers.EntityReport, rbac.Require(models.PermReportView)), h.GetDischargeReport)
}
