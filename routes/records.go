package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/maternity-app/controllers"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/rbac"
)

// SetupRecordRoutes configures mother, birth and newborn routes
func SetupRecordRoutes(app *fiber.App, h *controllers.Handler) {
	api := app.Group("/api")

	mothers := api.Group("/madres")
	mothers.Get("/", authorize(h, controllers.EntityMother, rbac.Require(models.PermMotherView)), h.ListMothers)
	mothers.Post("/", authorize(h, controllers.EntityMother, rbac.Require(models.PermMotherCreate)), h.CreateMother)
	mothers.Get("/:id", authorize(h, controllers.EntityMother, rbac.Require(models.PermMotherView)), h.GetMother)
	mothers.Put("/:id", authorize(h, controllers.EntityMother, rbac.Require(models.PermMotherUpdate)), h.UpdateMother)

	births := api.Group("/partos")
	births.Get("/", authorize(h, controllers.EntityBirth, rbac.Require(models.PermBirthView)), h.ListBirths)
	births.Post("/", authorize(h, controllers.EntityBirth, rbac.Require(models.PermBirthCreate)), h.CreateBirth)
	births.Get("/:id", authorize(h, controllers.EntityBirth, rbac.Require(models.PermBirthView)), h.GetBirth)

	newborns := api.Group("/recien-nacidos")
	newborns.Get("/", authorize(h, controllers.EntityNewborn, rbac.Require(models.PermNewbornView)), h.ListNewborns)
	newborns.Post("/", authorize(h, controllers.EntityNewborn, rbac.Require(models.PermNewbornCreate)), h.CreateNewborn)
	newborns.Get("/:id", authorize(h, controllers.EntityNewborn, rbac.Require(models.PermNewbornView)), h.GetNewborn)

	api.Get("/auditoria", authorize(h, controllers.EntityAudit, rbac.Require(models.PermAuditView)), h.ListAudit)
	api.Get("/reportes-rem", authorize(h, controllers.EntityREMReport, rbac.Require(models.PermREMReportView)), h.REMReport)
}
