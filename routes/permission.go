package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/maternity-app/controllers"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/rbac"
)

// SetupRBACRoutes configures role, permission, user and staff routes
func SetupRBACRoutes(app *fiber.App, h *controllers.Handler) {
	api := app.Group("/api")

	// Any signed-in user
	api.Get("/roles", authorize(h, controllers.EntityRole, rbac.SessionOnly()), h.GetRoles)
	api.Get("/profesionales", authorize(h, controllers.EntityStaff, rbac.SessionOnly()), h.ListProfessionals)

	// Role administration
	api.Get("/permisos", authorize(h, controllers.EntityRole, rbac.Require(models.PermRolesManage)), h.GetPermissions)
	api.Post("/roles/:id/permisos", authorize(h, controllers.EntityRole, rbac.Require(models.PermRolesManage)), h.AssignPermissionToRole)

	// User administration
	users := api.Group("/usuarios", authorize(h, controllers.EntityUser, rbac.Require(models.PermUsersManage)))
	users.Get("/", h.ListUsers)
	users.Post("/", h.CreateUser)
	users.Put("/:id/roles", h.SetUserRoles)
	users.Patch("/:id/estado", h.SetUserStatus)
}
