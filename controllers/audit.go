package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/maternity-app/audit"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/utils"
)

// ListAudit queries the audit trail, newest first.
func (h *Handler) ListAudit(c *fiber.Ctx) error {
	var filter audit.Filter

	userID, byUser, err := utils.QueryID(c, "usuarioId")
	if err != nil {
		return err
	}
	if byUser {
		filter.UserID = &userID
	}
	filter.Entity = c.Query("entidad")
	filter.Action = c.Query("accion")
	filter.From, filter.To, err = utils.DateRange(c.Query("fechaInicio"), c.Query("fechaFin"))
	if err != nil {
		return err
	}

	page, err := utils.Paginate[models.AuditEntry](c.UserContext(), h.DB, utils.ParsePagination(c), utils.ListQuery{
		Filter:  filter.Apply,
		Preload: []string{"User"},
		Order:   "created_at DESC, id DESC",
	})
	if err != nil {
		return err
	}
	return c.JSON(page)
}
