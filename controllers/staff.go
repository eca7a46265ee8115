package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/utils"
)

// ListProfessionals returns active users holding one professional role, for
// the attending staff pickers.
func (h *Handler) ListProfessionals(c *fiber.Ctx) error {
	role := c.Query("role")
	if !models.IsProfessionalRole(role) {
		return utils.Validation("role debe ser matrona, medico o enfermera")
	}

	var users []models.User
	err := h.db(c).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ? AND users.active = ?", role, true).
		Order("users.name").
		Find(&users).Error
	if err != nil {
		return err
	}

	type professional struct {
		ID     uint   `json:"id"`
		Nombre string `json:"nombre"`
		Rut    string `json:"rut"`
	}
	out := make([]professional, 0, len(users))
	for _, u := range users {
		out = append(out, professional{ID: u.ID, Nombre: u.Name, Rut: u.Rut})
	}
	return ok(c, out)
}
