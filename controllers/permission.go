package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/audit"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/utils"
)

// GetRoles returns all roles with their permissions
func (h *Handler) GetRoles(c *fiber.Ctx) error {
	var roles []models.Role
	if err := h.db(c).Preload("Permissions").Order("name").Find(&roles).Error; err != nil {
		return err
	}
	return ok(c, roles)
}

// GetPermissions returns the permission catalogue
func (h *Handler) GetPermissions(c *fiber.Ctx) error {
	var permissions []models.Permission
	if err := h.db(c).Order("code").Find(&permissions).Error; err != nil {
		return err
	}
	return ok(c, permissions)
}

// AssignPermissionToRole assigns a permission to a role
func (h *Handler) AssignPermissionToRole(c *fiber.Ctx) error {
	roleID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}

	var input struct {
		PermisoID uint   `json:"permisoId"`
		Codigo    string `json:"codigo"`
	}
	if err := parseBody(c, &input); err != nil {
		return err
	}

	// Check if role exists
	var role models.Role
	if err := h.db(c).Preload("Permissions").First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("Rol no encontrado")
		}
		return err
	}

	// Permission can be given by id or by code
	var permission models.Permission
	tx := h.db(c)
	switch {
	case input.PermisoID != 0:
		tx = tx.Where("id = ?", input.PermisoID)
	case input.Codigo != "":
		tx = tx.Where("code = ?", input.Codigo)
	default:
		return utils.Validation("permisoId o codigo es requerido")
	}
	if err := tx.First(&permission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("Permiso no encontrado")
		}
		return err
	}

	for _, p := range role.Permissions {
		if p.ID == permission.ID {
			return utils.Validation("El permiso ya está asignado al rol")
		}
	}

	before := permissionCodes(role.Permissions)
	if err := h.db(c).Model(&role).Association("Permissions").Append(&permission); err != nil {
		return err
	}

	entry := h.auditEntry(c, EntityRole, role.ID, audit.ActionUpdate)
	entry.Before = map[string]interface{}{"permisos": before}
	entry.After = map[string]interface{}{"permisos": permissionCodes(role.Permissions)}
	h.Audit.Record(h.db(c), entry)

	return okMessage(c, role, "Permiso asignado")
}

func permissionCodes(perms []models.Permission) []string {
	codes := make([]string, 0, len(perms))
	for _, p := range perms {
		codes = append(codes, p.Code)
	}
	return codes
}
