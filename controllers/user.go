package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/audit"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/utils"
)

const minPasswordLength = 8

// ListUsers returns a page of staff accounts with their roles.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	page, err := utils.Paginate[models.User](c.UserContext(), h.DB, utils.ParsePagination(c), utils.ListQuery{
		Filter: func(tx *gorm.DB) *gorm.DB {
			if q != "" {
				like := utils.ContainsPattern(q)
				tx = tx.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, like, like)
			}
			return tx
		},
		Preload: []string{"Roles"},
		Order:   "name, id",
	})
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handler) loadRoles(c *fiber.Ctx, names []string) ([]models.Role, error) {
	if len(names) == 0 {
		return nil, utils.Validation("Debe asignar al menos un rol")
	}
	var roles []models.Role
	if err := h.db(c).Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[n] = struct{}{}
	}
	if len(roles) != len(seen) {
		return nil, utils.Validation("Rol inválido")
	}
	return roles, nil
}

// CreateUser provisions a staff account with a password and roles.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var input struct {
		Email    string   `json:"email"`
		Nombre   string   `json:"nombre"`
		Rut      string   `json:"rut"`
		Password string   `json:"password"`
		Roles    []string `json:"roles"`
	}
	if err := parseBody(c, &input); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Nombre)
	rut := utils.NormalizeRut(input.Rut)
	if email == "" || name == "" || rut == "" {
		return utils.Validation("email, nombre y rut son requeridos")
	}
	if !utils.ValidRut(rut) {
		return utils.Validation("RUT inválido")
	}
	if len(input.Password) < minPasswordLength {
		return utils.Validation("La contraseña debe tener al menos 8 caracteres")
	}

	var existing int64
	if err := h.db(c).Model(&models.User{}).Where("email = ? OR rut = ?", email, rut).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return utils.Validation("Ya existe un usuario con ese email o RUT")
	}

	roles, err := h.loadRoles(c, input.Roles)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.User{
		Email:    email,
		Name:     name,
		Rut:      rut,
		Password: string(hash),
		Active:   true,
		Roles:    roles,
	}
	if err := h.db(c).Omit("Roles.*").Create(&user).Error; err != nil {
		return err
	}

	entry := h.auditEntry(c, EntityUser, user.ID, audit.ActionCreate)
	entry.After = user
	h.Audit.Record(h.db(c), entry)

	return created(c, user, "Usuario creado")
}

func (h *Handler) findUser(c *fiber.Ctx) (*models.User, error) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := h.db(c).Preload("Roles").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Usuario no encontrado")
		}
		return nil, err
	}
	return &user, nil
}

// SetUserRoles replaces a user's role assignment.
func (h *Handler) SetUserRoles(c *fiber.Ctx) error {
	user, err := h.findUser(c)
	if err != nil {
		return err
	}
	var input struct {
		Roles []string `json:"roles"`
	}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	roles, err := h.loadRoles(c, input.Roles)
	if err != nil {
		return err
	}

	before := user.RoleNames()
	if err := h.db(c).Model(user).Association("Roles").Replace(roles); err != nil {
		return err
	}
	user.Roles = roles

	entry := h.auditEntry(c, EntityUser, user.ID, audit.ActionUpdate)
	entry.Before = map[string]interface{}{"roles": before}
	entry.After = map[string]interface{}{"roles": user.RoleNames()}
	h.Audit.Record(h.db(c), entry)

	return okMessage(c, user, "Roles actualizados")
}

// SetUserStatus activates or deactivates a user. Accounts are never deleted.
func (h *Handler) SetUserStatus(c *fiber.Ctx) error {
	user, err := h.findUser(c)
	if err != nil {
		return err
	}
	var input struct {
		Activo *bool `json:"activo"`
	}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if input.Activo == nil {
		return utils.Validation("activo es requerido")
	}
	if self := actorID(c); self != nil && *self == user.ID && !*input.Activo {
		return utils.Validation("No puede desactivar su propio usuario")
	}

	before := user.Active
	if err := h.db(c).Model(&models.User{}).Where("id = ?", user.ID).Update("active", *input.Activo).Error; err != nil {
		return err
	}
	user.Active = *input.Activo

	entry := h.auditEntry(c, EntityUser, user.ID, audit.ActionUpdate)
	entry.Before = map[string]interface{}{"activo": before}
	entry.After = map[string]interface{}{"activo": user.Active}
	h.Audit.Record(h.db(c), entry)

	return okMessage(c, user, "Estado actualizado")
}
