package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/rbac"
	"github.com/meinhoongagan/maternity-app/utils"
)

// The routes in this file are mounted behind middleware.DevOnly. Each handler
// re-checks the environment as well, so a routing mistake still fails closed.

func (h *Handler) devGuard() error {
	if h.Config == nil || !h.Config.IsDevelopment() {
		return utils.Forbidden("Endpoint disponible solo en desarrollo")
	}
	return nil
}

// DevUsers lists active users to pick from on the development login screen.
func (h *Handler) DevUsers(c *fiber.Ctx) error {
	if err := h.devGuard(); err != nil {
		return err
	}

	var users []models.User
	if err := h.db(c).Preload("Roles").Where("active = ?", true).Order("name").Find(&users).Error; err != nil {
		return err
	}

	type devUser struct {
		ID     uint     `json:"id"`
		Email  string   `json:"email"`
		Nombre string   `json:"nombre"`
		Roles  []string `json:"roles"`
	}
	out := make([]devUser, 0, len(users))
	for i := range users {
		out = append(out, devUser{
			ID:     users[i].ID,
			Email:  users[i].Email,
			Nombre: users[i].Name,
			Roles:  users[i].RoleNames(),
		})
	}
	return ok(c, out)
}

// DevLogin opens a session for any active user without a password.
func (h *Handler) DevLogin(c *fiber.Ctx) error {
	if err := h.devGuard(); err != nil {
		return err
	}

	var input struct {
		Email string `json:"email"`
	}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return utils.Validation("email es requerido")
	}

	var user models.User
	res := h.db(c).Preload("Roles").Where("email = ?", email).Limit(1).Find(&user)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(rbac.MsgUserNotFound)
	}
	if !user.Active {
		return utils.Forbidden(rbac.MsgUserInactive)
	}

	return h.startSession(c, &user, "dev")
}

func joinRoles(roles []string) string {
	return strings.Join(roles, ",")
}
