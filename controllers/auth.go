package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/maternity-app/audit"
	"github.com/meinhoongagan/maternity-app/middleware"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/rbac"
	"github.com/meinhoongagan/maternity-app/session"
	"github.com/meinhoongagan/maternity-app/utils"
)

// Login handles user authentication
func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	input := new(LoginInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	user, err := rbac.Authenticate(c.UserContext(), h.DB, input.Email, input.Password)
	switch {
	case errors.Is(err, rbac.ErrInvalidCredentials):
		return utils.Unauthenticated("Credenciales inválidas")
	case errors.Is(err, rbac.ErrInactiveUser):
		return utils.Forbidden(rbac.MsgUserInactive)
	case err != nil:
		return err
	}

	return h.startSession(c, user, "password")
}

// startSession issues the cookie for user and answers with the session.
func (h *Handler) startSession(c *fiber.Ctx, user *models.User, method string) error {
	sess, err := h.OpenSession(c, user, method)
	if err != nil {
		return err
	}
	return okMessage(c, sess, "Sesión iniciada")
}

// OpenSession resolves the user's permissions, sets the session cookie and
// records the login.
func (h *Handler) OpenSession(c *fiber.Ctx, user *models.User, method string) (*session.Session, error) {
	sess, err := h.Resolver.NewSession(c.UserContext(), user)
	if err != nil {
		return nil, err
	}
	if err := h.Sessions.Issue(c, sess); err != nil {
		return nil, err
	}

	entry := h.auditEntry(c, EntitySession, user.ID, audit.ActionLogin)
	entry.ActorID = &user.ID
	entry.RoleLabel = joinRoles(sess.Roles)
	entry.After = map[string]interface{}{"metodo": method, "expira": sess.ExpiresAt}
	h.Audit.Record(h.db(c), entry)

	return sess, nil
}

// Logout destroys the session cookie and revokes it server-side.
func (h *Handler) Logout(c *fiber.Ctx) error {
	h.CloseSession(c, middleware.CurrentSession(c))
	return c.JSON(fiber.Map{"message": "Sesión cerrada"})
}

// CloseSession clears the cookie, revokes sess and records the logout.
func (h *Handler) CloseSession(c *fiber.Ctx, sess *session.Session) {
	if err := h.Sessions.Destroy(c); err != nil {
		h.Log.WithError(err).Warn("Failed to revoke session")
	}
	if sess == nil {
		return
	}

	entry := h.auditEntry(c, EntitySession, sess.UserID, audit.ActionLogout)
	entry.ActorID = &sess.UserID
	entry.RoleLabel = joinRoles(sess.Roles)
	h.Audit.Record(h.db(c), entry)
}

// Me returns the current session.
func (h *Handler) Me(c *fiber.Ctx) error {
	return ok(c, middleware.CurrentSession(c))
}
