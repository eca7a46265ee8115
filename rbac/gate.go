package rbac

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/metrics"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/session"
	"github.com/meinhoongagan/maternity-app/utils"
)

// Principal is an authorized caller.
type Principal struct {
	User        models.User
	Roles       []string
	Permissions PermissionSet
	Session     *session.Session
}

// RoleLabel is the role description stored on audit rows.
func (p *Principal) RoleLabel() string {
	return strings.Join(p.Roles, ",")
}

func (p *Principal) Can(code string) bool {
	return p.Permissions.Has(code)
}

// Denial is a negative decision. User is set when the caller was identified
// but lacked permissions, so the denial can be audited.
type Denial struct {
	Status   int
	Message  string
	User     *models.User
	Required []string
	Err      error
}

func (d *Denial) Error() string {
	if d.Err != nil {
		return d.Message + ": " + d.Err.Error()
	}
	return d.Message
}

// AsError converts the denial into the error handlers return. Internal
// failures keep their cause so the top-level handler logs it as a 500.
func (d *Denial) AsError() error {
	if d.Status >= http.StatusInternalServerError && d.Err != nil {
		return d.Err
	}
	return utils.NewError(d.Status, d.Message)
}

const (
	MsgNoSession      = "No autenticado"
	MsgUserNotFound   = "Usuario no encontrado"
	MsgUserInactive   = "Usuario inactivo"
	MsgNoPermission   = "No tiene permisos para realizar esta acción"
	msgInternalDenial = "Error al verificar permisos"
)

// Gate makes the single authorization decision used by API routes and pages.
type Gate struct {
	db       *gorm.DB
	resolver *Resolver
	sessions *session.Manager
}

func NewGate(db *gorm.DB, resolver *Resolver, sessions *session.Manager) *Gate {
	return &Gate{db: db, resolver: resolver, sessions: sessions}
}

func (g *Gate) Sessions() *session.Manager {
	return g.sessions
}

// Authorize reads the request's session cookie and evaluates req.
func (g *Gate) Authorize(c *fiber.Ctx, req Requirement) (*Principal, *Denial) {
	sess, err := g.sessions.Read(c)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) || errors.Is(err, session.ErrInvalidSession) {
			metrics.AuthDecisions.WithLabelValues("unauthenticated").Inc()
			return nil, &Denial{Status: http.StatusUnauthorized, Message: MsgNoSession}
		}
		metrics.AuthDecisions.WithLabelValues("error").Inc()
		return nil, &Denial{Status: http.StatusInternalServerError, Message: msgInternalDenial, Err: err}
	}
	return g.Check(c.UserContext(), sess, req)
}

// Check evaluates req for an already-read session: load the active user,
// resolve its permissions, then compare. It has no side effects.
func (g *Gate) Check(ctx context.Context, sess *session.Session, req Requirement) (*Principal, *Denial) {
	if sess == nil {
		metrics.AuthDecisions.WithLabelValues("unauthenticated").Inc()
		return nil, &Denial{Status: http.StatusUnauthorized, Message: MsgNoSession}
	}

	var user models.User
	res := g.db.WithContext(ctx).Preload("Roles").Where("id = ?", sess.UserID).Limit(1).Find(&user)
	if res.Error != nil {
		metrics.AuthDecisions.WithLabelValues("error").Inc()
		return nil, &Denial{Status: http.StatusInternalServerError, Message: msgInternalDenial, Err: res.Error}
	}
	if res.RowsAffected == 0 {
		metrics.AuthDecisions.WithLabelValues("not_found").Inc()
		return nil, &Denial{Status: http.StatusNotFound, Message: MsgUserNotFound}
	}
	if !user.Active {
		metrics.AuthDecisions.WithLabelValues("inactive").Inc()
		return nil, &Denial{Status: http.StatusForbidden, Message: MsgUserInactive}
	}

	roles := user.RoleNames()
	perms, err := g.resolver.ResolvePermissions(ctx, roles, user.ID)
	if err != nil {
		metrics.AuthDecisions.WithLabelValues("error").Inc()
		return nil, &Denial{Status: http.StatusInternalServerError, Message: msgInternalDenial, Err: err}
	}

	if !req.Satisfied(perms) {
		metrics.AuthDecisions.WithLabelValues("forbidden").Inc()
		return nil, &Denial{
			Status:   http.StatusForbidden,
			Message:  MsgNoPermission,
			User:     &user,
			Required: req.Permissions,
		}
	}

	metrics.AuthDecisions.WithLabelValues("allowed").Inc()
	return &Principal{User: user, Roles: roles, Permissions: perms, Session: sess}, nil
}
