package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/audit"
	"github.com/meinhoongagan/maternity-app/rbac"
	"github.com/meinhoongagan/maternity-app/utils"
)

const principalKey = "principal"

// Authorize gates a route on req. A caller that is identified but lacks the
// permissions gets a 403 and exactly one PERMISSION_DENIED audit row for
// entity.
func Authorize(gate *rbac.Gate, recorder *audit.Recorder, db *gorm.DB, entity string, req rbac.Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, denial := gate.Authorize(c, req)
		if denial != nil {
			RecordDenial(c, recorder, db, entity, denial)
			return denial.AsError()
		}

		SetPrincipal(c, principal)
		return c.Next()
	}
}

// RecordDenial writes the PERMISSION_DENIED row for a 403 that identified
// the caller. Other denials leave no row.
func RecordDenial(c *fiber.Ctx, recorder *audit.Recorder, db *gorm.DB, entity string, denial *rbac.Denial) {
	if denial.Status != http.StatusForbidden || denial.User == nil {
		return
	}
	recorder.Record(db.WithContext(c.UserContext()), audit.Entry{
		ActorID:   &denial.User.ID,
		RoleLabel: strings.Join(denial.User.RoleNames(), ","),
		Entity:    entity,
		Action:    audit.ActionPermissionDenied,
		After: map[string]interface{}{
			"requeridos": denial.Required,
			"metodo":     c.Method(),
			"ruta":       c.Path(),
		},
		IP:        utils.ClientIP(c),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
}

// SetPrincipal stores an authorized principal for the handlers that follow.
func SetPrincipal(c *fiber.Ctx, p *rbac.Principal) {
	c.Locals(principalKey, p)
}

// CurrentPrincipal returns the principal stored by Authorize.
func CurrentPrincipal(c *fiber.Ctx) *rbac.Principal {
	p, _ := c.Locals(principalKey).(*rbac.Principal)
	return p
}
