package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/audit"
	"github.com/meinhoongagan/maternity-app/config"
	"github.com/meinhoongagan/maternity-app/middleware"
	"github.com/meinhoongagan/maternity-app/rbac"
	"github.com/meinhoongagan/maternity-app/session"
	"github.com/meinhoongagan/maternity-app/utils"
)

// Entity names recorded on audit rows.
const (
	EntityMother    = "Madre"
	EntityBirth     = "Parto"
	EntityNewborn   = "RecienNacido"
	EntityEpisode   = "EpisodioURNI"
	EntityReport    = "InformeAlta"
	EntityAudit     = "Auditoria"
	EntityUser      = "Usuario"
	EntityRole      = "Rol"
	EntityStaff     = "Profesional"
	EntitySession   = "Sesion"
	EntityREMReport = "ReporteREM"
)

// Handler holds the dependencies shared by every API route.
type Handler struct {
	DB       *gorm.DB
	Gate     *rbac.Gate
	Resolver *rbac.Resolver
	Sessions *session.Manager
	Audit    *audit.Recorder
	Config   *config.Config
	Log      logrus.FieldLogger
}

func (h *Handler) db(c *fiber.Ctx) *gorm.DB {
	return h.DB.WithContext(c.UserContext())
}

// auditEntry prefills actor and request metadata for the current principal.
func (h *Handler) auditEntry(c *fiber.Ctx, entity string, id uint, action string) audit.Entry {
	e := audit.Entry{
		Entity:    entity,
		Action:    action,
		IP:        utils.ClientIP(c),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
	if id != 0 {
		e.EntityID = strconv.FormatUint(uint64(id), 10)
	}
	if p := middleware.CurrentPrincipal(c); p != nil {
		actor := p.User.ID
		e.ActorID = &actor
		e.RoleLabel = p.RoleLabel()
	}
	return e
}

// actorID returns the current principal's user id, if any.
func actorID(c *fiber.Ctx) *uint {
	if p := middleware.CurrentPrincipal(c); p != nil {
		id := p.User.ID
		return &id
	}
	return nil
}

// parseBody decodes the request body into dst. Form and XML bodies go
// through fiber's parser; anything else is read as JSON whatever its
// Content-Type.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	ctype := strings.ToLower(c.Get(fiber.HeaderContentType))
	var err error
	switch {
	case strings.HasPrefix(ctype, fiber.MIMEApplicationForm),
		strings.HasPrefix(ctype, fiber.MIMEMultipartForm),
		strings.HasSuffix(strings.Split(ctype, ";")[0], "xml"):
		err = c.BodyParser(dst)
	default:
		err = c.App().Config().JSONDecoder(c.Body(), dst)
	}
	if err != nil {
		return utils.Validation("Cuerpo de la solicitud inválido: se esperaba JSON")
	}
	return nil
}

func created(c *fiber.Ctx, data interface{}, message string) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data, "message": message})
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{"data": data})
}

func okMessage(c *fiber.Ctx, data interface{}, message string) error {
	return c.JSON(fiber.Map{"data": data, "message": message})
}
