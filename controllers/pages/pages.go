// Package pages renders the server-side dashboard. Every page asks the same
// rbac.Gate as the JSON API and, when denied, renders an in-place
// "Acceso denegado" fragment with the denial's status instead of redirecting.
package pages

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/maternity-app/controllers"
	"github.com/meinhoongagan/maternity-app/middleware"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/rbac"
	"github.com/meinhoongagan/maternity-app/session"
	"github.com/meinhoongagan/maternity-app/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageFiles = []string{
	"login", "dashboard", "madres", "madre_nueva", "partos",
	"urni", "urni_alta", "auditoria", "roles", "reportes_rem",
}

var funcs = template.FuncMap{
	"fecha": func(t time.Time) string {
		return utils.ToLocal(t).Format("02-01-2006 15:04")
	},
	"fechaPtr": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return utils.ToLocal(*t).Format("02-01-2006 15:04")
	},
}

// MenuItem is a navigation entry shown when the principal holds Perm.
type MenuItem struct {
	Label string
	Href  string
	Perm  string
}

var menu = []MenuItem{
	{Label: "Inicio", Href: "/dashboard"},
	{Label: "Madres", Href: "/dashboard/madres", Perm: models.PermMotherView},
	{Label: "Partos", Href: "/dashboard/partos", Perm: models.PermBirthView},
	{Label: "URNI", Href: "/dashboard/urni", Perm: models.PermURNIView},
	{Label: "Auditoría", Href: "/dashboard/auditoria", Perm: models.PermAuditView},
	{Label: "Roles", Href: "/dashboard/admin/roles", Perm: models.PermRolesManage},
	{Label: "Reportes REM", Href: "/dashboard/reportes-rem", Perm: models.PermREMReportView},
}

// View is the data every template receives.
type View struct {
	Title     string
	Principal *rbac.Principal
	Menu      []MenuItem
	Denial    *rbac.Denial
	Error     string
	Query     string
	Data      interface{}
}

type Handler struct {
	api       *controllers.Handler
	templates map[string]*template.Template
}

// New parses the embedded templates. Each page gets its own set so that the
// pages can all define "content".
func New(api *controllers.Handler) (*Handler, error) {
	h := &Handler{api: api, templates: make(map[string]*template.Template, len(pageFiles))}
	for _, name := range pageFiles {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		h.templates[name] = t
	}
	return h, nil
}

func (h *Handler) render(c *fiber.Ctx, status int, name string, view *View) error {
	t, ok := h.templates[name]
	if !ok {
		return errors.New("unknown page " + name)
	}
	if view.Principal != nil {
		view.Menu = menuFor(view.Principal)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", view); err != nil {
		return err
	}
	c.Status(status)
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func menuFor(p *rbac.Principal) []MenuItem {
	items := make([]MenuItem, 0, len(menu))
	for _, m := range menu {
		if m.Perm == "" || p.Can(m.Perm) {
			items = append(items, m)
		}
	}
	return items
}

// guard runs the shared authorization decision for a page and audits
// insufficient-permission denials against entity. When it returns a nil
// principal the denial page has already been written.
func (h *Handler) guard(c *fiber.Ctx, name, title, entity string, req rbac.Requirement) (*rbac.Principal, error) {
	sess, err := h.api.Sessions.Read(c)
	if err != nil && !errors.Is(err, session.ErrNoSession) && !errors.Is(err, session.ErrInvalidSession) {
		return nil, err
	}

	principal, denial := h.api.Gate.Check(c.UserContext(), sess, req)
	if denial != nil {
		if denial.Status >= http.StatusInternalServerError {
			return nil, denial.AsError()
		}
		middleware.RecordDenial(c, h.api.Audit, h.api.DB, entity, denial)
		return nil, h.render(c, denial.Status, name, &View{Title: title, Denial: denial})
	}

	middleware.SetPrincipal(c, principal)
	return principal, nil
}

// fail renders err on the page when it is a client error and returns it
// otherwise.
func (h *Handler) fail(c *fiber.Ctx, name string, view *View, err error) error {
	var appErr *utils.AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		view.Error = appErr.Message
		return h.render(c, appErr.Status, name, view)
	}
	return err
}
