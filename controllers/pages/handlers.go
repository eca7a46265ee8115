package pages

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/audit"
	"github.com/meinhoongagan/maternity-app/controllers"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/rbac"
	"github.com/meinhoongagan/maternity-app/utils"
)

func (h *Handler) db(c *fiber.Ctx) *gorm.DB {
	return h.api.DB.WithContext(c.UserContext())
}

// LoginForm shows the login form, or sends a signed-in user to the dashboard.
func (h *Handler) LoginForm(c *fiber.Ctx) error {
	if _, err := h.api.Sessions.Read(c); err == nil {
		return c.Redirect("/dashboard", http.StatusSeeOther)
	}
	return h.render(c, http.StatusOK, "login", &View{Title: "Iniciar sesión"})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.FormValue("email"))
	view := &View{Title: "Iniciar sesión", Data: email}

	user, err := rbac.Authenticate(c.UserContext(), h.api.DB, email, c.FormValue("password"))
	switch {
	case errors.Is(err, rbac.ErrInvalidCredentials):
		view.Error = "Credenciales inválidas"
		return h.render(c, http.StatusUnauthorized, "login", view)
	case errors.Is(err, rbac.ErrInactiveUser):
		view.Error = rbac.MsgUserInactive
		return h.render(c, http.StatusForbidden, "login", view)
	case err != nil:
		return err
	}

	if _, err := h.api.OpenSession(c, user, "password"); err != nil {
		return err
	}
	return c.Redirect("/dashboard", http.StatusSeeOther)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	sess, _ := h.api.Sessions.Read(c)
	h.api.CloseSession(c, sess)
	return c.Redirect("/login", http.StatusSeeOther)
}

// Dashboard is the landing page; any signed-in user may see it.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	p, err := h.guard(c, "dashboard", "Inicio", controllers.EntitySession, rbac.SessionOnly())
	if p == nil {
		return err
	}

	var stats struct{ OpenEpisodes int64 }
	if p.Can(models.PermURNIView) {
		err := h.db(c).Model(&models.URNIEpisode{}).Where("state = ?", models.EpisodeAdmitted).Count(&stats.OpenEpisodes).Error
		if err != nil {
			return err
		}
	}
	return h.render(c, http.StatusOK, "dashboard", &View{Title: "Inicio", Principal: p, Data: stats})
}

func (h *Handler) Mothers(c *fiber.Ctx) error {
	p, err := h.guard(c, "madres", "Madres", controllers.EntityMother, rbac.Require(models.PermMotherView))
	if p == nil {
		return err
	}

	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	page, err := utils.Paginate[models.Mother](c.UserContext(), h.api.DB, utils.ParsePagination(c), utils.ListQuery{
		Filter: func(tx *gorm.DB) *gorm.DB {
			if q != "" {
				like := utils.ContainsPattern(q)
				tx = tx.Where(`LOWER(first_names) LIKE ? ESCAPE '\' OR LOWER(last_names) LIKE ? ESCAPE '\'`, like, like)
			}
			return tx
		},
		Order: "last_names, first_names",
	})
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "madres", &View{Title: "Madres", Principal: p, Query: q, Data: page})
}

func (h *Handler) NewMotherForm(c *fiber.Ctx) error {
	p, err := h.guard(c, "madre_nueva", "Registrar madre", controllers.EntityMother, rbac.Require(models.PermMotherCreate))
	if p == nil {
		return err
	}
	return h.render(c, http.StatusOK, "madre_nueva", &View{Title: "Registrar madre", Principal: p})
}

func (h *Handler) CreateMother(c *fiber.Ctx) error {
	p, err := h.guard(c, "madre_nueva", "Registrar madre", controllers.EntityMother, rbac.Require(models.PermMotherCreate))
	if p == nil {
		return err
	}
	view := &View{Title: "Registrar madre", Principal: p}

	input := new(controllers.MotherInput)
	if err := c.BodyParser(input); err != nil {
		return h.fail(c, "madre_nueva", view, utils.Validation("Formulario inválido"))
	}
	if _, err := h.api.RegisterMother(c, input); err != nil {
		return h.fail(c, "madre_nueva", view, err)
	}
	return c.Redirect("/dashboard/madres", http.StatusSeeOther)
}

func (h *Handler) Births(c *fiber.Ctx) error {
	p, err := h.guard(c, "partos", "Partos", controllers.EntityBirth, rbac.Require(models.PermBirthView))
	if p == nil {
		return err
	}

	page, err := utils.Paginate[models.Birth](c.UserContext(), h.api.DB, utils.ParsePagination(c), utils.ListQuery{
		Preload: []string{"Mother"},
		Order:   "occurred_at DESC, id DESC",
	})
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "partos", &View{Title: "Partos", Principal: p, Data: page})
}

func (h *Handler) Episodes(c *fiber.Ctx) error {
	p, err := h.guard(c, "urni", "URNI", controllers.EntityEpisode, rbac.Require(models.PermURNIView))
	if p == nil {
		return err
	}

	state := models.EpisodeState(strings.ToUpper(c.Query("estado")))
	page, err := utils.Paginate[models.URNIEpisode](c.UserContext(), h.api.DB, utils.ParsePagination(c), utils.ListQuery{
		Filter: func(tx *gorm.DB) *gorm.DB {
			if state == models.EpisodeAdmitted || state == models.EpisodeDischarged {
				tx = tx.Where("state = ?", state)
			}
			return tx
		},
		Preload: []string{"Newborn.Birth.Mother"},
		Order:   "admitted_at DESC, id DESC",
	})
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "urni", &View{Title: "URNI", Principal: p, Query: string(state), Data: page})
}

func (h *Handler) loadEpisode(c *fiber.Ctx) (*models.URNIEpisode, error) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	var ep models.URNIEpisode
	if err := h.db(c).First(&ep, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Episodio URNI no encontrado")
		}
		return nil, err
	}
	return &ep, nil
}

func (h *Handler) DischargeForm(c *fiber.Ctx) error {
	p, err := h.guard(c, "urni_alta", "Alta URNI", controllers.EntityEpisode, rbac.Require(models.PermURNIDischarge))
	if p == nil {
		return err
	}
	view := &View{Title: "Alta URNI", Principal: p}

	ep, err := h.loadEpisode(c)
	if err != nil {
		return h.fail(c, "urni_alta", view, err)
	}
	view.Data = ep
	return h.render(c, http.StatusOK, "urni_alta", view)
}

func (h *Handler) Discharge(c *fiber.Ctx) error {
	p, err := h.guard(c, "urni_alta", "Alta URNI", controllers.EntityEpisode, rbac.Require(models.PermURNIDischarge))
	if p == nil {
		return err
	}
	view := &View{Title: "Alta URNI", Principal: p}

	ep, err := h.loadEpisode(c)
	if err != nil {
		return h.fail(c, "urni_alta", view, err)
	}
	view.Data = ep

	var input controllers.DischargeInput
	if err := c.BodyParser(&input); err != nil {
		return h.fail(c, "urni_alta", view, utils.Validation("Formulario inválido"))
	}
	if _, err := h.api.Discharge(c, ep.ID, input); err != nil {
		return h.fail(c, "urni_alta", view, err)
	}
	return c.Redirect("/dashboard/urni", http.StatusSeeOther)
}

func (h *Handler) Audit(c *fiber.Ctx) error {
	p, err := h.guard(c, "auditoria", "Auditoría", controllers.EntityAudit, rbac.Require(models.PermAuditView))
	if p == nil {
		return err
	}

	filter := audit.Filter{Entity: c.Query("entidad")}
	page, err := utils.Paginate[models.AuditEntry](c.UserContext(), h.api.DB, utils.ParsePagination(c), utils.ListQuery{
		Filter:  filter.Apply,
		Preload: []string{"User"},
		Order:   "created_at DESC, id DESC",
	})
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "auditoria", &View{Title: "Auditoría", Principal: p, Query: filter.Entity, Data: page})
}

func (h *Handler) Roles(c *fiber.Ctx) error {
	p, err := h.guard(c, "roles", "Roles y permisos", controllers.EntityRole, rbac.Require(models.PermRolesManage))
	if p == nil {
		return err
	}

	var roles []models.Role
	if err := h.db(c).Preload("Permissions").Order("name").Find(&roles).Error; err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "roles", &View{Title: "Roles y permisos", Principal: p, Data: roles})
}

// REMReports shows the current month's counts until the official REM layout
// is implemented.
func (h *Handler) REMReports(c *fiber.Ctx) error {
	p, err := h.guard(c, "reportes_rem", "Reportes REM", controllers.EntityREMReport, rbac.Require(models.PermREMReportView))
	if p == nil {
		return err
	}

	now := utils.ToLocal(time.Now())
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	summary, err := controllers.BuildREMSummary(h.db(c), &from, &to)
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "reportes_rem", &View{Title: "Reportes REM", Principal: p, Data: summary})
}
