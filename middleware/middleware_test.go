package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/audit"
	"github.com/meinhoongagan/maternity-app/config"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/rbac"
	"github.com/meinhoongagan/maternity-app/session"
	"github.com/meinhoongagan/maternity-app/testutil"
	"github.com/meinhoongagan/maternity-app/utils"
)

type fixture struct {
	db       *gorm.DB
	sessions *session.Manager
	app      *fiber.App
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	log, _ := testutil.NewLogger()
	sessions := session.NewManager("test-secret", time.Hour, false, nil)
	gate := rbac.NewGate(gdb, rbac.NewResolver(gdb), sessions)
	recorder := audit.NewRecorder(log)

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler(log)})
	app.Use(RequestLogger(log))
	app.Get("/urni", Authorize(gate, recorder, gdb, "EpisodioURNI", rbac.Require(models.PermURNIDischarge)), func(c *fiber.Ctx) error {
		return c.SendString(CurrentPrincipal(c).User.Email)
	})
	app.Get("/me", Protected(sessions, log), func(c *fiber.Ctx) error {
		return c.SendString(CurrentSession(c).Email)
	})

	return &fixture{db: gdb, sessions: sessions, app: app}
}

func (f *fixture) get(t *testing.T, path string, user *models.User) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != nil {
		token, err := f.sessions.Encode(&session.Session{UserID: user.ID, Email: user.Email})
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestAuthorizeWithoutSession(t *testing.T) {
	f := setup(t)

	resp, body := f.get(t, "/urni", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"No autenticado"}`, body)
	assert.Zero(t, testutil.CountAudit(t, f.db, audit.ActionPermissionDenied))
}

func TestAuthorizeDeniedIsAuditedOnce(t *testing.T) {
	f := setup(t)
	nurse := testutil.CreateUser(t, f.db, "Enfermera", models.RoleNurse)

	resp, _ := f.get(t, "/urni", nurse)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var rows []models.AuditEntry
	require.NoError(t, f.db.Where("action = ?", audit.ActionPermissionDenied).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, nurse.ID, *rows[0].UserID)
	assert.Equal(t, "EpisodioURNI", rows[0].Entity)
	assert.Equal(t, models.RoleNurse, rows[0].RoleLabel)
	assert.Equal(t, "/urni", rows[0].After["ruta"])
}

func TestAuthorizeInactiveUserNotAudited(t *testing.T) {
	f := setup(t)
	doctor := testutil.CreateUser(t, f.db, "Médico", models.RoleDoctor)
	testutil.Deactivate(t, f.db, doctor)

	resp, _ := f.get(t, "/urni", doctor)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, testutil.CountAudit(t, f.db, audit.ActionPermissionDenied))
}

func TestAuthorizeAllowed(t *testing.T) {
	f := setup(t)
	doctor := testutil.CreateUser(t, f.db, "Médico", models.RoleDoctor)

	resp, body := f.get(t, "/urni", doctor)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, doctor.Email, body)
}

func TestProtected(t *testing.T) {
	f := setup(t)

	resp, _ := f.get(t, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "not-a-token"})
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	user := testutil.CreateUser(t, f.db, "Administrativo", models.RoleAdministrative)
	resp, body := f.get(t, "/me", user)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, user.Email, body)
}

func TestDevOnly(t *testing.T) {
	log, hook := testutil.NewLogger()
	for _, env := range []string{"production", "staging", "", "Development"} {
		cfg := &config.Config{Environment: env}
		app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler(log)})
		app.Get("/dev", DevOnly(cfg, log), func(c *fiber.Ctx) error { return c.SendString("ok") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dev", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "environment %q", env)
	}
	assert.NotEmpty(t, hook.AllEntries())

	cfg := &config.Config{Environment: config.EnvDevelopment}
	app := fiber.New()
	app.Get("/dev", DevOnly(cfg, log), func(c *fiber.Ctx) error { return c.SendString("ok") })
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dev", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
