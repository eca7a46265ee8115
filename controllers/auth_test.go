package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/maternity-app/audit"
	"github.com/meinhoongagan/maternity-app/db"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/session"
	"github.com/meinhoongagan/maternity-app/testutil"
)

func TestProtectedRoutesRequireSession(t *testing.T) {
	e := setup(t)
	ep := testutil.AdmitNewborn(t, e.db, time.Now().Add(-48*time.Hour))

	routes := []struct {
		method, path string
		body         interface{}
	}{
		{http.MethodGet, "/api/madres", nil},
		{http.MethodPost, "/api/madres", map[string]string{"rut": "12345678-5", "nombres": "Ana", "apellidos": "Rojas"}},
		{http.MethodGet, "/api/partos", nil},
		{http.MethodGet, "/api/recien-nacidos", nil},
		{http.MethodGet, "/api/urni/episodios", nil},
		{http.MethodPost, "/api/urni/episodios/1/alta", nil},
		{http.MethodGet, "/api/modulo-alta", nil},
		{http.MethodGet, "/api/informes-alta/episodio/1", nil},
		{http.MethodGet, "/api/auditoria", nil},
		{http.MethodGet, "/api/profesionales?role=medico", nil},
		{http.MethodGet, "/api/roles", nil},
		{http.MethodGet, "/api/permisos", nil},
		{http.MethodGet, "/api/usuarios", nil},
		{http.MethodPatch, "/api/usuarios/1/estado", map[string]bool{"activo": false}},
		{http.MethodGet, "/api/reportes-rem", nil},
		{http.MethodGet, "/api/auth/me", nil},
		{http.MethodPost, "/api/auth/logout", nil},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			resp, body := e.call(t, r.method, r.path, r.body, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.NotEmpty(t, decode(t, body).Error)
		})
	}

	var reloaded models.URNIEpisode
	require.NoError(t, e.db.First(&reloaded, ep.ID).Error)
	assert.Equal(t, models.EpisodeAdmitted, reloaded.State)
	assert.Equal(t, int64(1), count(t, e.db, &models.Mother{}))
	assert.Zero(t, count(t, e.db, &models.AuditEntry{}))
}

func TestInsufficientPermissionIsDeniedAndAuditedOnce(t *testing.T) {
	e := setup(t)
	nurse := testutil.CreateUser(t, e.db, "Enfermera Soto", models.RoleNurse)

	resp, body := e.call(t, http.MethodPost, "/api/madres", map[string]string{
		"rut": "12345678-5", "nombres": "Ana", "apellidos": "Rojas",
	}, nurse)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.NotEmpty(t, decode(t, body).Error)

	assert.Zero(t, count(t, e.db, &models.Mother{}))
	var rows []models.AuditEntry
	require.NoError(t, e.db.Where("action = ?", audit.ActionPermissionDenied).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, nurse.ID, *rows[0].UserID)
	assert.Equal(t, "Madre", rows[0].Entity)
	assert.Equal(t, models.RoleNurse, rows[0].RoleLabel)
}

func TestDeactivatedUserIsRejected(t *testing.T) {
	e := setup(t)
	midwife := testutil.CreateUser(t, e.db, "Matrona Díaz", models.RoleMidwife)
	testutil.Deactivate(t, e.db, midwife)

	resp, _ := e.call(t, http.MethodGet, "/api/madres", nil, midwife)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, testutil.CountAudit(t, e.db, audit.ActionPermissionDenied))
}

func TestLoginMeLogout(t *testing.T) {
	e := setup(t)
	admin, err := db.EnsureAdmin(e.db, "admin@hospital.test", "Admin", "11111111-1", "clave-segura")
	require.NoError(t, err)

	resp, body := e.call(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@hospital.test", "password": "incorrecta",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Credenciales inválidas", decode(t, body).Error)

	resp, body = e.call(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@hospital.test", "password": "clave-segura",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var sess session.Session
	decodeData(t, body, &sess)
	assert.Equal(t, admin.ID, sess.UserID)
	assert.Contains(t, sess.Roles, models.RoleAdmin)
	assert.Contains(t, sess.Permissions, models.PermURNIDischarge)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int64(1), testutil.CountAudit(t, e.db, audit.ActionLogin))

	req := newRequest(http.MethodGet, "/api/auth/me", cookie)
	resp, err = e.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = newRequest(http.MethodPost, "/api/auth/logout", cookie)
	resp, err = e.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), testutil.CountAudit(t, e.db, audit.ActionLogout))
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	e := setup(t)
	admin, err := db.EnsureAdmin(e.db, "admin@hospital.test", "Admin", "11111111-1", "clave-segura")
	require.NoError(t, err)
	testutil.Deactivate(t, e.db, admin)

	resp, _ := e.call(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@hospital.test", "password": "clave-segura",
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, testutil.CountAudit(t, e.db, audit.ActionLogin))
}
