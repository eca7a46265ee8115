package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/audit"
	"github.com/meinhoongagan/maternity-app/config"
	"github.com/meinhoongagan/maternity-app/controllers"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/rbac"
	"github.com/meinhoongagan/maternity-app/routes"
	"github.com/meinhoongagan/maternity-app/session"
	"github.com/meinhoongagan/maternity-app/testutil"
	"github.com/meinhoongagan/maternity-app/utils"
)

type env struct {
	db       *gorm.DB
	sessions *session.Manager
	app      *fiber.App
}

func newHandler(gdb *gorm.DB, environment string) *controllers.Handler {
	log, _ := testutil.NewLogger()
	sessions := session.NewManager("test-secret", time.Hour, false, nil)
	resolver := rbac.NewResolver(gdb)
	return &controllers.Handler{
		DB:       gdb,
		Gate:     rbac.NewGate(gdb, resolver, sessions),
		Resolver: resolver,
		Sessions: sessions,
		Audit:    audit.NewRecorder(log),
		Config:   &config.Config{Environment: environment},
		Log:      log,
	}
}

func newApp(t *testing.T, h *controllers.Handler) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler(h.Log)})
	require.NoError(t, routes.Setup(app, h))
	return app
}

func setup(t *testing.T) *env {
	return setupEnv(t, "production")
}

func setupEnv(t *testing.T, environment string) *env {
	t.Helper()
	gdb := testutil.NewDB(t)
	h := newHandler(gdb, environment)
	return &env{db: gdb, sessions: h.Sessions, app: newApp(t, h)}
}

func (e *env) cookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	token, err := e.sessions.Encode(&session.Session{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: token}
}

// call sends a JSON request as user (nil for anonymous) and returns the
// response with its body.
func (e *env) call(t *testing.T, method, path string, body interface{}, user *models.User) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if user != nil {
		req.AddCookie(e.cookie(t, user))
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Total   int64           `json:"total"`
}

func decode(t *testing.T, body []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

func decodeData(t *testing.T, body []byte, dst interface{}) envelope {
	t.Helper()
	env := decode(t, body)
	require.NoError(t, json.Unmarshal(env.Data, dst), string(env.Data))
	return env
}

func count(t *testing.T, gdb *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(model).Count(&n).Error)
	return n
}

func newRequest(method, path string, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return v
}
