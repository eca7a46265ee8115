package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaultsFailClosed(t *testing.T) {
	cfg := FromEnv(envOf(nil))

	assert.Equal(t, "production", cfg.Environment)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"warn", "error"}, cfg.DBLog)
	assert.Equal(t, 14, cfg.StayAlertDays)
	assert.False(t, cfg.MailEnabled())
}

func TestFromEnvEnvironmentPrecedence(t *testing.T) {
	cfg := FromEnv(envOf(map[string]string{"ENVIRONMENT": "staging", "NODE_ENV": "development"}))
	assert.Equal(t, "staging", cfg.Environment)
	assert.False(t, cfg.IsDevelopment())

	cfg = FromEnv(envOf(map[string]string{"NODE_ENV": "development"}))
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"query", "warn", "error"}, cfg.DBLog)

	cfg = FromEnv(envOf(map[string]string{"ENVIRONMENT": "Development"}))
	assert.False(t, cfg.IsDevelopment())
}

func TestFromEnvDBLogAlias(t *testing.T) {
	cfg := FromEnv(envOf(map[string]string{"PRISMA_LOG": " Query , error ,"}))
	assert.Equal(t, []string{"query", "error"}, cfg.DBLog)

	cfg = FromEnv(envOf(map[string]string{"PRISMA_LOG": "query", "DB_LOG": "info"}))
	assert.Equal(t, []string{"info"}, cfg.DBLog)
}

func TestFromEnvParsesNumbers(t *testing.T) {
	cfg := FromEnv(envOf(map[string]string{
		"SESSION_TTL":          "2h",
		"URNI_STAY_ALERT_DAYS": "7",
		"SMTP_PORT":            "587",
		"SMTP_HOST":            "smtp.example.org",
		"ALERT_EMAIL":          "jefatura@example.org",
	}))
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 7, cfg.StayAlertDays)
	assert.True(t, cfg.MailEnabled())

	cfg = FromEnv(envOf(map[string]string{"SESSION_TTL": "nope", "URNI_STAY_ALERT_DAYS": "-3"}))
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 14, cfg.StayAlertDays)
}
