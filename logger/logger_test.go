package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"

	"github.com/meinhoongagan/maternity-app/config"
)

func TestGormLevel(t *testing.T) {
	cases := []struct {
		levels []string
		want   gormlogger.LogLevel
	}{
		{nil, gormlogger.Silent},
		{[]string{"error"}, gormlogger.Error},
		{[]string{"error", "warn"}, gormlogger.Warn},
		{[]string{"warn", "query"}, gormlogger.Info},
		{[]string{"info"}, gormlogger.Info},
		{[]string{"bogus"}, gormlogger.Silent},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GormLevel(tc.levels), "levels %v", tc.levels)
	}
}

func TestNewFollowsEnvironment(t *testing.T) {
	dev := New(&config.Config{Environment: config.EnvDevelopment})
	assert.Equal(t, logrus.DebugLevel, dev.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, dev.Formatter)

	prod := New(&config.Config{Environment: "production"})
	assert.Equal(t, logrus.InfoLevel, prod.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, prod.Formatter)
}
