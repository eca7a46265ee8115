package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"

	"github.com/meinhoongagan/maternity-app/config"
)

// New builds the process logger. Development gets human-readable debug output,
// every other environment gets JSON at info level.
func New(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if cfg.IsDevelopment() {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}

	return log
}

// GormLevel maps the DB_LOG level list to the most verbose gorm log level it
// names.
func GormLevel(levels []string) gormlogger.LogLevel {
	level := gormlogger.Silent
	for _, l := range levels {
		switch l {
		case "query", "info":
			return gormlogger.Info
		case "warn":
			if level < gormlogger.Warn {
				level = gormlogger.Warn
			}
		case "error":
			if level < gormlogger.Error {
				level = gormlogger.Error
			}
		}
	}
	return level
}

// NewGormLogger routes gorm's output through logrus.
func NewGormLogger(log *logrus.Logger, levels []string) gormlogger.Interface {
	return gormlogger.New(log, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  GormLevel(levels),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
