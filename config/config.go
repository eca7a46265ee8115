package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const EnvDevelopment = "development"

type Config struct {
	Environment   string
	Port          string
	DatabaseURL   string
	DBLog         []string
	SessionSecret string
	SessionTTL    time.Duration
	RedisAddr     string

	CensusSchedule string
	StayAlertDays  int
	AlertEmail     string
	SMTPHost       string
	SMTPPort       int
	EmailUser      string
	EmailPass      string
	AdminEmail     string
	AdminPassword  string
}

// IsDevelopment is true only for the exact "development" environment. Any
// other value, including an empty one, is treated as production.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// Load reads configuration from the process environment, after merging an
// optional .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) *Config {
	cfg := &Config{
		Environment:    firstNonEmpty(getenv("ENVIRONMENT"), getenv("NODE_ENV"), "production"),
		Port:           firstNonEmpty(getenv("PORT"), "8000"),
		DatabaseURL:    getenv("DATABASE_URL"),
		SessionSecret:  getenv("SESSION_SECRET"),
		SessionTTL:     24 * time.Hour,
		RedisAddr:      getenv("REDIS_ADDR"),
		CensusSchedule: firstNonEmpty(getenv("CENSUS_SCHEDULE"), "@hourly"),
		StayAlertDays:  14,
		AlertEmail:     getenv("ALERT_EMAIL"),
		SMTPHost:       getenv("SMTP_HOST"),
		EmailUser:      getenv("EMAIL_USER"),
		EmailPass:      getenv("EMAIL_PASS"),
		AdminEmail:     getenv("ADMIN_EMAIL"),
		AdminPassword:  getenv("ADMIN_PASSWORD"),
	}

	if ttl, err := time.ParseDuration(getenv("SESSION_TTL")); err == nil && ttl > 0 {
		cfg.SessionTTL = ttl
	}
	if days, err := strconv.Atoi(getenv("URNI_STAY_ALERT_DAYS")); err == nil && days > 0 {
		cfg.StayAlertDays = days
	}
	cfg.SMTPPort, _ = strconv.Atoi(getenv("SMTP_PORT"))

	levels := firstNonEmpty(getenv("DB_LOG"), getenv("PRISMA_LOG"))
	if levels == "" {
		if cfg.IsDevelopment() {
			levels = "query,warn,error"
		} else {
			levels = "warn,error"
		}
	}
	cfg.DBLog = splitList(levels)

	return cfg
}

// MailEnabled reports whether census alerts can be sent.
func (c *Config) MailEnabled() bool {
	return c.AlertEmail != "" && c.SMTPHost != "" && c.SMTPPort > 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
