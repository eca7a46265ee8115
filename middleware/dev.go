package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/meinhoongagan/maternity-app/config"
	"github.com/meinhoongagan/maternity-app/utils"
)

// DevOnly rejects every request unless the process runs in the development
// environment. It runs before any handler touches the database.
func DevOnly(cfg *config.Config, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.IsDevelopment() {
			log.WithFields(logrus.Fields{
				"path": c.Path(),
				"ip":   utils.ClientIP(c),
			}).Warn("Blocked development-only endpoint")
			return utils.Forbidden("Endpoint disponible solo en desarrollo")
		}
		return c.Next()
	}
}
