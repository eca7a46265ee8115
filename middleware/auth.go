package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"github.com/meinhoongagan/maternity-app/session"
	"github.com/meinhoongagan/maternity-app/utils"
)

const sessionKey = "session"

// Protected verifies the signed session cookie and stores the session in
// locals. It only authenticates; permission checks go through Authorize.
func Protected(sessions *session.Manager, log logrus.FieldLogger) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    sessions.Secret(),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		TokenLookup:   "cookie:" + session.CookieName,
		Claims:        &session.Claims{},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.WithError(err).Debug("Rejected session cookie")
			return utils.Unauthenticated("")
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return utils.Unauthenticated("")
			}
			claims, ok := token.Claims.(*session.Claims)
			if !ok {
				return utils.Unauthenticated("")
			}

			s, err := sessions.FromClaims(c.UserContext(), claims)
			if err != nil {
				if errors.Is(err, session.ErrInvalidSession) {
					return utils.Unauthenticated("")
				}
				return err
			}

			c.Locals(sessionKey, s)
			return c.Next()
		},
	})
}

// CurrentSession returns the session stored by Protected.
func CurrentSession(c *fiber.Ctx) *session.Session {
	s, _ := c.Locals(sessionKey).(*session.Session)
	return s
}
