package utils

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClientIP prefers the first X-Forwarded-For hop, then the socket address.
func ClientIP(c *fiber.Ctx) string {
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	return c.IP()
}

// ParamID parses a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, Validation("Identificador inválido")
	}
	return uint(id), nil
}

// QueryID parses an optional numeric query parameter. ok is false when absent.
func QueryID(c *fiber.Ctx, name string) (id uint, ok bool, err error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}
	v, perr := strconv.ParseUint(raw, 10, 64)
	if perr != nil || v == 0 {
		return 0, false, Validation(name + " inválido")
	}
	return uint(v), true, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds a LIKE pattern that matches s literally anywhere in
// the column. Queries using it must declare ESCAPE '\'.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
