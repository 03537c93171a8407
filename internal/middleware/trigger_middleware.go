package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// TriggerTokenHeader carries the service credential for internal endpoints.
const TriggerTokenHeader = "X-Trigger-Token"

// TriggerTokenRequired admits requests whose X-Trigger-Token header equals
// token. With an empty token every request is refused.
func TriggerTokenRequired(token string) fiber.Handler {
	want := []byte(token)
	return func(c *fiber.Ctx) error {
		got := []byte(c.Get(TriggerTokenHeader))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			log.Warn().Str("ip", c.IP()).Str("path", c.Path()).Msg("rejected internal trigger request")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "You are not allowed to access this endpoint",
			})
		}
		return c.Next()
	}
}
