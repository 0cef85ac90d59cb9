// middleware/admin_auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminKeyMiddleware gates the operational test endpoints behind a shared
// key passed as a query parameter. An unconfigured key rejects everything.
func AdminKeyMiddleware(expectedKey string) fiber.Handler {
	expected := strings.TrimSpace(expectedKey)

	return func(c *fiber.Ctx) error {
		got := strings.TrimSpace(c.Query("key"))
		if expected == "" || got != expected {
			log.Printf("🚫 [ADMIN_AUTH] Rejected request to %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}
