// handlers/health.go
package handlers

import (
	"referral-reward-system/config"

	"github.com/gofiber/fiber/v2"
)

// SetupHealthRoutes mounts liveness and safe debug endpoints.
func SetupHealthRoutes(app *fiber.App, cfg *config.Config) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	app.Get("/__debug/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "sha": cfg.Server.BuildSHA})
	})

	// Secret length only, never the secret itself.
	app.Get("/__debug/whoplen", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "whopSecretLen": len(cfg.Whop.WebhookSecret)})
	})
}
