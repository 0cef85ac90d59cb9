// handlers/admin.go
package handlers

import (
	"log"

	"referral-reward-system/middleware"
	"referral-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes mounts the operational test endpoints. These bypass the
// webhook pipeline entirely and exist for manual verification in production.
func SetupAdminRoutes(app *fiber.App, adminKey string, referrals *services.ReferralService, rewards *services.RewardService) {
	admin := app.Group("/admin", middleware.AdminKeyMiddleware(adminKey))

	// POST /admin/test/credit?key=XXXX
	admin.Post("/test/credit", func(c *fiber.Ctx) error {
		var req struct {
			DiscordID string `json:"discordId"`
			Count     *int   `json:"count"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.DiscordID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing discordId"})
		}

		count := 1
		if req.Count != nil {
			count = *req.Count
		}
		if count <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid count"})
		}

		updated, err := referrals.ManualAddReferral(req.DiscordID, count)
		if err != nil {
			log.Printf("admin credit failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "server_error"})
		}

		if err := rewards.EvaluateThreshold(req.DiscordID); err != nil {
			log.Printf("admin credit reward evaluation failed: %v", err)
		}

		return c.JSON(fiber.Map{"ok": true, "user": updated})
	})

	// POST /admin/test/set?key=XXXX
	admin.Post("/test/set", func(c *fiber.Ctx) error {
		var req struct {
			DiscordID string `json:"discordId"`
			Referrals *int   `json:"referrals"`
			Rewarded  *int   `json:"rewarded"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.DiscordID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing discordId"})
		}

		referralCount := 0
		if req.Referrals != nil {
			referralCount = *req.Referrals
		}
		if referralCount < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid referrals"})
		}

		rewarded := 0
		if req.Rewarded != nil {
			rewarded = *req.Rewarded
		}
		if rewarded != 0 && rewarded != 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid rewarded"})
		}

		updated, err := referrals.SetReferrals(req.DiscordID, referralCount, rewarded == 1)
		if err != nil {
			log.Printf("admin set failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "server_error"})
		}

		return c.JSON(fiber.Map{"ok": true, "user": updated})
	})

	// GET /admin/debug/user?key=XXXX&discordId=123
	admin.Get("/debug/user", func(c *fiber.Ctx) error {
		discordID := c.Query("discordId")
		if discordID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing discordId"})
		}

		user, err := referrals.GetUser(discordID)
		if err != nil {
			log.Printf("admin debug failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "server_error"})
		}

		return c.JSON(fiber.Map{"ok": true, "user": user})
	})
}
