// handlers/webhook.go
package handlers

import (
	"encoding/json"
	"log"

	"referral-reward-system/config"
	"referral-reward-system/services"
	"referral-reward-system/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupWebhookRoutes mounts the payment-provider webhook endpoint. The
// handler consumes the exact raw request bytes so signature verification
// operates on the untouched payload.
func SetupWebhookRoutes(
	app *fiber.App,
	cfg *config.Config,
	referrals *services.ReferralService,
	ledger *services.EventLedger,
	rewards *services.RewardService,
) {
	app.Get("/webhooks/whop", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("whop webhook endpoint alive")
	})

	app.Post("/webhooks/whop", func(c *fiber.Ctx) error {
		rawBody := c.Body()

		whID := c.Get("webhook-id")
		whTs := c.Get("webhook-timestamp")
		whSig := c.Get("webhook-signature")

		if cfg.Whop.DebugWebhooks {
			log.Printf("📨 /webhooks/whop HEADERS: id=%q ts=%q sig_present=%t secret_len=%d",
				whID, whTs, whSig != "", len(cfg.Whop.WebhookSecret))
		}

		// 1) Structured scheme first when all headers exist; legacy fallback
		// otherwise or on any structured failure.
		verified := false
		if whID != "" && whTs != "" && whSig != "" {
			if err := utils.VerifyStructured(rawBody, whID, whTs, whSig, cfg.Whop.WebhookSecret); err != nil {
				if cfg.Whop.DebugWebhooks {
					log.Printf("❌ Structured verify failed: %v", err)
				}
			} else {
				verified = true
			}
		}
		if !verified {
			if err := utils.VerifyLegacy(rawBody, whTs, whSig, cfg.Whop.WebhookSecret); err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"ok":     false,
					"error":  "invalid_signature",
					"reason": err.Error(),
				})
			}
		}

		// 2) Parse
		var event map[string]interface{}
		if err := json.Unmarshal(rawBody, &event); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"ok":    false,
				"error": "bad_json",
			})
		}

		// 3) Classify. Non-paid events are acknowledged so the provider does
		// not retry them.
		eventType := services.NormalizeEventType(stringField(event, "type"))
		eventID := services.ExtractEventID(event)

		if cfg.Whop.DebugWebhooks {
			log.Printf("📩 VERIFIED EVENT: type=%s id=%s", eventType, eventID)
		}

		if !services.PaidEventTypes[eventType] {
			return c.JSON(fiber.Map{"ok": true, "ignored": true, "type": eventType})
		}

		// 4) Dedup check
		if eventID != "" {
			seen, err := ledger.Seen(eventID)
			if err != nil {
				log.Printf("DB Error checking event %s: %v", eventID, err)
				return serverError(c)
			}
			if seen {
				return c.JSON(fiber.Map{"ok": true, "deduped": true})
			}
		}

		// 5) Ref code
		refCode := services.ExtractRefCode(event)
		log.Printf("🔎 Extracted refCode: %q", refCode)

		if refCode == "" {
			if _, err := ledger.Mark(eventID); err != nil {
				log.Printf("DB Error marking event %s: %v", eventID, err)
				return serverError(c)
			}
			return c.JSON(fiber.Map{"ok": true, "ignored": true, "reason": "no_ref_code"})
		}

		// 6) Resolve referrer
		discordUserID, err := referrals.LookupUserByRefCode(refCode)
		if err != nil {
			log.Printf("DB Error resolving ref code %s: %v", refCode, err)
			return serverError(c)
		}
		log.Printf("👤 Ref code maps to discordUserId: %q", discordUserID)

		if discordUserID == "" {
			if _, err := ledger.Mark(eventID); err != nil {
				log.Printf("DB Error marking event %s: %v", eventID, err)
				return serverError(c)
			}
			return c.JSON(fiber.Map{"ok": true, "ignored": true, "reason": "unknown_ref_code"})
		}

		// 7) Mark before credit: a crash between the two loses a credit on
		// retry instead of double-counting one. A concurrent duplicate that
		// lost the insert race is treated as deduped here.
		if eventID != "" {
			inserted, err := ledger.Mark(eventID)
			if err != nil {
				log.Printf("DB Error marking event %s: %v", eventID, err)
				return serverError(c)
			}
			if !inserted {
				return c.JSON(fiber.Map{"ok": true, "deduped": true})
			}
		}

		// 8) Credit
		updated, err := referrals.AddReferral(discordUserID)
		if err != nil {
			log.Printf("DB Error crediting referral for %s: %v", discordUserID, err)
			return serverError(c)
		}
		log.Printf("✅ Referral added: %s now at %d", discordUserID, updated.Referrals)

		// 9) Reward follow-up must not affect the response.
		if err := rewards.EvaluateThreshold(discordUserID); err != nil {
			log.Printf("❌ Reward evaluation failed for %s: %v", discordUserID, err)
		}

		return c.JSON(fiber.Map{"ok": true})
	})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"ok":    false,
		"error": "server_error",
	})
}

func stringField(event map[string]interface{}, key string) string {
	s, _ := event[key].(string)
	return s
}
