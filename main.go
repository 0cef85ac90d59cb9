package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"referral-reward-system/config"
	"referral-reward-system/discord"
	"referral-reward-system/handlers"
	"referral-reward-system/models"
	"referral-reward-system/services"
	"referral-reward-system/workers"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	log.Println("🔎 STARTUP CONFIG CHECK:")
	log.Printf("  DEBUG_WEBHOOKS: %t", cfg.Whop.DebugWebhooks)
	log.Printf("  WHOP_WEBHOOK_SECRET length: %d", len(cfg.Whop.WebhookSecret))
	log.Printf("  BUILD SHA: %s", cfg.Server.BuildSHA)

	if cfg.Server.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}
	if cfg.Discord.Token == "" {
		log.Fatal("❌ Missing DISCORD_TOKEN")
	}

	db, err := gorm.Open(postgres.Open(cfg.Server.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefCode{},
		&models.CountedEvent{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	referralService := services.NewReferralService(db)
	eventLedger := services.NewEventLedger(db)

	bot, err := discord.NewBot(cfg, referralService)
	if err != nil {
		log.Fatal("❌ Discord client init failed:", err)
	}
	if err := bot.Open(); err != nil {
		log.Fatal("❌ Discord login failed:", err)
	}
	defer bot.Close()

	rewardService := services.NewRewardService(db, referralService, bot)
	rewardService.StartRewardSweep(config.RewardSweepInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	memberSync := workers.NewMemberSyncWorker(db, bot.Session(), cfg.Discord.GuildID)
	go memberSync.Start(ctx, config.MemberSyncInterval)

	app := fiber.New(fiber.Config{})

	handlers.SetupHealthRoutes(app, cfg)
	handlers.SetupWebhookRoutes(app, cfg, referralService, eventLedger, rewardService)
	handlers.SetupAdminRoutes(app, cfg.Admin.TestKey, referralService, rewardService)

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("🚀 Server listening on port %s", cfg.Server.Port)
	log.Println("✅ Reward sweep running (every 5m)")
	log.Println("✅ Member sync worker running")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
