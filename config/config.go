package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Discord DiscordConfig
	Whop    WhopConfig
	Admin   AdminConfig
}

type ServerConfig struct {
	Port        string
	DatabaseURL string
	BuildSHA    string
}

type DiscordConfig struct {
	Token             string
	GuildID           string
	RewardRoleID      string
	AnnounceChannelID string
}

type WhopConfig struct {
	WebhookSecret string
	CheckoutURL   string
	DebugWebhooks bool
}

type AdminConfig struct {
	TestKey string
}

func Load() *Config {
	_ = godotenv.Load()

	debug, _ := strconv.ParseBool(strings.ToLower(getEnv("DEBUG_WEBHOOKS", "false")))

	sha := getEnv("RAILWAY_GIT_COMMIT_SHA", "")
	if sha == "" {
		sha = getEnv("BUILD_SHA", "unknown")
	}

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "3000"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
			BuildSHA:    sha,
		},
		Discord: DiscordConfig{
			Token:             getEnv("DISCORD_TOKEN", ""),
			GuildID:           getEnv("GUILD_ID", ""),
			RewardRoleID:      getEnv("REWARD_ROLE_ID", ""),
			AnnounceChannelID: getEnv("ANNOUNCE_CHANNEL_ID", ""),
		},
		Whop: WhopConfig{
			WebhookSecret: getEnv("WHOP_WEBHOOK_SECRET", ""),
			CheckoutURL:   getEnv("WHOP_CHECKOUT_URL", ""),
			DebugWebhooks: debug,
		},
		Admin: AdminConfig{
			TestKey: strings.TrimSpace(getEnv("ADMIN_TEST_KEY", "")),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Background intervals
const (
	RewardSweepInterval = 5 * time.Minute
	MemberSyncInterval  = 15 * time.Minute
)
