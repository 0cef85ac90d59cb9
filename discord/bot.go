package discord

import (
	"fmt"
	"log"

	"referral-reward-system/config"
	"referral-reward-system/services"
	"referral-reward-system/utils"

	"github.com/bwmarrin/discordgo"
)

// Bot wraps the Discord session and the referral command surface. It also
// implements services.RewardDispatcher (role grant + announcement).
type Bot struct {
	session     *discordgo.Session
	cfg         *config.Config
	referralSvc *services.ReferralService
}

func NewBot(cfg *config.Config, referralSvc *services.ReferralService) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Client = utils.HTTPClient
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	b := &Bot{
		session:     session,
		cfg:         cfg,
		referralSvc: referralSvc,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)

	return b, nil
}

// Open connects the gateway session. Commands are registered from the ready
// handler once the application id is known.
func (b *Bot) Open() error {
	return b.session.Open()
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// Session exposes the underlying session for collaborators (member sync).
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("✅ Logged in as %s#%s", r.User.Username, r.User.Discriminator)

	commands := []*discordgo.ApplicationCommand{
		{Name: "ref", Description: "Get your referral link / code"},
		{Name: "refstats", Description: "View your referral progress"},
	}
	if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, "", commands); err != nil {
		log.Printf("❌ Failed to register slash commands: %v", err)
		return
	}
	log.Println("✅ Slash commands registered")
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	userID := interactionUserID(i)
	if userID == "" {
		return
	}

	var content string
	var err error

	switch i.ApplicationCommandData().Name {
	case "ref":
		content, err = b.refReply(userID)
	case "refstats":
		content, err = b.refstatsReply(userID)
	default:
		return
	}

	if err != nil {
		log.Printf("interaction error: %v", err)
		b.respond(i, "❌ Something went wrong. Try again.", true)
		return
	}
	b.respond(i, content, false)
}

func (b *Bot) refReply(userID string) (string, error) {
	code, err := b.referralSvc.GetOrCreateRefCode(userID)
	if err != nil {
		return "", err
	}
	if link := utils.BuildReferralLink(b.cfg.Whop.CheckoutURL, code); link != "" {
		return fmt.Sprintf("🔗 <@%s>'s referral link:\n%s", userID, link), nil
	}
	return fmt.Sprintf("🔗 <@%s>'s referral code:\n`%s`\n\n(Set WHOP_CHECKOUT_URL to show a full link.)", userID, code), nil
}

func (b *Bot) refstatsReply(userID string) (string, error) {
	user, err := b.referralSvc.GetUser(userID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"📈 **Referral Progress**\n👤 <@%s>\n✅ **%d / %d** successful referrals",
		userID, user.Referrals, services.RewardThreshold,
	), nil
}

func (b *Bot) respond(i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}); err != nil {
		log.Printf("❌ Interaction respond failed: %v", err)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// --- RewardDispatcher ---

// GrantRole assigns the reward role. Missing guild/role config is a warning,
// not an error: the rewarded flag has already been set by the caller.
func (b *Bot) GrantRole(discordUserID string) error {
	if b.cfg.Discord.GuildID == "" || b.cfg.Discord.RewardRoleID == "" {
		log.Println("⚠️ Missing GUILD_ID/REWARD_ROLE_ID (reward still marked).")
		return nil
	}
	return b.session.GuildMemberRoleAdd(b.cfg.Discord.GuildID, discordUserID, b.cfg.Discord.RewardRoleID)
}

// Announce posts the reward message to the configured channel.
func (b *Bot) Announce(discordUserID string) error {
	if b.cfg.Discord.AnnounceChannelID == "" {
		log.Println("⚠️ Missing ANNOUNCE_CHANNEL_ID (reward still marked).")
		return nil
	}
	msg := fmt.Sprintf(
		"🎉 <@%s> just hit **%d referrals** — granting **1 month free membership**! ✅",
		discordUserID, services.RewardThreshold,
	)
	_, err := b.session.ChannelMessageSend(b.cfg.Discord.AnnounceChannelID, msg)
	return err
}
