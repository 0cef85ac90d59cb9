package workers

import (
	"context"
	"log"
	"time"

	"referral-reward-system/models"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"
)

// MemberSyncWorker keeps a local snapshot of Discord usernames for known
// referrers. Display only: admin debug output and announcements read it, the
// attribution pipeline never does.
type MemberSyncWorker struct {
	DB      *gorm.DB
	Session *discordgo.Session
	GuildID string
}

func NewMemberSyncWorker(db *gorm.DB, session *discordgo.Session, guildID string) *MemberSyncWorker {
	return &MemberSyncWorker{DB: db, Session: session, GuildID: guildID}
}

// Start runs the sync loop until the context is cancelled.
func (w *MemberSyncWorker) Start(ctx context.Context, interval time.Duration) {
	if w.GuildID == "" {
		log.Println("⚠️ [MemberSync] GUILD_ID not set; username sync disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.syncOnce()
	for {
		select {
		case <-ctx.Done():
			log.Println("[MemberSync] stopped")
			return
		case <-ticker.C:
			w.syncOnce()
		}
	}
}

func (w *MemberSyncWorker) syncOnce() {
	var users []models.User
	if err := w.DB.Find(&users).Error; err != nil {
		log.Printf("[MemberSync] DB error: %v", err)
		return
	}

	updated := 0
	for _, u := range users {
		member, err := w.Session.GuildMember(w.GuildID, u.DiscordUserID)
		if err != nil || member.User == nil {
			continue
		}
		name := member.User.Username
		if u.Username != nil && *u.Username == name {
			continue
		}
		if err := w.DB.Model(&models.User{}).
			Where("discord_user_id = ?", u.DiscordUserID).
			Update("username", name).Error; err != nil {
			log.Printf("[MemberSync] failed to update %s: %v", u.DiscordUserID, err)
			continue
		}
		updated++
	}
	if updated > 0 {
		log.Printf("✅ [MemberSync] refreshed %d username(s)", updated)
	}
}
