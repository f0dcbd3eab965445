package gateway

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/mdevans/quizbuzz/internal/config"
	"github.com/mdevans/quizbuzz/internal/session"
)

// Bot routes chat commands from the quiz channel into session operations.
type Bot struct {
	ds   *discordgo.Session
	quiz *session.Session
	cfg  config.DiscordConfig
}

// NewBot wires the command handler onto the Discord session.
func NewBot(ds *discordgo.Session, quiz *session.Session, cfg config.DiscordConfig) *Bot {
	b := &Bot{ds: ds, quiz: quiz, cfg: cfg}
	ds.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	ds.AddHandler(b.handleMessage)
	return b
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	if err := b.ds.Open(); err != nil {
		return err
	}
	log.Info().
		Str("user", b.ds.State.User.Username).
		Str("channel_id", b.cfg.ChannelID).
		Msg("bot connected")
	return nil
}

// Close shuts the gateway connection.
func (b *Bot) Close() error {
	return b.ds.Close()
}

// isAdmin reports whether the author may run privileged commands: either
// the configured admin user or a holder of the admin role.
func (b *Bot) isAdmin(m *discordgo.MessageCreate) bool {
	if b.cfg.AdminID != "" && m.Author.ID == b.cfg.AdminID {
		return true
	}
	if b.cfg.AdminRoleID == "" {
		return false
	}
	member, err := b.ds.GuildMember(m.GuildID, m.Author.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", m.Author.ID).Msg("failed to fetch member roles")
		return false
	}
	for _, roleID := range member.Roles {
		if roleID == b.cfg.AdminRoleID {
			return true
		}
	}
	return false
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if b.cfg.ChannelID != "" && m.ChannelID != b.cfg.ChannelID {
		return
	}
	if !strings.HasPrefix(m.Content, "!") {
		return
	}

	cmd, arg := splitCommand(m.Content)
	actor := session.Actor{
		ID:    m.Author.ID,
		Name:  m.Author.Username,
		Admin: b.isAdmin(m),
	}
	b.dispatch(m, actor, cmd, arg)
}

// splitCommand separates "!cmd rest of line" into its name and argument.
func splitCommand(content string) (cmd, arg string) {
	content = strings.TrimPrefix(content, "!")
	cmd, arg, _ = strings.Cut(content, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}
