package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/mdevans/quizbuzz/internal/session"
	"github.com/mdevans/quizbuzz/internal/team"
)

func (b *Bot) dispatch(m *discordgo.MessageCreate, actor session.Actor, cmd, arg string) {
	var err error
	switch cmd {
	case "join":
		if arg == "" {
			b.reply(m, "Please specify a team name: `!join <team>`.")
			return
		}
		err = b.quiz.JoinTeam(actor, arg)
		if errors.Is(err, team.ErrTeamNotFound) {
			b.reply(m, b.teamNotFoundHint(arg))
			return
		}
	case "confirm_create":
		if arg == "" {
			b.reply(m, "Please specify a team name: `!confirm_create <team>`.")
			return
		}
		err = b.quiz.CreateTeam(actor, arg)
		if errors.Is(err, team.ErrTeamExists) {
			b.reply(m, fmt.Sprintf("⚠️ Team **%s** already exists. Use `!join %s`.", arg, arg))
			return
		}
	case "leave":
		err = b.quiz.LeaveTeam(actor)
	case "teams":
		b.quiz.ListTeams()
	case "score":
		b.quiz.ShowScores()
	case "start_quiz":
		err = b.quiz.StartQuiz(actor)
	case "buzz":
		err = b.quiz.Buzz(actor)
	case "answer":
		err = b.quiz.SubmitAnswer(actor, arg)
	case "correct":
		err = b.quiz.JudgeCorrect(actor)
	case "wrong":
		err = b.quiz.JudgeIncorrect(actor)
	case "skip":
		err = b.quiz.Skip(actor)
	case "end":
		err = b.quiz.EndEarly(actor)
	case "help":
		b.sendHelp(m)
	default:
		// Not a quiz command; stay quiet.
		return
	}

	if err != nil {
		b.reply(m, userMessage(err))
	}
}

// userMessage translates a session error into a user-visible reply. Every
// error is recovered here; none escapes the command boundary.
func userMessage(err error) string {
	switch {
	case errors.Is(err, team.ErrNotInTeam):
		return "⚠️ You're not part of any team."
	case errors.Is(err, team.ErrTeamExists):
		return "⚠️ That team already exists."
	case errors.Is(err, team.ErrTeamNotFound):
		return "⚠️ That team doesn't exist."
	case errors.Is(err, session.ErrNoActiveQuestion):
		return "⚠️ No active question right now."
	case errors.Is(err, session.ErrAlreadyBuzzed):
		return "⚠️ Your team has already buzzed."
	case errors.Is(err, session.ErrNoActiveAnswerer):
		return "⚠️ No team is currently answering."
	case errors.Is(err, session.ErrPermissionDenied):
		return "⛔ You don't have permission to do that."
	case errors.Is(err, session.ErrQuizNotRunning):
		return "⚠️ No quiz is running."
	default:
		log.Error().Err(err).Msg("unexpected command error")
		return "⚠️ Something went wrong. Try again."
	}
}

// teamNotFoundHint lists existing teams and offers creation, mirroring
// the join flow where creation is an explicit second step.
func (b *Bot) teamNotFoundHint(name string) string {
	existing := strings.Join(b.quiz.TeamNames(), ", ")
	if existing == "" {
		existing = "None yet"
	}
	return fmt.Sprintf(
		"🚨 Team **%s** doesn't exist.\nExisting teams: %s\nType `!confirm_create %s` to create it, or join an existing one with `!join <team>`.",
		name, existing, name)
}

func (b *Bot) reply(m *discordgo.MessageCreate, text string) {
	if _, err := b.ds.ChannelMessageSendReply(m.ChannelID, text, m.Reference()); err != nil {
		log.Error().Err(err).Str("channel_id", m.ChannelID).Msg("failed to send reply")
	}
}

func (b *Bot) sendHelp(m *discordgo.MessageCreate) {
	embed := &discordgo.MessageEmbed{
		Title:       "📖 QuizBuzz Commands",
		Description: "Here's a list of commands you can use!",
		Color:       0x3498db,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🟢 !join <team>", Value: "Join an existing team"},
			{Name: "🆕 !confirm_create <team>", Value: "Create a new team"},
			{Name: "📢 !buzz", Value: "Buzz in to answer the current question"},
			{Name: "🗣️ !answer <text>", Value: "Submit your answer when buzzed"},
			{Name: "✅ !correct", Value: "(Admin) Mark current answer as correct"},
			{Name: "❌ !wrong", Value: "(Admin) Mark current answer as incorrect"},
			{Name: "⏭️ !skip", Value: "(Admin) Skip the current question"},
			{Name: "📊 !score", Value: "Check team scores"},
			{Name: "👥 !teams", Value: "List all teams and members"},
			{Name: "👋 !leave", Value: "Leave your current team"},
			{Name: "🎮 !start_quiz", Value: "(Admin) Start the quiz"},
			{Name: "🛑 !end", Value: "(Admin) End the quiz early"},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Good luck and buzz responsibly!"},
	}
	if _, err := b.ds.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
		log.Error().Err(err).Str("channel_id", m.ChannelID).Msg("failed to send help embed")
	}
}
