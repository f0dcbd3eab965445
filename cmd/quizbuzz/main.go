package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mdevans/quizbuzz/internal/bank"
	"github.com/mdevans/quizbuzz/internal/config"
	"github.com/mdevans/quizbuzz/internal/events"
	"github.com/mdevans/quizbuzz/internal/gateway"
	"github.com/mdevans/quizbuzz/internal/session"
	"github.com/mdevans/quizbuzz/internal/team"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.Discord.Token == "" {
		log.Fatal().Msg("DISCORD_TOKEN is required")
	}
	if cfg.Discord.ChannelID == "" {
		log.Fatal().Msg("QUIZ_CHANNEL_ID is required")
	}

	ctx := context.Background()
	clock := clockwork.NewRealClock()

	store, err := bank.Open(cfg.QuestionDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open question bank")
	}
	defer store.Close()

	feed, err := store.Load(ctx, cfg.Quiz.MaxQuestions)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load question feed")
	}

	sinks := []events.Sink{events.LogSink{}}
	if cfg.NATS.URL != "" {
		pub, err := events.NewNATSPublisher(ctx, cfg.NATS.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect event publisher")
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}
	emitter := events.NewEmitter(clock, sinks...)

	ds, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create discord session")
	}

	announcer := gateway.NewAnnouncer(ds, cfg.Discord.ChannelID)
	go announcer.Run()
	defer announcer.Close()

	quiz := session.New(
		cfg.SessionConfig(),
		clock,
		feed,
		team.NewRegistry(),
		announcer,
		events.NewFileLog(cfg.SessionLogPath),
		emitter,
	)

	bot := gateway.NewBot(ds, quiz, cfg.Discord)
	if err := bot.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to discord")
	}
	defer bot.Close()

	log.Info().
		Str("session_id", emitter.SessionID()).
		Int("questions", feed.Len()).
		Msg("quizbuzz is running")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")
}
