package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mdevans/quizbuzz/internal/bank"
	"github.com/mdevans/quizbuzz/internal/session"
)

// Config is the full process configuration. Quiz tunables come from an
// optional YAML file; credentials and endpoints come from the environment
// (loaded from .env by the caller).
type Config struct {
	Quiz    QuizConfig    `yaml:"quiz"`
	Discord DiscordConfig `yaml:"-"`
	NATS    NATSConfig    `yaml:"-"`

	// QuestionDBPath is the sqlite question bank location.
	QuestionDBPath string `yaml:"-"`
	// SessionLogPath is the append-only per-session log file.
	SessionLogPath string `yaml:"session_log_path"`
}

// QuizConfig holds the session tunables exposed to operators.
type QuizConfig struct {
	MaxQuestions       int `yaml:"max_questions"`
	AnswerWindowSec    int `yaml:"answer_window_sec"`
	WarningIntervalSec int `yaml:"warning_interval_sec"`
	NoBuzzGraceSec     int `yaml:"no_buzz_grace_sec"`
	AdvanceDelaySec    int `yaml:"advance_delay_sec"`
	StartDelaySec      int `yaml:"start_delay_sec"`
	CorrectBonus       int `yaml:"correct_bonus"`
	WrongPenalty       int `yaml:"wrong_penalty"`
	OutOfTurnPenalty   int `yaml:"out_of_turn_penalty"`
	TimeoutPenalty     int `yaml:"timeout_penalty"`
	InterimEvery       int `yaml:"interim_every"`
}

// DiscordConfig identifies the bot, its channel and its admins.
type DiscordConfig struct {
	Token       string
	ChannelID   string
	AdminID     string
	AdminRoleID string
}

// NATSConfig enables the optional event publisher when URL is non-empty.
type NATSConfig struct {
	URL string
}

// Default returns the stock configuration.
func Default() Config {
	sc := session.DefaultConfig()
	return Config{
		Quiz: QuizConfig{
			MaxQuestions:       bank.DefaultMaxQuestions,
			AnswerWindowSec:    int(sc.AnswerWindow / time.Second),
			WarningIntervalSec: int(sc.WarningInterval / time.Second),
			NoBuzzGraceSec:     int(sc.NoBuzzGrace / time.Second),
			AdvanceDelaySec:    int(sc.AdvanceDelay / time.Second),
			StartDelaySec:      int(sc.StartDelay / time.Second),
			CorrectBonus:       sc.CorrectBonus,
			WrongPenalty:       sc.WrongPenalty,
			OutOfTurnPenalty:   sc.OutOfTurnPenalty,
			TimeoutPenalty:     sc.TimeoutPenalty,
			InterimEvery:       sc.InterimEvery,
		},
		QuestionDBPath: "./quizbuzz.db",
		SessionLogPath: "./quiz_log.txt",
	}
}

// Load builds the configuration from an optional YAML file at path plus
// the environment. An empty path or a missing file yields defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.Discord = DiscordConfig{
		Token:       os.Getenv("DISCORD_TOKEN"),
		ChannelID:   os.Getenv("QUIZ_CHANNEL_ID"),
		AdminID:     os.Getenv("ADMIN_ID"),
		AdminRoleID: os.Getenv("ADMIN_ROLE_ID"),
	}
	cfg.NATS = NATSConfig{URL: os.Getenv("NATS_URL")}
	cfg.QuestionDBPath = getEnv("QUESTION_DB_PATH", cfg.QuestionDBPath)
	cfg.SessionLogPath = getEnv("SESSION_LOG_PATH", cfg.SessionLogPath)
	cfg.Quiz.MaxQuestions = getEnvAsInt("MAX_QUESTIONS", cfg.Quiz.MaxQuestions)

	return cfg, nil
}

// SessionConfig converts the operator-facing settings into the session's
// duration-based config.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		AnswerWindow:     time.Duration(c.Quiz.AnswerWindowSec) * time.Second,
		WarningInterval:  time.Duration(c.Quiz.WarningIntervalSec) * time.Second,
		NoBuzzGrace:      time.Duration(c.Quiz.NoBuzzGraceSec) * time.Second,
		AdvanceDelay:     time.Duration(c.Quiz.AdvanceDelaySec) * time.Second,
		StartDelay:       time.Duration(c.Quiz.StartDelaySec) * time.Second,
		CorrectBonus:     c.Quiz.CorrectBonus,
		WrongPenalty:     c.Quiz.WrongPenalty,
		OutOfTurnPenalty: c.Quiz.OutOfTurnPenalty,
		TimeoutPenalty:   c.Quiz.TimeoutPenalty,
		InterimEvery:     c.Quiz.InterimEvery,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
