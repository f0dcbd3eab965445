package session

import "time"

// Config holds the session tunables. Scoring deltas are signed: penalties
// are negative values applied as-is.
type Config struct {
	// AnswerWindow is how long a promoted team has to answer.
	AnswerWindow time.Duration
	// WarningInterval is the spacing of countdown warnings inside the
	// answer window.
	WarningInterval time.Duration
	// NoBuzzGrace is how long a question stays open with no buzz before
	// it auto-resolves.
	NoBuzzGrace time.Duration
	// AdvanceDelay is the pause between resolving a question and
	// announcing the next one.
	AdvanceDelay time.Duration
	// StartDelay is the pause between the start announcement and
	// question one.
	StartDelay time.Duration

	CorrectBonus     int
	WrongPenalty     int
	OutOfTurnPenalty int
	TimeoutPenalty   int

	// InterimEvery shows the scoreboard after every Nth resolved
	// question. Zero disables the interim scoreboard.
	InterimEvery int
}

// DefaultConfig returns the stock quiz settings.
func DefaultConfig() Config {
	return Config{
		AnswerWindow:     30 * time.Second,
		WarningInterval:  5 * time.Second,
		NoBuzzGrace:      60 * time.Second,
		AdvanceDelay:     5 * time.Second,
		StartDelay:       2 * time.Second,
		CorrectBonus:     10,
		WrongPenalty:     -10,
		OutOfTurnPenalty: -10,
		TimeoutPenalty:   -10,
		InterimEvery:     4,
	}
}
