package session

import "errors"

var (
	// ErrNoActiveQuestion is returned for a buzz or answer outside a live question.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrNoActiveAnswerer is returned when judging with nobody answering.
	ErrNoActiveAnswerer = errors.New("no team is currently answering")
	// ErrAlreadyBuzzed is returned for a duplicate buzz by the same team.
	ErrAlreadyBuzzed = errors.New("team already buzzed")
	// ErrPermissionDenied is returned for a privileged command by a non-admin.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrQuizNotRunning is returned for judge/skip/end with no quiz in progress.
	ErrQuizNotRunning = errors.New("no quiz is running")
)
