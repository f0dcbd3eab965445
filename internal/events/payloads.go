package events

import (
	"encoding/json"
	"time"
)

// Event types emitted over the life of a quiz session.
const (
	TypeQuizStarted       = "QuizStarted"
	TypeQuestionAnnounced = "QuestionAnnounced"
	TypeBuzzRegistered    = "BuzzRegistered"
	TypeAnswerSubmitted   = "AnswerSubmitted"
	TypeAnswerJudged      = "AnswerJudged"
	TypeQuestionTimedOut  = "QuestionTimedOut"
	TypeQuestionSkipped   = "QuestionSkipped"
	TypeQuizCompleted     = "QuizCompleted"
	TypeQuizEnded         = "QuizEnded"
)

// Event is the envelope published for every session transition.
type Event struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	SessionID string          `json:"sessionId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// QuizStartedPayload is the payload for a QuizStarted event.
type QuizStartedPayload struct {
	StartedBy      string    `json:"started_by"`
	TotalQuestions int       `json:"total_questions"`
	StartedAt      time.Time `json:"started_at"`
}

// QuestionAnnouncedPayload is the payload for a QuestionAnnounced event.
type QuestionAnnouncedPayload struct {
	Number      int       `json:"number"`
	Prompt      string    `json:"prompt"`
	AnnouncedAt time.Time `json:"announced_at"`
}

// BuzzRegisteredPayload is the payload for a BuzzRegistered event.
type BuzzRegisteredPayload struct {
	Team      string `json:"team"`
	User      string `json:"user"`
	Question  int    `json:"question"`
	FirstBuzz bool   `json:"first_buzz"`
}

// AnswerSubmittedPayload is the payload for an AnswerSubmitted event.
type AnswerSubmittedPayload struct {
	Team      string `json:"team"`
	User      string `json:"user"`
	Question  int    `json:"question"`
	Content   string `json:"content"`
	OutOfTurn bool   `json:"out_of_turn"`
}

// AnswerJudgedPayload is the payload for an AnswerJudged event.
type AnswerJudgedPayload struct {
	Team     string `json:"team"`
	Question int    `json:"question"`
	Correct  bool   `json:"correct"`
	Delta    int    `json:"delta"`
	Score    int    `json:"score"`
}

// QuestionTimedOutPayload is the payload for a QuestionTimedOut event.
// Team is empty when nobody buzzed inside the grace period.
type QuestionTimedOutPayload struct {
	Team     string `json:"team,omitempty"`
	Question int    `json:"question"`
	Delta    int    `json:"delta,omitempty"`
}

// QuestionSkippedPayload is the payload for a QuestionSkipped event.
type QuestionSkippedPayload struct {
	Question int `json:"question"`
}

// QuizCompletedPayload is the payload for a QuizCompleted event.
type QuizCompletedPayload struct {
	QuestionsAsked int            `json:"questions_asked"`
	FinalScores    map[string]int `json:"final_scores"`
}

// QuizEndedPayload is the payload for a QuizEnded event (ended early by an
// admin, scores reset).
type QuizEndedPayload struct {
	QuestionsAsked int            `json:"questions_asked"`
	FinalScores    map[string]int `json:"final_scores"`
}
