package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mdevans/quizbuzz/internal/events"
	"github.com/mdevans/quizbuzz/internal/quiz"
	"github.com/mdevans/quizbuzz/internal/team"
)

// State is the session lifecycle phase.
type State int

const (
	// StateIdle means no quiz is running.
	StateIdle State = iota
	// StateQuestionAnnounced means a question is live and open for buzzes.
	StateQuestionAnnounced
	// StateAwaitingAnswer means a team is inside its answer window.
	StateAwaitingAnswer
	// StateQuestionResolved means the quiz is running but the current
	// question is settled and the next announcement is pending.
	StateQuestionResolved
	// StateQuizComplete means the feed is exhausted.
	StateQuizComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQuestionAnnounced:
		return "question_announced"
	case StateAwaitingAnswer:
		return "awaiting_answer"
	case StateQuestionResolved:
		return "question_resolved"
	case StateQuizComplete:
		return "quiz_complete"
	default:
		return "unknown"
	}
}

// Actor is the acting user as resolved by the transport: identity plus the
// transport's admin determination.
type Actor struct {
	ID    string
	Name  string
	Admin bool
}

// Feed is the read-only question sequence for one quiz run.
type Feed interface {
	QuestionAt(i int) (quiz.Question, error)
	Len() int
}

// Broadcaster sends a message to the session channel. Implementations must
// not block: outbound delivery is fire-and-forget relative to session
// state transitions.
type Broadcaster interface {
	Broadcast(text string)
}

// Recorder is the append-only session log.
type Recorder interface {
	Reset(header string)
	Append(line string)
}

// Emitter publishes typed session events.
type Emitter interface {
	Emit(eventType string, payload any)
}

// Session is the quiz state machine. All state lives behind one mutex;
// inbound commands and timer callbacks alike go through it, so no two
// transitions ever interleave. There is exactly one session per process.
type Session struct {
	cfg     Config
	clock   clockwork.Clock
	teams   *team.Registry
	bcast   Broadcaster
	journal Recorder
	emit    Emitter
	timers  *timerManager

	mu            sync.Mutex
	state         State
	feed          Feed
	currentIndex  int
	questionCount int
	current       *quiz.Question
	arb           arbiter

	// Remaining answer-window time for the current answerer.
	answerRemaining time.Duration

	// Live timer ids; a fired callback whose id no longer matches is a
	// stale delivery and must be a no-op.
	noBuzzID  uint64
	answerID  uint64
	advanceID uint64
}

// New creates an idle session over the given question feed.
func New(cfg Config, clock clockwork.Clock, feed Feed, teams *team.Registry, bcast Broadcaster, journal Recorder, emit Emitter) *Session {
	return &Session{
		cfg:          cfg,
		clock:        clock,
		teams:        teams,
		bcast:        bcast,
		journal:      journal,
		emit:         emit,
		timers:       newTimerManager(clock),
		feed:         feed,
		currentIndex: -1,
	}
}

// ----- team commands -----

// CreateTeam creates a team with the actor as its first member.
func (s *Session) CreateTeam(actor Actor, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.teams.Create(name, actor.Name); err != nil {
		return err
	}
	s.bcast.Broadcast(fmt.Sprintf("🆕 Team **%s** created and %s joined it!", name, actor.Name))
	return nil
}

// JoinTeam moves the actor onto an existing team. The caller is expected
// to offer team creation when this fails with team.ErrTeamNotFound.
func (s *Session) JoinTeam(actor Actor, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.teams.Join(actor.Name, name); err != nil {
		return err
	}
	s.bcast.Broadcast(fmt.Sprintf("✅ %s joined **%s**!", actor.Name, name))
	return nil
}

// LeaveTeam removes the actor from their team.
func (s *Session) LeaveTeam(actor Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.teams.Leave(actor.Name)
	if err != nil {
		return err
	}
	s.bcast.Broadcast(fmt.Sprintf("👋 %s left team **%s**.", actor.Name, t.Name))
	return nil
}

// ListTeams broadcasts every team and its members.
func (s *Session) ListTeams() {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.teams.List()
	if len(list) == 0 {
		s.bcast.Broadcast("❌ No teams have been created yet.")
		return
	}
	var b strings.Builder
	b.WriteString("**👥 Current Teams:**\n")
	for _, t := range list {
		fmt.Fprintf(&b, "• **%s** (%d members): %s\n", t.Name, len(t.Members), strings.Join(t.Members, ", "))
	}
	s.bcast.Broadcast(b.String())
}

// ShowScores broadcasts the scoreboard.
func (s *Session) ShowScores() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bcast.Broadcast(s.scoreboardLocked())
}

// TeamNames returns the current team names, for remediation messages.
func (s *Session) TeamNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.teams.List()
	names := make([]string, len(list))
	for i, t := range list {
		names[i] = t.Name
	}
	return names
}

// ----- quiz lifecycle -----

// StartQuiz begins a new quiz run. Starting while a quiz is in progress
// forcibly resets the per-question state first; scores survive until an
// explicit end.
func (s *Session) StartQuiz(actor Actor) error {
	if !actor.Admin {
		return ErrPermissionDenied
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelAllTimersLocked()
	s.arb.reset()
	s.current = nil
	s.currentIndex = -1
	s.questionCount = 0
	s.state = StateQuestionResolved

	s.journal.Reset("📘 Quiz Log")
	log.Info().Str("started_by", actor.Name).Int("questions", s.feed.Len()).Msg("quiz starting")
	s.bcast.Broadcast("🎮 The quiz is starting! Get ready...")
	s.emit.Emit(events.TypeQuizStarted, events.QuizStartedPayload{
		StartedBy:      actor.Name,
		TotalQuestions: s.feed.Len(),
		StartedAt:      s.clock.Now(),
	})

	s.armAdvanceLocked(s.cfg.StartDelay)
	return nil
}

// Buzz signals the actor's team wants to answer the active question.
func (s *Session) Buzz(actor Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.teams.TeamOf(actor.Name)
	if t == nil {
		return team.ErrNotInTeam
	}
	if !s.questionActiveLocked() {
		return ErrNoActiveQuestion
	}
	first, err := s.arb.register(t.Name)
	if err != nil {
		return err
	}

	// Any successful buzz stops the no-buzz clock.
	s.timers.Cancel(timerNoBuzz)
	s.noBuzzID = 0

	s.emit.Emit(events.TypeBuzzRegistered, events.BuzzRegisteredPayload{
		Team:      t.Name,
		User:      actor.Name,
		Question:  s.questionCount,
		FirstBuzz: first,
	})

	if first {
		s.bcast.Broadcast(fmt.Sprintf("🔔 **%s** buzzed!", t.Name))
		s.promoteLocked()
	} else {
		s.bcast.Broadcast(fmt.Sprintf("🔔 **%s** buzzed and joined the queue.", t.Name))
	}
	return nil
}

// SubmitAnswer records the actor's submitted answer text. The current
// answerer's submission stops the answer clock and is logged for the judge
// to decide; no automatic scoring happens. Anyone else answering out of
// turn takes a penalty without disturbing the live answer window.
func (s *Session) SubmitAnswer(actor Actor, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.teams.TeamOf(actor.Name)
	if t == nil {
		return team.ErrNotInTeam
	}
	if !s.questionActiveLocked() {
		return ErrNoActiveQuestion
	}

	if s.arb.answering != "" && t.Name == s.arb.answering {
		s.timers.Cancel(timerAnswer)
		s.answerID = 0
		s.bcast.Broadcast(fmt.Sprintf("🗣️ **%s**'s answer: %s", t.Name, content))
		s.journal.Append(fmt.Sprintf("%s answered: %s", t.Name, content))
		s.emit.Emit(events.TypeAnswerSubmitted, events.AnswerSubmittedPayload{
			Team:     t.Name,
			User:     actor.Name,
			Question: s.questionCount,
			Content:  content,
		})
		return nil
	}

	s.teams.AdjustScore(t.Name, s.cfg.OutOfTurnPenalty)
	s.bcast.Broadcast(fmt.Sprintf("⛔ %s, it's not your turn! %d points.", t.Name, s.cfg.OutOfTurnPenalty))
	s.journal.Append(fmt.Sprintf("%s answered out of turn. %d points.", t.Name, s.cfg.OutOfTurnPenalty))
	s.emit.Emit(events.TypeAnswerSubmitted, events.AnswerSubmittedPayload{
		Team:      t.Name,
		User:      actor.Name,
		Question:  s.questionCount,
		Content:   content,
		OutOfTurn: true,
	})
	return nil
}

// JudgeCorrect awards the bonus to the current answerer and resolves the
// question.
func (s *Session) JudgeCorrect(actor Actor) error {
	if !actor.Admin {
		return ErrPermissionDenied
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	answering := s.arb.answering
	if answering == "" {
		return ErrNoActiveAnswerer
	}
	s.timers.Cancel(timerAnswer)
	s.answerID = 0

	score, _ := s.teams.AdjustScore(answering, s.cfg.CorrectBonus)
	s.bcast.Broadcast(fmt.Sprintf("✅ Correct! **%s** gets +%d points.", answering, s.cfg.CorrectBonus))
	s.journal.Append(fmt.Sprintf("%s answered correctly. +%d points.", answering, s.cfg.CorrectBonus))
	s.emit.Emit(events.TypeAnswerJudged, events.AnswerJudgedPayload{
		Team:     answering,
		Question: s.questionCount,
		Correct:  true,
		Delta:    s.cfg.CorrectBonus,
		Score:    score,
	})

	s.arb.reset()
	s.state = StateQuestionResolved
	if s.cfg.InterimEvery > 0 && s.questionCount%s.cfg.InterimEvery == 0 {
		s.bcast.Broadcast(s.scoreboardLocked())
	}
	s.armAdvanceLocked(s.cfg.AdvanceDelay)
	return nil
}

// JudgeIncorrect penalizes the current answerer and arbitrates the next
// queued buzzer; the question only resolves once the queue is exhausted.
func (s *Session) JudgeIncorrect(actor Actor) error {
	if !actor.Admin {
		return ErrPermissionDenied
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	answering := s.arb.answering
	if answering == "" {
		return ErrNoActiveAnswerer
	}
	s.timers.Cancel(timerAnswer)
	s.answerID = 0

	score, _ := s.teams.AdjustScore(answering, s.cfg.WrongPenalty)
	s.bcast.Broadcast(fmt.Sprintf("❌ Incorrect. **%s** gets %d points.", answering, s.cfg.WrongPenalty))
	s.journal.Append(fmt.Sprintf("%s answered incorrectly. %d points.", answering, s.cfg.WrongPenalty))
	s.emit.Emit(events.TypeAnswerJudged, events.AnswerJudgedPayload{
		Team:     answering,
		Question: s.questionCount,
		Correct:  false,
		Delta:    s.cfg.WrongPenalty,
		Score:    score,
	})

	s.promoteLocked()
	return nil
}

// Skip abandons the current question and announces the next one
// immediately.
func (s *Session) Skip(actor Actor) error {
	if !actor.Admin {
		return ErrPermissionDenied
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle || s.state == StateQuizComplete {
		return ErrQuizNotRunning
	}
	s.cancelAllTimersLocked()
	s.bcast.Broadcast("⏭️ Skipping this question...")
	s.journal.Append(fmt.Sprintf("Q%d: skipped manually.", s.questionCount))
	s.emit.Emit(events.TypeQuestionSkipped, events.QuestionSkippedPayload{Question: s.questionCount})

	s.arb.reset()
	s.state = StateQuestionResolved
	s.advanceLocked()
	return nil
}

// EndEarly stops the quiz, shows final scores, resets every score to zero
// and returns to idle.
func (s *Session) EndEarly(actor Actor) error {
	if !actor.Admin {
		return ErrPermissionDenied
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return ErrQuizNotRunning
	}
	s.cancelAllTimersLocked()

	s.bcast.Broadcast("🛑 Ending the quiz early.")
	s.bcast.Broadcast(s.scoreboardLocked())
	s.journal.Append("Quiz ended early.")
	s.emit.Emit(events.TypeQuizEnded, events.QuizEndedPayload{
		QuestionsAsked: s.questionCount,
		FinalScores:    s.scoresLocked(),
	})
	log.Info().Int("questions_asked", s.questionCount).Msg("quiz ended early")

	s.teams.ResetScores()
	s.arb.reset()
	s.current = nil
	s.currentIndex = -1
	s.questionCount = 0
	s.state = StateIdle
	return nil
}

// ----- timer callbacks -----

// onAdvanceTimer fires after the configured pause between questions.
func (s *Session) onAdvanceTimer(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.advanceID {
		return
	}
	s.advanceID = 0
	s.advanceLocked()
}

// onNoBuzzTimer fires when the grace period passes with no buzz: reveal
// the answer, resolve the question, schedule the next one.
func (s *Session) onNoBuzzTimer(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.noBuzzID {
		return
	}
	s.noBuzzID = 0
	if s.state != StateQuestionAnnounced || s.current == nil {
		return
	}

	answer := s.current.Answer
	if answer == "" {
		answer = "not provided"
	}
	s.bcast.Broadcast(fmt.Sprintf("⏰ No one buzzed. The answer was: **%s**. Moving on!", answer))
	s.journal.Append(fmt.Sprintf("Q%d: no buzz.", s.questionCount))
	s.emit.Emit(events.TypeQuestionTimedOut, events.QuestionTimedOutPayload{
		Question: s.questionCount,
	})

	s.state = StateQuestionResolved
	s.armAdvanceLocked(s.cfg.AdvanceDelay)
}

// onAnswerTick drives the answer-window countdown. Every tick either
// broadcasts a warning or, at zero, penalizes the answerer and passes the
// question to the next queued buzzer.
func (s *Session) onAnswerTick(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.answerID {
		return
	}
	s.answerID = 0
	answering := s.arb.answering
	if s.state != StateAwaitingAnswer || answering == "" {
		return
	}

	s.answerRemaining -= s.cfg.WarningInterval
	if s.answerRemaining > 0 {
		s.bcast.Broadcast(fmt.Sprintf("⏳ **%s** has %d seconds left...", answering, int(s.answerRemaining/time.Second)))
		s.answerID = s.timers.Arm(timerAnswer, s.cfg.WarningInterval, s.onAnswerTick)
		return
	}

	s.teams.AdjustScore(answering, s.cfg.TimeoutPenalty)
	s.bcast.Broadcast(fmt.Sprintf("⏰ **%s** ran out of time! %d points.", answering, s.cfg.TimeoutPenalty))
	s.journal.Append(fmt.Sprintf("%s ran out of time. %d points.", answering, s.cfg.TimeoutPenalty))
	s.emit.Emit(events.TypeQuestionTimedOut, events.QuestionTimedOutPayload{
		Team:     answering,
		Question: s.questionCount,
		Delta:    s.cfg.TimeoutPenalty,
	})

	s.promoteLocked()
}

// ----- internals (all require s.mu) -----

// promoteLocked hands the question to the next queued buzzer, or resolves
// the question when the queue is exhausted.
func (s *Session) promoteLocked() {
	next, ok := s.arb.promoteNext()
	if ok {
		s.state = StateAwaitingAnswer
		s.answerRemaining = s.cfg.AnswerWindow
		s.bcast.Broadcast(fmt.Sprintf("🕒 **%s**, you have %d seconds to answer!", next, int(s.cfg.AnswerWindow/time.Second)))
		s.answerID = s.timers.Arm(timerAnswer, s.cfg.WarningInterval, s.onAnswerTick)
		return
	}

	s.bcast.Broadcast("❌ No more teams buzzed.")
	s.journal.Append(fmt.Sprintf("Q%d: no more buzzers.", s.questionCount))
	s.state = StateQuestionResolved
	s.armAdvanceLocked(s.cfg.AdvanceDelay)
}

// advanceLocked announces the next question, or completes the quiz when
// the feed is exhausted. Only legal from the resolved state, which makes
// superseded or duplicate triggers no-ops.
func (s *Session) advanceLocked() {
	if s.state != StateQuestionResolved {
		return
	}

	if s.questionCount >= s.feed.Len() {
		s.completeLocked()
		return
	}

	s.currentIndex++
	q, err := s.feed.QuestionAt(s.currentIndex)
	if err != nil {
		log.Error().Err(err).Int("index", s.currentIndex).Msg("question feed exhausted unexpectedly")
		s.completeLocked()
		return
	}
	s.current = &q
	s.questionCount++
	s.arb.reset()
	s.state = StateQuestionAnnounced

	s.bcast.Broadcast(fmt.Sprintf("❓ **Q%d**:\n%s", s.questionCount, q.Prompt))
	s.journal.Append(fmt.Sprintf("Q%d: %s", s.questionCount, q.Prompt))
	s.emit.Emit(events.TypeQuestionAnnounced, events.QuestionAnnouncedPayload{
		Number:      s.questionCount,
		Prompt:      q.Prompt,
		AnnouncedAt: s.clock.Now(),
	})
	log.Info().Int("question", s.questionCount).Msg("question announced")

	s.noBuzzID = s.timers.Arm(timerNoBuzz, s.cfg.NoBuzzGrace, s.onNoBuzzTimer)
}

func (s *Session) completeLocked() {
	s.current = nil
	s.state = StateQuizComplete
	s.bcast.Broadcast("🏁 Quiz complete! Final scores:")
	s.bcast.Broadcast(s.scoreboardLocked())
	s.journal.Append("Quiz complete.")
	s.emit.Emit(events.TypeQuizCompleted, events.QuizCompletedPayload{
		QuestionsAsked: s.questionCount,
		FinalScores:    s.scoresLocked(),
	})
	log.Info().Int("questions_asked", s.questionCount).Msg("quiz complete")
}

func (s *Session) armAdvanceLocked(d time.Duration) {
	s.advanceID = s.timers.Arm(timerAdvance, d, s.onAdvanceTimer)
}

func (s *Session) cancelAllTimersLocked() {
	s.timers.CancelAll()
	s.noBuzzID = 0
	s.answerID = 0
	s.advanceID = 0
}

func (s *Session) questionActiveLocked() bool {
	return s.state == StateQuestionAnnounced || s.state == StateAwaitingAnswer
}

func (s *Session) scoreboardLocked() string {
	list := s.teams.List()
	if len(list) == 0 {
		return "**📊 Scoreboard:**\n• No teams yet."
	}
	var b strings.Builder
	b.WriteString("**📊 Scoreboard:**\n")
	for _, t := range list {
		fmt.Fprintf(&b, "• %s: %d points\n", t.Name, t.Score)
	}
	return b.String()
}

func (s *Session) scoresLocked() map[string]int {
	scores := make(map[string]int)
	for _, t := range s.teams.List() {
		scores[t.Name] = t.Score
	}
	return scores
}

// ----- inspection (used by the gateway and tests) -----

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// QuestionActive reports whether a question is live.
func (s *Session) QuestionActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questionActiveLocked()
}

// AnsweringTeam returns the team inside its answer window, or "".
func (s *Session) AnsweringTeam() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arb.answering
}

// BuzzQueue returns a copy of the waiting teams in buzz order.
func (s *Session) BuzzQueue() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.arb.queue))
	copy(out, s.arb.queue)
	return out
}

// CurrentQuestion returns the active question, or nil.
func (s *Session) CurrentQuestion() *quiz.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	q := *s.current
	return &q
}

// Score returns the named team's score.
func (s *Session) Score(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.teams.Get(name)
	if err != nil {
		return 0, err
	}
	return t.Score, nil
}
