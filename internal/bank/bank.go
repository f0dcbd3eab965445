package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/mdevans/quizbuzz/internal/quiz"
)

var (
	// ErrNoQuestions is returned when the bank holds no usable questions.
	ErrNoQuestions = errors.New("question bank is empty")
	// ErrOutOfRange is returned for a question index beyond the feed.
	ErrOutOfRange = errors.New("question index out of range")
)

// DefaultMaxQuestions caps how many questions a single quiz draws.
const DefaultMaxQuestions = 20

// Store wraps the sqlite question bank.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the question bank at path.
func Open(path string) (*Store, error) {
	log.Info().Str("path", path).Msg("opening question bank")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			prompt TEXT,
			answer TEXT
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init question bank schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Add inserts a question into the bank. Used by seeding tools and tests;
// a running quiz never writes.
func (s *Store) Add(ctx context.Context, prompt, answer string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO questions (prompt, answer) VALUES (?, ?)",
		strings.TrimSpace(prompt), strings.TrimSpace(answer))
	return err
}

// Load draws a randomly ordered feed of at most maxCount questions,
// skipping rows with a blank prompt. Called once at session start; the
// returned feed is immutable for the life of the process.
func (s *Store) Load(ctx context.Context, maxCount int) (*Feed, error) {
	if maxCount <= 0 {
		maxCount = DefaultMaxQuestions
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT prompt, answer FROM questions
		WHERE TRIM(COALESCE(prompt, '')) <> ''
		ORDER BY RANDOM() LIMIT ?`, maxCount)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []quiz.Question
	for rows.Next() {
		var q quiz.Question
		if err := rows.Scan(&q.Prompt, &q.Answer); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Number = len(questions) + 1
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	log.Info().Int("count", len(questions)).Int("cap", maxCount).Msg("question feed loaded")
	return NewFeed(questions), nil
}

// Feed is the fixed, pre-shuffled question sequence for one quiz run.
type Feed struct {
	questions []quiz.Question
}

// NewFeed builds a feed from an already ordered question slice.
func NewFeed(questions []quiz.Question) *Feed {
	return &Feed{questions: questions}
}

// QuestionAt returns the question at the 0-based index.
func (f *Feed) QuestionAt(i int) (quiz.Question, error) {
	if i < 0 || i >= len(f.questions) {
		return quiz.Question{}, ErrOutOfRange
	}
	return f.questions[i], nil
}

// Len returns the number of questions in the feed.
func (f *Feed) Len() int { return len(f.questions) }
