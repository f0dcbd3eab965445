package bank

import (
	"context"
	"errors"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open bank: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadCapsAndFilters(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i := 0; i < 10; i++ {
		if err := s.Add(ctx, "prompt", "answer"); err != nil {
			t.Fatalf("add question: %v", err)
		}
	}
	// Blank prompts never make it into a feed.
	if err := s.Add(ctx, "   ", "ignored"); err != nil {
		t.Fatalf("add blank question: %v", err)
	}

	feed, err := s.Load(ctx, 5)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if feed.Len() != 5 {
		t.Errorf("feed.Len() = %d, want 5 (capped)", feed.Len())
	}

	feed, err = s.Load(ctx, 100)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if feed.Len() != 10 {
		t.Errorf("feed.Len() = %d, want 10 (blank row filtered)", feed.Len())
	}
}

func TestLoadNumbersQuestions(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	for i := 0; i < 3; i++ {
		if err := s.Add(ctx, "prompt", "answer"); err != nil {
			t.Fatalf("add question: %v", err)
		}
	}

	feed, err := s.Load(ctx, 3)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for i := 0; i < feed.Len(); i++ {
		q, err := feed.QuestionAt(i)
		if err != nil {
			t.Fatalf("QuestionAt(%d) error = %v", i, err)
		}
		if q.Number != i+1 {
			t.Errorf("QuestionAt(%d).Number = %d, want %d", i, q.Number, i+1)
		}
	}
}

func TestLoadEmptyBank(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Load(context.Background(), 20); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("Load() on empty bank error = %v, want ErrNoQuestions", err)
	}
}

func TestQuestionAtOutOfRange(t *testing.T) {
	feed := NewFeed(nil)
	if _, err := feed.QuestionAt(0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("QuestionAt(0) error = %v, want ErrOutOfRange", err)
	}
	if _, err := feed.QuestionAt(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("QuestionAt(-1) error = %v, want ErrOutOfRange", err)
	}
}
