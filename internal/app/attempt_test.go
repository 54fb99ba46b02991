package app_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"quizzer/internal/app"
	"quizzer/internal/domain"
)

func questions(n int) []domain.Question {
	qs := make([]domain.Question, n)
	for i := range qs {
		qs[i] = domain.Question{
			Question: fmt.Sprintf("Question %d?", i+1),
			Options:  []string{"a", "b", "c", "d"},
			Answer:   "b",
		}
	}
	return qs
}

func TestStartAttemptRejectsInvalidSet(t *testing.T) {
	if _, err := app.StartAttempt(nil); !errors.Is(err, domain.ErrInvalidQuestionSet) {
		t.Fatalf("expected invalid set for empty list, got %v", err)
	}
	bad := questions(2)
	bad[1].Answer = "z"
	attempt, err := app.StartAttempt(bad)
	if !errors.Is(err, domain.ErrInvalidQuestionSet) {
		t.Fatalf("expected invalid set, got %v", err)
	}
	if attempt != nil {
		t.Fatalf("no attempt must be created on failure")
	}
}

func TestAttemptScoresAnsweredQuestions(t *testing.T) {
	qs := []domain.Question{
		{Question: "Q1", Options: []string{"a", "b", "c", "d"}, Answer: "a"},
		{Question: "Q2", Options: []string{"a", "b", "c", "d"}, Answer: "b"},
		{Question: "Q3", Options: []string{"a", "b", "c", "d"}, Answer: "c"},
	}
	attempt, err := app.StartAttempt(qs)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_ = attempt.Select("a")
	attempt.Advance()
	_ = attempt.Select("d")
	attempt.Advance()
	// Q3 left unanswered

	score, err := attempt.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if score != 1 {
		t.Fatalf("expected score 1, got %d", score)
	}
}

func TestAttemptRightSkippedWrong(t *testing.T) {
	qs := []domain.Question{
		{Question: "Q1", Options: []string{"a", "b", "c", "d"}, Answer: "a"},
		{Question: "Q2", Options: []string{"a", "b", "c", "d"}, Answer: "b"},
		{Question: "Q3", Options: []string{"a", "b", "c", "d"}, Answer: "c"},
	}
	attempt, err := app.StartAttempt(qs)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_ = attempt.Select("a")
	attempt.Advance()
	// Q2 skipped
	attempt.Advance()
	_ = attempt.Select("d")

	if got := attempt.View().Attempted; got != 2 {
		t.Fatalf("expected 2 attempted, got %d", got)
	}
	score, err := attempt.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if score != 1 {
		t.Fatalf("expected score 1, got %d", score)
	}
}

func TestAttemptLastWriteWins(t *testing.T) {
	attempt, _ := app.StartAttempt(questions(1))
	_ = attempt.Select("a")
	_ = attempt.Select("b")

	view := attempt.View()
	if view.Selected != "b" || view.Attempted != 1 {
		t.Fatalf("expected single selection b, got %+v", view)
	}
	if score, _ := attempt.Submit(); score != 1 {
		t.Fatalf("expected score 1, got %d", score)
	}
}

func TestAttemptNavigationIsBounded(t *testing.T) {
	attempt, _ := app.StartAttempt(questions(3))

	if attempt.Retreat() {
		t.Fatalf("retreat at first question must be a no-op")
	}
	if attempt.View().Index != 0 {
		t.Fatalf("index moved below zero")
	}
	for i := 0; i < 5; i++ {
		attempt.Advance()
	}
	view := attempt.View()
	if view.Index != 2 {
		t.Fatalf("expected index clamped at 2, got %d", view.Index)
	}
	if view.Progress != 1 {
		t.Fatalf("expected progress 1 at last question, got %v", view.Progress)
	}
	if attempt.Advance() {
		t.Fatalf("advance at last question must report false")
	}
	if !attempt.Retreat() || attempt.View().Index != 1 {
		t.Fatalf("expected retreat to index 1")
	}
}

func TestAttemptNavigationKeepsSelections(t *testing.T) {
	attempt, _ := app.StartAttempt(questions(2))
	_ = attempt.Select("c")
	attempt.Advance()
	attempt.Retreat()

	if got := attempt.View().Selected; got != "c" {
		t.Fatalf("expected selection preserved, got %q", got)
	}
}

func TestAttemptSubmitIsTerminal(t *testing.T) {
	attempt, _ := app.StartAttempt(questions(2))
	_ = attempt.Select("b")

	first, err := attempt.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	second, err := attempt.Submit()
	if !errors.Is(err, domain.ErrAttemptSubmitted) {
		t.Fatalf("expected already submitted, got %v", err)
	}
	if second != first {
		t.Fatalf("expected repeated submit to keep score %d, got %d", first, second)
	}
	if err := attempt.Select("a"); !errors.Is(err, domain.ErrAttemptSubmitted) {
		t.Fatalf("expected select rejected after submit, got %v", err)
	}
	if attempt.Advance() {
		t.Fatalf("navigation must be frozen after submit")
	}
	view := attempt.View()
	if !view.Submitted || view.Score != 1 || view.Selected != "b" {
		t.Fatalf("unexpected view after submit %+v", view)
	}
}

func TestAttemptConcurrentSubmitTransitionsOnce(t *testing.T) {
	attempt, _ := app.StartAttempt(questions(4))
	_ = attempt.Select("b")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := attempt.Submit(); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted submit, got %d", accepted)
	}
}

func TestAttemptScoreBounds(t *testing.T) {
	all, _ := app.StartAttempt(questions(3))
	for i := 0; i < 3; i++ {
		_ = all.Select("b")
		all.Advance()
	}
	if score, _ := all.Submit(); score != 3 {
		t.Fatalf("expected full score 3, got %d", score)
	}

	none, _ := app.StartAttempt(questions(3))
	if score, _ := none.Submit(); score != 0 {
		t.Fatalf("expected score 0 with no answers, got %d", score)
	}
}

func TestAttemptCopiesQuestions(t *testing.T) {
	qs := questions(1)
	attempt, _ := app.StartAttempt(qs)
	qs[0].Options[0] = "z"
	qs[0] = domain.Question{Question: "changed", Options: []string{"a", "b", "c", "d"}, Answer: "a"}

	view := attempt.View()
	if got := view.Question.Question; got != "Question 1?" {
		t.Fatalf("attempt must not observe caller mutations, got %q", got)
	}
	if got := view.Question.Options[0]; got != "a" {
		t.Fatalf("attempt must not share options with the caller, got %q", got)
	}

	view.Question.Options[1] = "z"
	if got := attempt.View().Question.Options[1]; got != "b" {
		t.Fatalf("view mutations must not reach the attempt, got %q", got)
	}
}
