package app

import (
	"sync"

	"quizzer/internal/domain"
)

// Attempt drives one linear pass through a fixed question sequence.
// States are in-progress and submitted; submission is terminal.
type Attempt struct {
	mu         sync.Mutex
	questions  []domain.Question
	current    int
	selections map[int]string
	submitted  bool
	score      int
}

// StartAttempt validates the questions and returns an attempt positioned on the first one.
// Nothing is created when validation fails.
func StartAttempt(questions []domain.Question) (*Attempt, error) {
	if err := domain.ValidateQuestions(questions); err != nil {
		return nil, err
	}
	qs := make([]domain.Question, len(questions))
	for i, q := range questions {
		qs[i] = cloneQuestion(q)
	}
	return &Attempt{
		questions:  qs,
		selections: make(map[int]string),
	}, nil
}

// Select records option for the current question, replacing any earlier choice.
func (a *Attempt) Select(option string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submitted {
		return domain.ErrAttemptSubmitted
	}
	a.selections[a.current] = option
	return nil
}

// Advance moves to the next question. It reports false at the last question or after submission.
func (a *Attempt) Advance() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submitted || a.current >= len(a.questions)-1 {
		return false
	}
	a.current++
	return true
}

// Retreat moves to the previous question. It reports false at the first question or after submission.
func (a *Attempt) Retreat() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submitted || a.current == 0 {
		return false
	}
	a.current--
	return true
}

// Submit scores the attempt and freezes it. A repeated call returns the first score
// together with domain.ErrAttemptSubmitted.
func (a *Attempt) Submit() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submitted {
		return a.score, domain.ErrAttemptSubmitted
	}
	score := 0
	for i, q := range a.questions {
		// unanswered indices are absent and never match
		if chosen, ok := a.selections[i]; ok && chosen == q.Answer {
			score++
		}
	}
	a.score = score
	a.submitted = true
	return score, nil
}

// Submitted reports whether the attempt has been scored.
func (a *Attempt) Submitted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submitted
}

// Total is the number of questions in the attempt.
func (a *Attempt) Total() int {
	return len(a.questions)
}

// View snapshots the attempt for rendering.
func (a *Attempt) View() domain.AttemptView {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := len(a.questions)
	return domain.AttemptView{
		Index:     a.current,
		Total:     total,
		Progress:  float64(a.current+1) / float64(total),
		Attempted: len(a.selections),
		Question:  cloneQuestion(a.questions[a.current]),
		Selected:  a.selections[a.current],
		Submitted: a.submitted,
		Score:     a.score,
	}
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}
