package onboarding

import (
	"fmt"
	"sync"
)

// Question types.
const (
	QuestionDirect     = "direct"
	QuestionRadio      = "radio"
	QuestionCheckboxes = "checkboxes"
)

// Question is one structured interview question surfaced to the user.
// Options is nil for direct questions and non-empty for radio/checkboxes.
type Question struct {
	Question string   `json:"question"`
	Type     string   `json:"question_type"`
	Options  []string `json:"options,omitempty"`
}

// Validate enforces the option rules per question type.
func (q *Question) Validate() error {
	switch q.Type {
	case QuestionDirect:
		if len(q.Options) > 0 {
			return fmt.Errorf("options should not be provided for %q questions", QuestionDirect)
		}
	case QuestionRadio, QuestionCheckboxes:
		if len(q.Options) == 0 {
			return fmt.Errorf("options must be provided for %q questions", q.Type)
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}

// Board hands questions posted by the ask_question tool back to the service
// that drove the run. One pending question per user; a new post replaces the
// previous one.
type Board struct {
	mu      sync.Mutex
	pending map[string]*Question
}

// NewBoard creates an empty question board.
func NewBoard() *Board {
	return &Board{pending: make(map[string]*Question)}
}

// Post records the pending question for a user.
func (b *Board) Post(userID string, q *Question) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[userID] = q
}

// Take removes and returns the pending question for a user, or nil.
func (b *Board) Take(userID string) *Question {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.pending[userID]
	delete(b.pending, userID)
	return q
}
