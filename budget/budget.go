package budget

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates that no budget exists under the requested ID.
var ErrNotFound = errors.New("budget not found")

// Budget is a single spending category with an allocated amount and the
// amount spent so far.
type Budget struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Amount    float64   `json:"budget"`
	Spent     float64   `json:"spent"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Overspent reports whether spending exceeds the allocated amount.
func (b *Budget) Overspent() bool { return b.Spent > b.Amount }

// Store persists budgets per user.
type Store interface {
	// List returns the user's budgets in creation order.
	List(ctx context.Context, userID string) ([]Budget, error)

	// Get returns the budget with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Budget, error)

	// Put inserts or overwrites a budget keyed by its ID.
	Put(ctx context.Context, b *Budget) error

	// Delete removes the budget with the given ID. Deleting a missing
	// budget returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Replace atomically swaps all budgets of a user for the given set.
	Replace(ctx context.Context, userID string, budgets []Budget) error
}
