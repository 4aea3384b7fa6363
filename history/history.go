package history

import (
	"context"

	"github.com/aion-pfm/aion/core"
)

// Store persists conversation turns keyed by (agent, user).
//
// Contract:
//   - Append persists a turn at the end of that pair's log. It fails only on
//     storage unavailability, which is fatal to the calling operation.
//   - Replay returns all turns in creation order; an empty slice when none
//     exist. Role and parts are preserved exactly across a round-trip.
//   - Clear deletes all turns for the pair and is idempotent: clearing an
//     already-empty history is a no-op, not an error.
type Store interface {
	Append(ctx context.Context, agentName, userID string, turn core.Turn) error
	Replay(ctx context.Context, agentName, userID string) ([]core.Turn, error)
	Clear(ctx context.Context, agentName, userID string) error
}
