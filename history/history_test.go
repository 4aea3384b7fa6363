package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aion-pfm/aion/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface assertions.
var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// runStoreContract exercises the Store contract shared by all implementations:
// append-only order preservation, empty replay, and idempotent clear.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	turns, err := store.Replay(ctx, "chatbot_agent", "user-1")
	require.NoError(t, err)
	assert.Empty(t, turns)

	appended := []core.Turn{
		core.NewUserTurn("hello"),
		core.NewModelTurn("hi there"),
		core.NewFunctionCallTurn(core.FunctionCall{ID: "fc1", Name: "call_budget_agent", Arguments: map[string]any{"message": "rebalance"}}),
		core.NewFunctionResponseTurn("fc1", "call_budget_agent", map[string]any{"type": "success"}, nil),
	}
	for _, turn := range appended {
		require.NoError(t, store.Append(ctx, "chatbot_agent", "user-1", turn))
	}

	// Another pair must stay isolated.
	require.NoError(t, store.Append(ctx, "budget_agent", "user-1", core.NewUserTurn("other log")))

	turns, err = store.Replay(ctx, "chatbot_agent", "user-1")
	require.NoError(t, err)
	require.Len(t, turns, len(appended))
	for i, turn := range turns {
		assert.Equal(t, appended[i].ID, turn.ID, "order must be preserved")
		assert.Equal(t, appended[i].Role, turn.Role)
	}

	// Tool call request/result parts survive the round-trip intact.
	require.Len(t, turns[2].FunctionCalls(), 1)
	assert.Equal(t, "rebalance", turns[2].FunctionCalls()[0].Arguments["message"])
	require.Len(t, turns[3].FunctionResponses(), 1)
	assert.Equal(t, "success", turns[3].FunctionResponses()[0].Response["type"])

	// Clear is idempotent.
	require.NoError(t, store.Clear(ctx, "chatbot_agent", "user-1"))
	turns, err = store.Replay(ctx, "chatbot_agent", "user-1")
	require.NoError(t, err)
	assert.Empty(t, turns)
	require.NoError(t, store.Clear(ctx, "chatbot_agent", "user-1"))

	turns, err = store.Replay(ctx, "budget_agent", "user-1")
	require.NoError(t, err)
	assert.Len(t, turns, 1, "clearing one pair must not touch another")
}

func TestInMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, NewInMemoryStore())
}

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "aion.db"))
	require.NoError(t, err)
	defer store.Close()

	runStoreContract(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "aion.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, "chatbot_agent", "user-1", core.NewUserTurn("persist me")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	turns, err := reopened.Replay(ctx, "chatbot_agent", "user-1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "persist me", turns[0].Text())
}

func TestInMemoryStore_ReplayIsDefensiveCopy(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.Append(ctx, "a", "u", core.NewUserTurn("one")))

	turns, err := store.Replay(ctx, "a", "u")
	require.NoError(t, err)
	turns[0] = core.NewUserTurn("mutated")

	again, err := store.Replay(ctx, "a", "u")
	require.NoError(t, err)
	assert.Equal(t, "one", again[0].Text())
}
