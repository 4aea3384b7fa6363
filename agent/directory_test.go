package agent

import (
	"context"
	"testing"

	"github.com/aion-pfm/aion/core"
	"github.com/aion-pfm/aion/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(name string) tool.Tool {
	return tool.NewFunctionTool(name, "echoes its input",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *core.ToolContext, args map[string]any) (map[string]any, error) {
			return args, nil
		},
	)
}

func coordinatorDefinition() Definition {
	return Definition{
		Agent: Agent{
			Name:           "main_ai_coordinator",
			Description:    "Routes user requests to specialist agents.",
			Instruction:    "You coordinate specialist agents.",
			Model:          "claude-3-5-sonnet-20241022",
			ThinkingBudget: 0,
		},
		Tools: []tool.Tool{echoTool("send_message_to_agent")},
	}
}

func TestDirectory_CreatesMissingAgent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryConfigStore()
	dir := NewDirectory(store)

	record, registry, err := dir.GetOrCreate(ctx, coordinatorDefinition())
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, "main_ai_coordinator", record.Name)
	assert.False(t, record.CreatedAt.IsZero())

	stored, err := store.Get(ctx, "main_ai_coordinator")
	require.NoError(t, err)
	assert.Equal(t, record.Model, stored.Model)

	_, ok := registry.Resolve("send_message_to_agent")
	assert.True(t, ok)
}

func TestDirectory_CorrectsModelDrift(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryConfigStore()
	dir := NewDirectory(store)

	def := coordinatorDefinition()
	_, _, err := dir.GetOrCreate(ctx, def)
	require.NoError(t, err)

	// Simulate out-of-band edits to the persisted record.
	stale, err := store.Get(ctx, def.Agent.Name)
	require.NoError(t, err)
	stale.Model = "claude-3-haiku-20240307"
	stale.ThinkingBudget = 9999
	require.NoError(t, store.Put(ctx, stale))

	record, _, err := dir.GetOrCreate(ctx, def)
	require.NoError(t, err)
	assert.Equal(t, def.Agent.Model, record.Model)
	assert.Equal(t, def.Agent.ThinkingBudget, record.ThinkingBudget)

	stored, err := store.Get(ctx, def.Agent.Name)
	require.NoError(t, err)
	assert.Equal(t, def.Agent.Model, stored.Model)
	assert.Equal(t, def.Agent.ThinkingBudget, stored.ThinkingBudget)
}

func TestDirectory_PreservesOtherPersistedFields(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryConfigStore()
	dir := NewDirectory(store)

	def := coordinatorDefinition()
	first, _, err := dir.GetOrCreate(ctx, def)
	require.NoError(t, err)

	// A second access with identical config must not rewrite the record.
	second, _, err := dir.GetOrCreate(ctx, def)
	require.NoError(t, err)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
}

func TestDirectory_ReRegistersToolsIdempotently(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(NewInMemoryConfigStore())

	def := coordinatorDefinition()
	_, registry, err := dir.GetOrCreate(ctx, def)
	require.NoError(t, err)
	_, again, err := dir.GetOrCreate(ctx, def)
	require.NoError(t, err)

	assert.Same(t, registry, again)
	assert.Equal(t, []string{"send_message_to_agent"}, again.Names())
}

func TestDirectory_RequiresName(t *testing.T) {
	dir := NewDirectory(NewInMemoryConfigStore())
	_, _, err := dir.GetOrCreate(context.Background(), Definition{})
	assert.Error(t, err)
}

func TestSQLiteConfigStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/agents.db"

	store, err := NewSQLiteConfigStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.Get(ctx, "chatbot_agent")
	assert.ErrorIs(t, err, ErrNotFound)

	dir := NewDirectory(store)
	def := coordinatorDefinition()
	_, _, err = dir.GetOrCreate(ctx, def)
	require.NoError(t, err)

	stored, err := store.Get(ctx, def.Agent.Name)
	require.NoError(t, err)
	assert.Equal(t, def.Agent.Instruction, stored.Instruction)
	assert.Equal(t, def.Agent.Model, stored.Model)
}
