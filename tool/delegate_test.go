package tool

import (
	"context"
	"testing"

	"github.com/aion-pfm/aion/core"
	"github.com/aion-pfm/aion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInvoker records nested invocations and returns a scripted outcome.
type fakeInvoker struct {
	calls   int
	agent   string
	user    string
	message string
	depth   int
	outcome core.Outcome
	err     error
}

func (f *fakeInvoker) InvokeAgent(_ context.Context, agentName, userID, message string, remainingDepth int) (core.Outcome, error) {
	f.calls++
	f.agent = agentName
	f.user = userID
	f.message = message
	f.depth = remainingDepth
	return f.outcome, f.err
}

func delegateContext(invoker core.Invoker, depth int) *core.ToolContext {
	return core.NewToolContext(context.Background(), "main_ai_coordinator", "user-1", "fc1", depth, invoker, logging.NoOpLogger{})
}

func TestDelegateTool_Success(t *testing.T) {
	invoker := &fakeInvoker{outcome: core.Outcome{
		Kind:    core.OutcomeFinalAnswer,
		Message: "Budget rebalanced.",
	}}
	dt := NewDelegateTool([]string{"budget_agent"})

	result, err := dt.Call(delegateContext(invoker, 3), map[string]any{
		"agent_name": "budget_agent",
		"message":    "rebalance due to dining overspend",
	})
	require.NoError(t, err)
	assert.Equal(t, "budget_agent", result["agent"])
	assert.Equal(t, "Budget rebalanced.", result["message"])

	assert.Equal(t, 1, invoker.calls)
	assert.Equal(t, "user-1", invoker.user, "acting user identity flows from the ToolContext")
	assert.Equal(t, 2, invoker.depth, "nested run gets one less delegation level")
}

func TestDelegateTool_UnknownAgentNeverInvokes(t *testing.T) {
	invoker := &fakeInvoker{}
	dt := NewDelegateTool([]string{"budget_agent"})

	_, err := dt.Call(delegateContext(invoker, 3), map[string]any{
		"agent_name": "market_watcher",
		"message":    "any",
	})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "AGENT_NOT_RECOGNIZED", toolErr.Code)
	assert.Zero(t, invoker.calls, "unrecognized agents must never reach the engine")
}

func TestDelegateTool_DepthExhausted(t *testing.T) {
	invoker := &fakeInvoker{}
	dt := NewDelegateTool([]string{"budget_agent"})

	_, err := dt.Call(delegateContext(invoker, 0), map[string]any{
		"agent_name": "budget_agent",
		"message":    "rebalance",
	})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "DEPTH_EXCEEDED", toolErr.Code)
	assert.Zero(t, invoker.calls)
}

func TestDelegateTool_NestedExhaustionIsToolError(t *testing.T) {
	invoker := &fakeInvoker{outcome: core.Outcome{Kind: core.OutcomeExhausted}}
	dt := NewDelegateTool([]string{"budget_agent"})

	_, err := dt.Call(delegateContext(invoker, 1), map[string]any{
		"agent_name": "budget_agent",
		"message":    "rebalance",
	})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
}

func TestDelegateTool_MissingArguments(t *testing.T) {
	dt := NewDelegateTool([]string{"budget_agent"})
	_, err := dt.Call(delegateContext(&fakeInvoker{}, 3), map[string]any{"agent_name": "budget_agent"})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}
