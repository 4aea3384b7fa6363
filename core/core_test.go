package core

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aion-pfm/aion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurn_Accessors(t *testing.T) {
	call := FunctionCall{ID: "fc1", Name: "call_budget_agent", Arguments: map[string]any{"message": "rebalance"}}
	turn := NewFunctionCallTurn(call)

	assert.Equal(t, RoleModel, turn.Role)
	assert.Equal(t, []FunctionCall{call}, turn.FunctionCalls())
	assert.Empty(t, turn.FunctionResponses())
	assert.Empty(t, turn.Text())

	resp := NewFunctionResponseTurn("fc1", "call_budget_agent", map[string]any{"type": "success"}, nil)
	assert.Equal(t, RoleUser, resp.Role)
	require.Len(t, resp.FunctionResponses(), 1)
	assert.Empty(t, resp.FunctionResponses()[0].Error)
}

func TestTurn_FunctionResponseTurn_Error(t *testing.T) {
	turn := NewFunctionResponseTurn("fc2", "missing_tool", nil, assert.AnError)
	require.Len(t, turn.FunctionResponses(), 1)
	assert.Equal(t, assert.AnError.Error(), turn.FunctionResponses()[0].Error)
}

func TestTurn_JSONRoundTrip(t *testing.T) {
	original := NewFunctionCallTurn(FunctionCall{
		ID:        "fc1",
		Name:      "send_message_to_agent",
		Arguments: map[string]any{"agent_name": "budget_agent", "message": "rebalance due to dining overspend"},
	})

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Turn
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Role, decoded.Role)
	require.Len(t, decoded.FunctionCalls(), 1)
	assert.Equal(t, "send_message_to_agent", decoded.FunctionCalls()[0].Name)
	assert.Equal(t, "budget_agent", decoded.FunctionCalls()[0].Arguments["agent_name"])
}

func TestTurn_UnmarshalUnknownPartType(t *testing.T) {
	payload := `{"id":"x","role":"user","parts":[{"type":"video"}]}`
	var turn Turn
	assert.Error(t, json.Unmarshal([]byte(payload), &turn))
}

func TestOutcome_ToolsUsedSummary(t *testing.T) {
	none := Outcome{Kind: OutcomeFinalAnswer, Message: "hi"}
	assert.Equal(t, "no tools used", none.ToolsUsedSummary())

	some := Outcome{Kind: OutcomeFinalAnswer, ToolsUsed: []string{"budget_agent", "edit_user_profile"}}
	assert.Equal(t, "budget_agent, edit_user_profile", some.ToolsUsedSummary())
}

func TestToolContext_Validate(t *testing.T) {
	tc := NewToolContext(context.Background(), "chatbot_agent", "user-1", "fc1", 2, nil, logging.NoOpLogger{})
	assert.NoError(t, tc.Validate())
	assert.Equal(t, "user-1", tc.UserID())
	assert.Equal(t, 2, tc.RemainingDepth())

	invalid := NewToolContext(context.Background(), "", "user-1", "fc1", 0, nil, nil)
	assert.Error(t, invalid.Validate())
}
