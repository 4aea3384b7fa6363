package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/aion-pfm/aion/core"
	"github.com/aion-pfm/aion/internal/util"
	"github.com/aion-pfm/aion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testToolContext() *core.ToolContext {
	return core.NewToolContext(context.Background(), "chatbot_agent", "user-1", "fc1", 2, nil, logging.NoOpLogger{})
}

// -------------------- Validation Tests --------------------

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror possible JSON decoded schema shape
		"required": []any{"x"},
	}

	err := util.ValidateParameters(map[string]any{"x": 5}, schema)
	assert.NoError(t, err)

	err = util.ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Equal(t, "x", vErr.Field)
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	err = util.ValidateParameters(map[string]any{"x": "not-int"}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Contains(t, vErr.Message, "expected type integer")
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// Hand-written schemas carry required as []string.
	handWritten := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{"type": "string"},
		},
		"required": []string{"message"},
	}
	err = util.ValidateParameters(map[string]any{}, handWritten)
	assert.Error(t, err)
	err = util.ValidateParameters(map[string]any{"message": "hi", "extra": 1}, handWritten)
	assert.NoError(t, err, "undeclared fields pass through")
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"amount": map[string]any{"type": "number"},
		},
		"required": []string{"amount"},
	}

	spendTool := NewFunctionTool("record_spend", "Record a spend amount", params,
		func(tc *core.ToolContext, args map[string]any) (map[string]any, error) {
			return map[string]any{"user": tc.UserID(), "amount": args["amount"]}, nil
		})

	result, err := spendTool.Call(testToolContext(), map[string]any{"amount": 42.0})
	require.NoError(t, err)
	assert.Equal(t, "user-1", result["user"])
	assert.Equal(t, 42.0, result["amount"])
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		"required": []any{"a"},
	}
	tTool := NewFunctionTool("test", "Test", params,
		func(*core.ToolContext, map[string]any) (map[string]any, error) {
			return nil, nil
		})
	_, err := tTool.Call(testToolContext(), map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	failTool := NewFunctionTool("fail", "Always fails",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(*core.ToolContext, map[string]any) (map[string]any, error) {
			return nil, errors.New("downstream unavailable")
		})
	_, err := failTool.Call(testToolContext(), map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Equal(t, "downstream unavailable", toolErr.Message)
}

func TestFunctionTool_CustomToolErrorPreserved(t *testing.T) {
	custom := NewToolError("custom", "domain rejected", "DOMAIN_ERROR")
	failTool := NewFunctionTool("custom", "Custom failure",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(*core.ToolContext, map[string]any) (map[string]any, error) {
			return nil, custom
		})
	_, err := failTool.Call(testToolContext(), map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "DOMAIN_ERROR", toolErr.Code)
}

// -------------------- Registry Tests --------------------

func TestRegistry_RegisterResolveOverwrite(t *testing.T) {
	reg := NewRegistry()
	first := NewFunctionTool("alpha", "first", map[string]any{"type": "object"}, nil)
	second := NewFunctionTool("alpha", "second", map[string]any{"type": "object"}, nil)
	other := NewFunctionTool("beta", "other", map[string]any{"type": "object"}, nil)

	reg.Register(first)
	reg.Register(other)
	reg.Register(second) // overwrites alpha, keeps its position

	resolved, ok := reg.Resolve("alpha")
	require.True(t, ok)
	assert.Equal(t, "second", resolved.Description())

	_, ok = reg.Resolve("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"alpha", "beta"}, reg.Names())

	defs := reg.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "second", defs[0].Description)
}
