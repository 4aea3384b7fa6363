package budget

import (
	"fmt"

	"github.com/aion-pfm/aion/core"
	"github.com/aion-pfm/aion/tool"
)

// CallToolName is the canonical name of the coordinator's budget tool.
const CallToolName = "call_budget_agent"

// UsageLabelAgent is the label recorded in tools-used summaries when the
// budget tool runs. Summaries report the specialist, not the routing tool.
const UsageLabelAgent = "budget_agent"

// callTool exposes the budget service to the coordinator agent.
type callTool struct {
	service *Service
}

var (
	_ tool.Tool         = (*callTool)(nil)
	_ tool.UsageLabeler = (*callTool)(nil)
)

// NewCallTool creates the tool the coordinator uses to delegate budget work
// to the budget service.
func NewCallTool(service *Service) tool.Tool {
	return &callTool{service: service}
}

func (t *callTool) Name() string { return CallToolName }

func (t *callTool) Description() string {
	return "Calls the Budget Agent to generate, update, or rebalance user budgets based on financial data and goals."
}

func (t *callTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "The message or request to send to the Budget Agent.",
			},
		},
		"required": []string{"message"},
	}
}

func (t *callTool) Call(tc *core.ToolContext, args map[string]any) (map[string]any, error) {
	message, ok := args["message"].(string)
	if !ok || message == "" {
		return nil, tool.NewToolError(t.Name(), "field 'message' must be a non-empty string", "VALIDATION_ERROR")
	}

	result, err := t.service.Generate(tc.Context(), tc.UserID(), message)
	if err != nil {
		return nil, err
	}
	if result.Type == ResultError {
		return nil, tool.NewToolError(t.Name(), fmt.Sprintf("budget agent failed: %v", result.Data), "EXECUTION_ERROR")
	}

	data, ok := result.Data.(map[string]any)
	if !ok {
		data = map[string]any{"result": result.Data}
	}
	return data, nil
}

// UsageLabel attributes the invocation to the budget specialist.
func (t *callTool) UsageLabel(map[string]any) string { return UsageLabelAgent }
