package tool

import (
	"fmt"

	"github.com/aion-pfm/aion/core"
)

// DelegateToolName is the canonical name of the inter-agent delegation tool.
const DelegateToolName = "send_message_to_agent"

// delegateTool routes a message to another agent's turn loop and folds the
// nested final answer back as this tool's result. Targets are resolved
// against a fixed allow-list, not the full agent directory: new agents must
// be explicitly whitelisted here.
type delegateTool struct {
	allowed []string
}

var (
	_ Tool         = (*delegateTool)(nil)
	_ UsageLabeler = (*delegateTool)(nil)
)

// NewDelegateTool constructs the delegation tool with an explicit allow-list
// of target agent names.
func NewDelegateTool(allowedAgents []string) Tool {
	allowed := make([]string, len(allowedAgents))
	copy(allowed, allowedAgents)
	return &delegateTool{allowed: allowed}
}

func (t *delegateTool) Name() string { return DelegateToolName }

func (t *delegateTool) Description() string {
	return "Sends a message to another agent in the AION system. Use this to delegate tasks to specialized agents."
}

func (t *delegateTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agent_name": map[string]any{
				"type":        "string",
				"enum":        t.allowed,
				"description": fmt.Sprintf("The name of the agent to call. Available: %v.", t.allowed),
			},
			"message": map[string]any{
				"type":        "string",
				"description": "The message or request to send to the specified agent.",
			},
		},
		"required": []string{"agent_name", "message"},
	}
}

func (t *delegateTool) Call(tc *core.ToolContext, args map[string]any) (map[string]any, error) {
	agentName, ok := args["agent_name"].(string)
	if !ok || agentName == "" {
		return nil, NewToolError(t.Name(), "field 'agent_name' must be a non-empty string", "VALIDATION_ERROR")
	}
	message, ok := args["message"].(string)
	if !ok || message == "" {
		return nil, NewToolError(t.Name(), "field 'message' must be a non-empty string", "VALIDATION_ERROR")
	}

	if !t.isAllowed(agentName) {
		return nil, NewToolError(t.Name(),
			fmt.Sprintf("agent %q is not recognized or not yet implemented", agentName),
			"AGENT_NOT_RECOGNIZED")
	}

	invoker := tc.Invoker()
	if invoker == nil {
		return nil, NewToolError(t.Name(), "delegation is not available in this run", "EXECUTION_ERROR")
	}
	if tc.RemainingDepth() <= 0 {
		return nil, NewToolError(t.Name(), "maximum delegation depth exceeded", "DEPTH_EXCEEDED")
	}

	tc.Logger().Info("tool.delegate.start",
		"from_agent", tc.AgentName(), "to_agent", agentName, "fc_id", tc.FunctionCallID())

	outcome, err := invoker.InvokeAgent(tc.Context(), agentName, tc.UserID(), message, tc.RemainingDepth()-1)
	if err != nil {
		return nil, err
	}
	if outcome.Kind == core.OutcomeExhausted {
		return nil, NewToolError(t.Name(),
			fmt.Sprintf("agent %q could not converge on an answer", agentName),
			"EXECUTION_ERROR")
	}

	return map[string]any{
		"agent":   agentName,
		"message": outcome.Message,
	}, nil
}

// UsageLabel attributes the invocation to the target agent.
func (t *delegateTool) UsageLabel(args map[string]any) string {
	if name, ok := args["agent_name"].(string); ok && name != "" {
		return name
	}
	return t.Name()
}

func (t *delegateTool) isAllowed(agentName string) bool {
	for _, name := range t.allowed {
		if name == agentName {
			return true
		}
	}
	return false
}
