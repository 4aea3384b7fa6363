// Package tool implements the function calling subsystem that lets agents
// invoke structured capabilities (domain services, profile edits, delegation
// to other agents) with schema validated arguments and consistent error
// handling. Tool failures are always surfaced as structured error payloads fed
// back to the model; they never abort a run.
package tool

import (
	"fmt"

	"github.com/aion-pfm/aion/core"
	"github.com/aion-pfm/aion/internal/util"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions (snake_case names recommended)
//   - Define proper JSON schema for parameters
//   - Take the acting user's identity from the ToolContext, never from arguments
//   - Handle errors gracefully and be safe for sequential reuse across runs
type Tool interface {
	// Name returns the unique identifier for this tool within an agent's registry.
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is provided to the LLM to help it decide when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Call executes the tool with structured arguments and the ToolContext.
	// The result is a structured mapping folded back into the conversation as
	// a tool result.
	Call(toolCtx *core.ToolContext, args map[string]any) (map[string]any, error)
}

// UsageLabeler is an optional interface a Tool may implement to control the
// label recorded in the tools-used summary of a run. Delegation-style tools
// return the target agent name so summaries report who did the work rather
// than the routing tool itself.
type UsageLabeler interface {
	UsageLabel(args map[string]any) string
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
