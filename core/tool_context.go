package core

import (
	"context"
	"fmt"

	"github.com/aion-pfm/aion/logging"
)

// Invoker runs a named agent's turn loop on behalf of a tool. It is
// implemented by the engine and consumed by delegation tools, keeping the tool
// package free of an engine dependency.
type Invoker interface {
	// InvokeAgent executes one full nested run of the named agent for the
	// given user and message. remainingDepth bounds further nested
	// delegation; a negative value must be rejected.
	InvokeAgent(ctx context.Context, agentName, userID, message string, remainingDepth int) (Outcome, error)
}

// ToolContext provides a constrained, typed surface for tool implementations
// invoked during an agent run. The acting user's identity is part of this
// contract rather than a silently injected argument, so tool dispatch stays
// pure and testable in isolation.
type ToolContext struct {
	ctx            context.Context
	agentName      string
	userID         string
	functionCallID string
	remainingDepth int
	invoker        Invoker
	logger         logging.Logger
}

// NewToolContext constructs a tool context bound to one function call within
// an agent run. A nil logger is replaced with NoOpLogger.
func NewToolContext(
	ctx context.Context,
	agentName, userID, functionCallID string,
	remainingDepth int,
	invoker Invoker,
	logger logging.Logger,
) *ToolContext {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ToolContext{
		ctx:            ctx,
		agentName:      agentName,
		userID:         userID,
		functionCallID: functionCallID,
		remainingDepth: remainingDepth,
		invoker:        invoker,
		logger:         logger,
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// AgentName returns the name of the agent whose run dispatched this tool call.
func (tc *ToolContext) AgentName() string { return tc.agentName }

// UserID returns the identity of the acting user. Tools must take the user
// from here; callers never supply it in the argument mapping.
func (tc *ToolContext) UserID() string { return tc.userID }

// FunctionCallID returns the id correlating the model's request with this execution.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// RemainingDepth returns how many further levels of nested agent delegation
// this invocation may spawn.
func (tc *ToolContext) RemainingDepth() int { return tc.remainingDepth }

// Invoker returns the nested agent invoker, or nil when the surrounding run
// does not permit delegation.
func (tc *ToolContext) Invoker() Invoker { return tc.invoker }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.logger }

// Validate performs a structural sanity check of the context.
func (tc *ToolContext) Validate() error {
	if tc.ctx == nil || tc.agentName == "" || tc.userID == "" {
		return fmt.Errorf("invalid ToolContext")
	}
	return nil
}
