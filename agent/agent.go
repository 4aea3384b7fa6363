package agent

import (
	"context"
	"time"

	"github.com/aion-pfm/aion/tool"
)

// Agent is the persisted configuration record of a single agent.
type Agent struct {
	// Name uniquely identifies the agent. It is the key for history logs,
	// tool registries, and inter-agent delegation.
	Name string `json:"name"`

	// Description is a short human-readable summary of the agent's role.
	Description string `json:"description"`

	// Instruction is the system prompt sent with every model request.
	Instruction string `json:"instruction"`

	// Model is the model identifier the agent generates with.
	Model string `json:"model"`

	// ThinkingBudget is the extended-reasoning token budget. Zero disables
	// extended reasoning.
	ThinkingBudget int `json:"thinking_budget"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy of the agent record.
func (a *Agent) Clone() *Agent {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// PrimerFunc renders per-user context that is prepended to the first message
// of a conversation.
type PrimerFunc func(ctx context.Context, userID string) (string, error)

// Definition is the canonical, code-owned configuration of an agent. The
// Directory treats it as the source of truth and reconciles persisted state
// against it.
type Definition struct {
	Agent Agent

	// Tools is the agent's full tool set. It is re-registered on every
	// Directory access so registration stays idempotent.
	Tools []tool.Tool

	// Primer is optional. When set, its output is prepended to the user's
	// first message in a fresh conversation.
	Primer PrimerFunc

	// AllowEmptyMessage permits starting a run without an incoming user
	// message, for agents whose protocol has the model speak first.
	AllowEmptyMessage bool
}
