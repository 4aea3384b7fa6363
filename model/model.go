// Package model defines the gateway boundary to external generative-model
// services. A Gateway receives a system instruction, tool declarations and the
// ordered conversation history and returns either free text or one-or-more
// structured tool invocation requests. Provider adapters live in the
// subpackages model/openai and model/anthropic; MockGateway supports tests.
package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aion-pfm/aion/core"
)

// ToolDefinition declaratively exposes a callable tool to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized gateway input produced by the engine.
type Request struct {
	Model          string           `json:"model"`       // Model identifier (per-agent)
	Instruction    string           `json:"instruction"` // System instruction
	ThinkingBudget int              `json:"thinking_budget,omitempty"`
	History        []core.Turn      `json:"history"` // Full ordered working history
	Tools          []ToolDefinition `json:"tools,omitempty"`
}

// ToolCall is a tool invocation request surfaced by a model provider, unified
// across vendors so downstream logic does not need per-provider branching.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Response is the gateway output for one model call: plain text, one-or-more
// tool invocation requests, or both.
type Response struct {
	Text      string     `json:"text,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// HasToolCalls reports whether the model requested any tool invocations.
func (r *Response) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// Info contains metadata about a gateway implementation.
type Info struct {
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Gateway is the minimal interface required by the engine to drive generation.
// Generate is synchronous; a failing call is an infrastructure-fatal error for
// the surrounding run.
type Gateway interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the gateway implementation.
	Info() Info
}

// Resolver maps a model identifier to the Gateway serving it. Distinct agents
// may use distinct underlying models within one deployment.
type Resolver interface {
	Resolve(modelID string) (Gateway, error)
}

// StaticResolver is a map-backed Resolver. Gateways may be bound to exact
// model identifiers or to identifier prefixes (one per provider model family,
// such as "claude-" or "gpt-"); an optional default gateway serves identifiers
// matching neither.
type StaticResolver struct {
	mu       sync.RWMutex
	gateways map[string]Gateway
	prefixes []prefixBinding
	fallback Gateway
}

type prefixBinding struct {
	prefix  string
	gateway Gateway
}

// NewStaticResolver constructs an empty StaticResolver.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{gateways: make(map[string]Gateway)}
}

// Register binds a model identifier to a gateway, replacing any previous binding.
func (r *StaticResolver) Register(modelID string, gw Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[modelID] = gw
}

// RegisterPrefix binds every model identifier starting with prefix to a
// gateway, replacing any previous binding for the same prefix.
func (r *StaticResolver) RegisterPrefix(prefix string, gw Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.prefixes {
		if b.prefix == prefix {
			r.prefixes[i].gateway = gw
			return
		}
	}
	r.prefixes = append(r.prefixes, prefixBinding{prefix: prefix, gateway: gw})
}

// SetDefault sets the gateway used for unregistered model identifiers.
func (r *StaticResolver) SetDefault(gw Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = gw
}

// Resolve implements Resolver. Exact bindings win over prefix bindings; the
// longest matching prefix wins among prefix bindings.
func (r *StaticResolver) Resolve(modelID string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if gw, ok := r.gateways[modelID]; ok {
		return gw, nil
	}
	var (
		best    Gateway
		bestLen int
	)
	for _, b := range r.prefixes {
		if strings.HasPrefix(modelID, b.prefix) && len(b.prefix) > bestLen {
			best = b.gateway
			bestLen = len(b.prefix)
		}
	}
	if best != nil {
		return best, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("no gateway registered for model %q", modelID)
}

// mockStep is one scripted Generate outcome.
type mockStep struct {
	resp *Response
	err  error
}

// MockGateway is a lightweight in-memory Gateway useful for tests & examples.
// Responses are consumed from a scripted queue in FIFO order; when the queue
// is empty a plain text echo of the last user text is returned. All Generate
// requests are recorded for assertions.
type MockGateway struct {
	mu       sync.Mutex
	script   []mockStep
	requests []Request
}

// NewMockGateway constructs an empty MockGateway.
func NewMockGateway() *MockGateway { return &MockGateway{} }

// Enqueue appends a scripted response.
func (m *MockGateway) Enqueue(resp Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{resp: &resp})
}

// EnqueueError appends a scripted failure.
func (m *MockGateway) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{err: err})
}

// Requests returns a copy of all recorded Generate requests.
func (m *MockGateway) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Gateway.
func (m *MockGateway) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if len(m.script) > 0 {
		step := m.script[0]
		m.script = m.script[1:]
		if step.err != nil {
			return nil, step.err
		}
		return step.resp, nil
	}

	var lastUserText string
	for i := len(req.History) - 1; i >= 0; i-- {
		if req.History[i].Role == core.RoleUser {
			lastUserText = req.History[i].Text()
			break
		}
	}
	return &Response{Text: fmt.Sprintf("Mock response to: %s", lastUserText)}, nil
}

// Info implements Gateway.
func (m *MockGateway) Info() Info {
	return Info{Provider: "mock", SupportsTools: true}
}
