package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conversation roles. The history model uses two roles only: everything the
// model emits (text or tool call requests) is recorded under RoleModel, while
// user messages and tool call results are recorded under RoleUser, matching
// the request shape expected by the gateway.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one recorded step of a conversation between a user and an agent.
// After creation it must be treated as immutable. It captures the role, an
// ordered sequence of heterogeneous parts and a high precision UTC timestamp.
type Turn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Parts     []Part    `json:"parts"`
	CreatedAt time.Time `json:"created_at"`
}

// NewID generates a new unique identifier for turns and runs.
func NewID() string { return uuid.NewString() }

func newTurn(role string, parts ...Part) Turn {
	return Turn{
		ID:        NewID(),
		Role:      role,
		Parts:     parts,
		CreatedAt: time.Now().UTC(),
	}
}

// NewUserTurn creates a user-authored text turn.
func NewUserTurn(message string) Turn {
	return newTurn(RoleUser, TextPart{Text: message})
}

// NewModelTurn creates a model-authored text turn.
func NewModelTurn(message string) Turn {
	return newTurn(RoleModel, TextPart{Text: message})
}

// NewFunctionCallTurn records a tool invocation request emitted by the model.
func NewFunctionCallTurn(call FunctionCall) Turn {
	return newTurn(RoleModel, FunctionCallPart{FunctionCall: call})
}

// NewFunctionResponseTurn records the result of a tool invocation. If err is
// non-nil its message is copied into the response Error field so it can be fed
// back to the model as a recoverable tool failure.
func NewFunctionResponseTurn(id, name string, response map[string]any, err error) Turn {
	fr := FunctionResponse{ID: id, Name: name, Response: response}
	if err != nil {
		fr.Error = err.Error()
	}
	return newTurn(RoleUser, FunctionResponsePart{FunctionResponse: fr})
}

// Text concatenates all text parts of the turn.
func (t Turn) Text() string {
	var sb strings.Builder
	for _, p := range t.Parts {
		if tp, ok := p.(TextPart); ok {
			sb.WriteString(tp.Text)
		}
	}
	return sb.String()
}

// FunctionCalls returns any FunctionCall parts contained within the turn
// preserving their original order.
func (t Turn) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range t.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// FunctionResponses returns any FunctionResponse parts contained within the
// turn preserving their original order.
func (t Turn) FunctionResponses() []FunctionResponse {
	var responses []FunctionResponse
	for _, p := range t.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// partEnvelope is the persisted wire form of a Part. The Type tag selects
// which of the payload fields is populated.
type partEnvelope struct {
	Type             string            `json:"type"`
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"function_call,omitempty"`
	FunctionResponse *FunctionResponse `json:"function_response,omitempty"`
}

const (
	partTypeText             = "text"
	partTypeFunctionCall     = "function_call"
	partTypeFunctionResponse = "function_response"
)

type turnJSON struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Parts     []partEnvelope `json:"parts"`
	CreatedAt time.Time      `json:"created_at"`
}

// MarshalJSON encodes the turn using a tagged envelope per part so the
// polymorphic Parts slice survives a persistence round-trip without semantic
// loss.
func (t Turn) MarshalJSON() ([]byte, error) {
	envelopes := make([]partEnvelope, 0, len(t.Parts))
	for _, p := range t.Parts {
		switch v := p.(type) {
		case TextPart:
			envelopes = append(envelopes, partEnvelope{Type: partTypeText, Text: v.Text})
		case FunctionCallPart:
			fc := v.FunctionCall
			envelopes = append(envelopes, partEnvelope{Type: partTypeFunctionCall, FunctionCall: &fc})
		case FunctionResponsePart:
			fr := v.FunctionResponse
			envelopes = append(envelopes, partEnvelope{Type: partTypeFunctionResponse, FunctionResponse: &fr})
		default:
			return nil, fmt.Errorf("unsupported part type %T", p)
		}
	}
	return json.Marshal(turnJSON{ID: t.ID, Role: t.Role, Parts: envelopes, CreatedAt: t.CreatedAt})
}

// UnmarshalJSON decodes the tagged envelope form produced by MarshalJSON.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var tj turnJSON
	if err := json.Unmarshal(data, &tj); err != nil {
		return err
	}
	parts := make([]Part, 0, len(tj.Parts))
	for _, env := range tj.Parts {
		switch env.Type {
		case partTypeText:
			parts = append(parts, TextPart{Text: env.Text})
		case partTypeFunctionCall:
			if env.FunctionCall == nil {
				return fmt.Errorf("function_call part without payload")
			}
			parts = append(parts, FunctionCallPart{FunctionCall: *env.FunctionCall})
		case partTypeFunctionResponse:
			if env.FunctionResponse == nil {
				return fmt.Errorf("function_response part without payload")
			}
			parts = append(parts, FunctionResponsePart{FunctionResponse: *env.FunctionResponse})
		default:
			return fmt.Errorf("unknown part type %q", env.Type)
		}
	}
	t.ID = tj.ID
	t.Role = tj.Role
	t.Parts = parts
	t.CreatedAt = tj.CreatedAt
	return nil
}
