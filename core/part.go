package core

// Part represents a polymorphic segment of turn content. Concrete part types
// implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string // Plain UTF-8 text
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// FunctionCall describes a tool invocation request emitted by a model.
type FunctionCall struct {
	ID        string         `json:"id,omitempty"` // Correlates request and result
	Name      string         `json:"name"`         // Tool name
	Arguments map[string]any `json:"arguments,omitempty"`
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall
}

// isPart implements the Part interface for FunctionCallPart.
func (FunctionCallPart) isPart() {}

// FunctionResponse describes the outcome of a tool invocation.
type FunctionResponse struct {
	ID       string         `json:"id,omitempty"` // Matches originating FunctionCall ID
	Name     string         `json:"name"`         // Tool name
	Response map[string]any `json:"response,omitempty"`
	Error    string         `json:"error,omitempty"` // Populated on failure
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
}

// isPart implements the Part interface for FunctionResponsePart.
func (FunctionResponsePart) isPart() {}
