package core

import "strings"

// OutcomeKind tags the terminal value of one orchestration run.
type OutcomeKind string

const (
	// OutcomeFinalAnswer indicates the model produced a final text response.
	OutcomeFinalAnswer OutcomeKind = "final_answer"
	// OutcomeExhausted indicates the iteration budget ran out before the
	// model converged on a final response.
	OutcomeExhausted OutcomeKind = "exhausted"
)

// Outcome is the terminal value of one orchestration run. A final-answer
// outcome carries the response text and the distinct tools invoked during the
// run in first-invocation order; an exhausted outcome carries a fixed
// user-facing retry message and no partial answer.
type Outcome struct {
	Kind      OutcomeKind `json:"kind"`
	Message   string      `json:"message"`
	ToolsUsed []string    `json:"tools_used,omitempty"`
}

// ToolsUsedSummary renders the invoked tool list for user-facing reporting.
// A run that used no tools reports "no tools used" rather than an empty list,
// distinguishing it from a run that errored.
func (o Outcome) ToolsUsedSummary() string {
	if len(o.ToolsUsed) == 0 {
		return "no tools used"
	}
	return strings.Join(o.ToolsUsed, ", ")
}
