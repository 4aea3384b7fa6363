// Package core provides the foundational domain types used by AION. It
// defines the core abstractions for:
//
//   - Turns (immutable records of one conversation step)
//   - Parts (polymorphic turn content: text, tool call request, tool call result)
//   - Outcomes (the terminal value of one orchestration run)
//   - ToolContext (the constrained, typed surface handed to tool implementations)
//
// The package intentionally keeps implementation concerns (persistence, engine
// orchestration, concrete agents) out of scope, exposing small interfaces to
// enable custom backends and extensions.
package core
