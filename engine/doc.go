// Package engine drives single-agent turns: it replays history, primes fresh
// conversations, calls the model gateway, dispatches tool calls sequentially,
// and converges on an outcome within a bounded number of iterations.
//
// The engine also routes inter-agent delegation. A tool running inside one
// agent's turn can invoke another agent through the engine, which runs the
// target agent's full loop against the same user identity with a decremented
// delegation depth.
package engine
