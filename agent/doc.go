// Package agent defines agent configuration records and the Directory that
// reconciles canonical, code-owned definitions against persisted state.
// Configuration is declarative: on every access the Directory creates missing
// agents, corrects drift on the persisted model identifier and thinking
// budget, and re-registers the agent's full tool set.
package agent
