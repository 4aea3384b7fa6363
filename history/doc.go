// Package history persists per-(agent, user) conversation logs. A Store is an
// append-only, order-preserving log of turns supporting full replay and an
// idempotent clear. InMemoryStore suits tests and ephemeral demos; SQLiteStore
// provides durable storage.
package history
