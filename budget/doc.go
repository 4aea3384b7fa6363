// Package budget implements the budget specialist service: deterministic
// budget generation from the user's financial profile, budget storage, and
// the tool through which the coordinator agent delegates budget work.
package budget
