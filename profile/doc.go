// Package profile stores per-user financial profiles collected during
// onboarding and edited in conversation. The profile feeds two places: the
// priming context prepended to a user's first chatbot message, and the
// deterministic inputs of the budget service.
package profile
