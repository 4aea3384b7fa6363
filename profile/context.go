package profile

import (
	"fmt"
	"sort"
	"strings"
)

// FormatContext renders the profile as the priming block prepended to a
// user's first message in a fresh conversation.
func FormatContext(p *Profile) string {
	if p == nil {
		return "USER PROFILE: not set up yet."
	}

	var sb strings.Builder
	sb.WriteString("USER PROFILE:\n")
	sb.WriteString(fmt.Sprintf("- User: %s\n", p.UserID))
	sb.WriteString(fmt.Sprintf("- Onboarding: %s\n", p.OnboardingStatus))
	sb.WriteString("\nFINANCIAL DATA:\n")
	sb.WriteString(fmt.Sprintf("- Monthly Income: %s\n", formatAmount(p.MonthlyIncome)))
	sb.WriteString(fmt.Sprintf("- Savings: %s\n", formatAmount(p.Savings)))
	sb.WriteString(fmt.Sprintf("- Investments: %s\n", formatAmount(p.Investments)))
	sb.WriteString(fmt.Sprintf("- Debts: %s\n", formatAmount(p.Debts)))
	sb.WriteString("\nPREFERENCES:\n")
	sb.WriteString(fmt.Sprintf("- Currency: %s\n", stringValue(p.PersonalInfo, "preferred_currency", "unknown")))
	sb.WriteString(fmt.Sprintf("- Location: %s\n", stringValue(p.PersonalInfo, "location_context", "unknown")))
	if len(p.AIPreferences) > 0 {
		sb.WriteString(fmt.Sprintf("- AI Preferences: %s\n", formatMap(p.AIPreferences)))
	}
	if len(p.ExtraInfo) > 0 {
		sb.WriteString(fmt.Sprintf("- Extra Info: %s\n", formatMap(p.ExtraInfo)))
	}
	if p.AISummary != "" {
		sb.WriteString(fmt.Sprintf("\nSUMMARY: %s\n", p.AISummary))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatAmount(v *float64) string {
	if v == nil {
		return "not provided"
	}
	return fmt.Sprintf("%.2f", *v)
}

func stringValue(m map[string]any, key, fallback string) string {
	if m == nil {
		return fallback
	}
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// formatMap renders a small map as "key: value" pairs in sorted key order so
// the priming text is stable across runs.
func formatMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, m[k]))
	}
	return strings.Join(parts, ", ")
}
