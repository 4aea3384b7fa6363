package profile

import (
	"sort"
	"time"

	"github.com/aion-pfm/aion/core"
	"github.com/aion-pfm/aion/tool"
)

// EditToolName is the canonical name of the profile editing tool.
const EditToolName = "edit_user_profile"

// NewEditTool creates the tool agents use to apply partial profile updates in
// conversation. Only the fields present in the arguments are touched; the
// acting user comes from the ToolContext.
func NewEditTool(store Store) tool.Tool {
	parameters := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"monthly_income": map[string]any{
				"type":        "number",
				"description": "User's monthly income amount (in their preferred currency).",
			},
			"savings": map[string]any{
				"type":        "number",
				"description": "Current savings amount.",
			},
			"investments": map[string]any{
				"type":        "number",
				"description": "Current investment holdings.",
			},
			"debts": map[string]any{
				"type":        "number",
				"description": "Current debt amount.",
			},
			"user_ai_preferences": map[string]any{
				"type":        "object",
				"description": "AI preferences including risk_preference, tone, and style.",
			},
			"personal_info": map[string]any{
				"type":        "object",
				"description": "Personal information including preferred_currency and location_context.",
			},
			"extra_info": map[string]any{
				"type":        "object",
				"description": "Additional information including goals, budget categories, and habits.",
			},
			"ai_summary": map[string]any{
				"type":        "string",
				"description": "An updated 2-4 sentence summary of the user's financial profile.",
			},
		},
	}

	return tool.NewFunctionTool(
		EditToolName,
		"Updates parts of the user's financial profile. Provide only the fields that changed.",
		parameters,
		func(tc *core.ToolContext, args map[string]any) (map[string]any, error) {
			ctx := tc.Context()
			p, err := GetOrCreate(ctx, store, tc.UserID())
			if err != nil {
				return nil, err
			}

			updated := applyUpdates(p, args)
			if len(updated) == 0 {
				return nil, tool.NewToolError(EditToolName, "no recognized profile fields in arguments", "VALIDATION_ERROR")
			}

			p.UpdatedAt = time.Now().UTC()
			if err := store.Put(ctx, p); err != nil {
				return nil, err
			}

			tc.Logger().Info("profile.updated", "user", tc.UserID(), "fields", updated)
			return map[string]any{
				"success":        true,
				"updated_fields": updated,
			}, nil
		},
	)
}

// applyUpdates copies recognized argument fields onto the profile and returns
// the names of the fields it changed, sorted for stable output.
func applyUpdates(p *Profile, args map[string]any) []string {
	var updated []string

	setNumber := func(key string, dst **float64) {
		if v, ok := args[key].(float64); ok {
			n := v
			*dst = &n
			updated = append(updated, key)
		}
	}
	setMap := func(key string, dst *map[string]any) {
		if v, ok := args[key].(map[string]any); ok {
			*dst = v
			updated = append(updated, key)
		}
	}

	setNumber("monthly_income", &p.MonthlyIncome)
	setNumber("savings", &p.Savings)
	setNumber("investments", &p.Investments)
	setNumber("debts", &p.Debts)
	setMap("user_ai_preferences", &p.AIPreferences)
	setMap("personal_info", &p.PersonalInfo)
	setMap("extra_info", &p.ExtraInfo)
	if v, ok := args["ai_summary"].(string); ok && v != "" {
		p.AISummary = v
		updated = append(updated, "ai_summary")
	}

	sort.Strings(updated)
	return updated
}
