package onboarding

import (
	"time"

	"github.com/aion-pfm/aion/core"
	"github.com/aion-pfm/aion/profile"
	"github.com/aion-pfm/aion/tool"
)

// Tool names.
const (
	AskToolName    = "ask_question"
	FinishToolName = "finish_onboarding_and_save_info"
)

// NewAskTool creates the tool the onboarding agent uses to send one
// structured question at a time to the user. The question is posted to the
// board for the surrounding service to deliver.
func NewAskTool(board *Board) tool.Tool {
	parameters := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The friendly and clear question text to ask the user.",
			},
			"question_type": map[string]any{
				"type":        "string",
				"enum":        []string{QuestionDirect, QuestionRadio, QuestionCheckboxes},
				"description": "The required format for the user's answer: 'direct' (free text/number), 'checkboxes' (multiple selection), or 'radio' (single selection).",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "A list of selection options, only required for 'checkboxes' or 'radio' question types. Must be omitted for 'direct' questions.",
			},
		},
		"required": []string{"question", "question_type"},
	}

	return tool.NewFunctionTool(
		AskToolName,
		"Sends a structured question to the user to collect required financial information. This should be used one question at a time.",
		parameters,
		func(tc *core.ToolContext, args map[string]any) (map[string]any, error) {
			q := &Question{}
			q.Question, _ = args["question"].(string)
			q.Type, _ = args["question_type"].(string)
			if raw, ok := args["options"].([]any); ok {
				for _, o := range raw {
					if s, ok := o.(string); ok {
						q.Options = append(q.Options, s)
					}
				}
			}

			if q.Question == "" {
				return nil, tool.NewToolError(AskToolName, "field 'question' must be a non-empty string", "VALIDATION_ERROR")
			}
			if err := q.Validate(); err != nil {
				return nil, tool.NewToolError(AskToolName, err.Error(), "VALIDATION_ERROR")
			}

			board.Post(tc.UserID(), q)
			tc.Logger().Info("onboarding.question.posted", "user", tc.UserID(), "type", q.Type)
			return map[string]any{
				"status":  "question_sent",
				"message": "The question was delivered to the user. End your turn and wait for the answer.",
			}, nil
		},
	)
}

// NewFinishTool creates the tool that persists the collected onboarding data
// and marks the profile as completed.
func NewFinishTool(profiles profile.Store) tool.Tool {
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
				"description": "A 2-4 sentence summary of the user's financial profile and goals.",
			},
		},
		"required": []string{
			"monthly_income", "savings", "investments", "debts",
			"user_ai_preferences", "personal_info", "extra_info", "ai_summary",
		},
	}

	return tool.NewFunctionTool(
		FinishToolName,
		"Saves the user's onboarding information including financial details, AI preferences, personal info, extra info, and AI summary. Call this when you have collected all required information.",
		parameters,
		func(tc *core.ToolContext, args map[string]any) (map[string]any, error) {
			ctx := tc.Context()
			p, err := profile.GetOrCreate(ctx, profiles, tc.UserID())
			if err != nil {
				return nil, err
			}

			setNumber := func(key string, dst **float64) {
				if v, ok := args[key].(float64); ok {
					n := v
					*dst = &n
				}
			}
			setNumber("monthly_income", &p.MonthlyIncome)
			setNumber("savings", &p.Savings)
			setNumber("investments", &p.Investments)
			setNumber("debts", &p.Debts)
			p.AIPreferences, _ = args["user_ai_preferences"].(map[string]any)
			p.PersonalInfo, _ = args["personal_info"].(map[string]any)
			p.ExtraInfo, _ = args["extra_info"].(map[string]any)
			p.AISummary, _ = args["ai_summary"].(string)
			p.OnboardingStatus = profile.OnboardingCompleted
			p.UpdatedAt = time.Now().UTC()

			if err := profiles.Put(ctx, p); err != nil {
				return nil, err
			}

			tc.Logger().Info("onboarding.completed", "user", tc.UserID())
			return map[string]any{
				"success": true,
				"message": "Onboarding completed successfully",
			}, nil
		},
	)
}
