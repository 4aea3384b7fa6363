package onboarding

import (
	"context"
	"testing"

	"github.com/aion-pfm/aion/agent"
	"github.com/aion-pfm/aion/core"
	"github.com/aion-pfm/aion/engine"
	"github.com/aion-pfm/aion/history"
	"github.com/aion-pfm/aion/model"
	"github.com/aion-pfm/aion/profile"
	"github.com/aion-pfm/aion/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "user-42"

func newToolContext(userID string) *core.ToolContext {
	return core.NewToolContext(context.Background(), "onboarding_agent", userID, "fc-1", 0, nil, nil)
}

func TestAskTool_PostsValidQuestions(t *testing.T) {
	board := NewBoard()
	askTool := NewAskTool(board)

	result, err := askTool.Call(newToolContext(testUserID), map[string]any{
		"question":      "What is your monthly income?",
		"question_type": "direct",
	})
	require.NoError(t, err)
	assert.Equal(t, "question_sent", result["status"])

	q := board.Take(testUserID)
	require.NotNil(t, q)
	assert.Equal(t, "What is your monthly income?", q.Question)
	assert.Equal(t, QuestionDirect, q.Type)
	assert.Nil(t, board.Take(testUserID))
}

func TestAskTool_OptionRules(t *testing.T) {
	board := NewBoard()
	askTool := NewAskTool(board)

	// radio without options
	_, err := askTool.Call(newToolContext(testUserID), map[string]any{
		"question":      "Pick your risk preference",
		"question_type": "radio",
	})
	require.Error(t, err)
	var toolErr *tool.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)

	// direct with options
	_, err = askTool.Call(newToolContext(testUserID), map[string]any{
		"question":      "What is your income?",
		"question_type": "direct",
		"options":       []any{"low", "high"},
	})
	require.Error(t, err)

	// checkboxes with options is fine
	result, err := askTool.Call(newToolContext(testUserID), map[string]any{
		"question":      "Which categories matter to you?",
		"question_type": "checkboxes",
		"options":       []any{"housing", "transport", "savings"},
	})
	require.NoError(t, err)
	assert.Equal(t, "question_sent", result["status"])
	q := board.Take(testUserID)
	require.NotNil(t, q)
	assert.Equal(t, []string{"housing", "transport", "savings"}, q.Options)
}

func TestFinishTool_SavesProfile(t *testing.T) {
	profiles := profile.NewInMemoryStore()
	finishTool := NewFinishTool(profiles)

	_, err := finishTool.Call(newToolContext(testUserID), map[string]any{
		"monthly_income":      3000.0,
		"savings":             500.0,
		"investments":         0.0,
		"debts":               120.0,
		"user_ai_preferences": map[string]any{"tone": "friendly"},
		"personal_info":       map[string]any{"preferred_currency": "DZD"},
		"extra_info":          map[string]any{"goals": "buy a car"},
		"ai_summary":          "Salaried worker saving for a car.",
	})
	require.NoError(t, err)

	p, err := profiles.Get(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, profile.OnboardingCompleted, p.OnboardingStatus)
	require.NotNil(t, p.MonthlyIncome)
	assert.Equal(t, 3000.0, *p.MonthlyIncome)
	assert.Equal(t, "DZD", p.PersonalInfo["preferred_currency"])
}

func TestFinishTool_RequiresAllFields(t *testing.T) {
	finishTool := NewFinishTool(profile.NewInMemoryStore())

	_, err := finishTool.Call(newToolContext(testUserID), map[string]any{
		"monthly_income": 3000.0,
	})
	require.Error(t, err)
	var toolErr *tool.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

type serviceHarness struct {
	service  *Service
	gateway  *model.MockGateway
	profiles *profile.InMemoryStore
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()

	gateway := model.NewMockGateway()
	resolver := model.NewStaticResolver()
	resolver.SetDefault(gateway)

	profiles := profile.NewInMemoryStore()
	board := NewBoard()
	directory := agent.NewDirectory(agent.NewInMemoryConfigStore())
	eng := engine.New(history.NewInMemoryStore(), resolver, directory)

	eng.RegisterDefinition(agent.Definition{
		Agent: agent.Agent{
			Name:        "onboarding_agent",
			Description: "Collects the initial financial profile.",
			Instruction: "Interview the user one question at a time.",
			Model:       "mock-model",
		},
		Tools:             []tool.Tool{NewAskTool(board), NewFinishTool(profiles)},
		AllowEmptyMessage: true,
		Primer: func(context.Context, string) (string, error) {
			return "Begin the onboarding interview.", nil
		},
	})

	return &serviceHarness{
		service:  NewService(eng, profiles, board, "onboarding_agent"),
		gateway:  gateway,
		profiles: profiles,
	}
}

func askCall(question, qType string, options ...string) model.Response {
	args := map[string]any{"question": question, "question_type": qType}
	if len(options) > 0 {
		opts := make([]any, len(options))
		for i, o := range options {
			opts[i] = o
		}
		args["options"] = opts
	}
	return model.Response{ToolCalls: []model.ToolCall{{
		ID: core.NewID(), Name: AskToolName, Arguments: args,
	}}}
}

func TestService_FirstTurnAsksQuestion(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)

	h.gateway.Enqueue(askCall("What is your monthly income?", "direct"))
	h.gateway.Enqueue(model.Response{Text: "I asked the income question."})

	result, err := h.service.Next(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, TurnQuestion, result.Type)
	require.NotNil(t, result.Question)
	assert.Equal(t, "What is your monthly income?", result.Question.Question)

	p, err := h.profiles.Get(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, profile.OnboardingInProgress, p.OnboardingStatus)
}

func TestService_SubmitAnswerAdvancesToFinish(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)

	h.gateway.Enqueue(askCall("What is your monthly income?", "direct"))
	h.gateway.Enqueue(model.Response{Text: "Asked."})
	_, err := h.service.Next(ctx, testUserID)
	require.NoError(t, err)

	// The answer triggers completion.
	h.gateway.Enqueue(model.Response{ToolCalls: []model.ToolCall{{
		ID:   core.NewID(),
		Name: FinishToolName,
		Arguments: map[string]any{
			"monthly_income":      3000.0,
			"savings":             500.0,
			"investments":         0.0,
			"debts":               0.0,
			"user_ai_preferences": map[string]any{"tone": "friendly"},
			"personal_info":       map[string]any{"preferred_currency": "DZD"},
			"extra_info":          map[string]any{},
			"ai_summary":          "Simple profile.",
		},
	}}})
	h.gateway.Enqueue(model.Response{Text: "All done, welcome to AION!"})

	result, err := h.service.Submit(ctx, testUserID, "3000")
	require.NoError(t, err)
	assert.Equal(t, TurnFinished, result.Type)

	// Further turns are rejected.
	_, err = h.service.Next(ctx, testUserID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestService_PlainMessageTurn(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)

	h.gateway.Enqueue(model.Response{Text: "Welcome! Let's get started."})

	result, err := h.service.Next(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, TurnMessage, result.Type)
	assert.Equal(t, "Welcome! Let's get started.", result.Message)
}

func TestService_RejectsEmptyAnswer(t *testing.T) {
	h := newServiceHarness(t)
	_, err := h.service.Submit(context.Background(), testUserID, "")
	assert.Error(t, err)
}
