package budget

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aion-pfm/aion/core"
	"github.com/aion-pfm/aion/logging"
	"github.com/aion-pfm/aion/profile"
)

// Result tag values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Result is the tagged outcome of a budget operation. Error results describe
// user-facing problems (missing income, unknown budget); they are not
// infrastructure failures.
type Result struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func successResult(data any) Result { return Result{Type: ResultSuccess, Data: data} }

func errorResult(format string, args ...any) Result {
	return Result{Type: ResultError, Data: map[string]any{"detail": fmt.Sprintf(format, args...)}}
}

// allocation defines one generated category as a share of monthly income.
// The shares follow a 50/30/20 split with essentials broken out.
type allocation struct {
	Title string
	Share float64
}

var defaultAllocations = []allocation{
	{Title: "Housing", Share: 0.30},
	{Title: "Groceries", Share: 0.12},
	{Title: "Transport", Share: 0.08},
	{Title: "Lifestyle", Share: 0.30},
	{Title: "Savings", Share: 0.20},
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Logger logging.Logger
}

// Service generates and maintains a user's budgets from their financial
// profile. Generation is deterministic so it can be exercised without a
// model in the loop.
type Service struct {
	budgets  Store
	profiles profile.Store
	logger   logging.Logger
}

// NewService creates a budget service over the given stores.
func NewService(budgets Store, profiles profile.Store, optFns ...func(o *ServiceOptions)) *Service {
	opts := ServiceOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Service{
		budgets:  budgets,
		profiles: profiles,
		logger:   opts.Logger,
	}
}

// Generate replaces the user's budgets with a fresh allocation derived from
// the profile's monthly income. The instruction is recorded for traceability
// but does not influence the deterministic split.
func (s *Service) Generate(ctx context.Context, userID, instruction string) (Result, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		return Result{}, fmt.Errorf("load profile for user %q: %w", userID, err)
	}
	if p == nil || p.MonthlyIncome == nil || *p.MonthlyIncome <= 0 {
		s.logger.Warn("budget.generate.no_income", "user", userID)
		return errorResult("monthly income is not set; complete onboarding before generating budgets"), nil
	}

	income := *p.MonthlyIncome
	now := time.Now().UTC()
	budgets := make([]Budget, 0, len(defaultAllocations))
	for _, a := range defaultAllocations {
		budgets = append(budgets, Budget{
			ID:        core.NewID(),
			UserID:    userID,
			Title:     a.Title,
			Amount:    roundCents(income * a.Share),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.budgets.Replace(ctx, userID, budgets); err != nil {
		return Result{}, fmt.Errorf("replace budgets for user %q: %w", userID, err)
	}

	s.logger.Info("budget.generated", "user", userID, "count", len(budgets), "instruction", instruction)
	return successResult(map[string]any{
		"budgets": summarize(budgets),
		"message": fmt.Sprintf("Generated %d budget categories from a monthly income of %.2f.", len(budgets), income),
	}), nil
}

// List returns the user's budgets.
func (s *Service) List(ctx context.Context, userID string) ([]Budget, error) {
	return s.budgets.List(ctx, userID)
}

// RecordSpend sets the spent amount of one budget and reports overspending
// in the result so agents can react to it.
func (s *Service) RecordSpend(ctx context.Context, userID, budgetID string, spent float64) (Result, error) {
	b, err := s.budgets.Get(ctx, budgetID)
	if errors.Is(err, ErrNotFound) {
		return errorResult("budget %q does not exist", budgetID), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("load budget %q: %w", budgetID, err)
	}
	if b.UserID != userID {
		return errorResult("budget %q does not belong to this user", budgetID), nil
	}

	b.Spent = spent
	b.UpdatedAt = time.Now().UTC()
	if err := s.budgets.Put(ctx, b); err != nil {
		return Result{}, fmt.Errorf("update budget %q: %w", budgetID, err)
	}

	data := map[string]any{
		"budget":    b.Title,
		"amount":    b.Amount,
		"spent":     b.Spent,
		"overspent": b.Overspent(),
	}
	if b.Overspent() {
		data["message"] = fmt.Sprintf("Overspending: spent %.2f exceeds budget %.2f for %q.", b.Spent, b.Amount, b.Title)
	}
	return successResult(data), nil
}

func summarize(budgets []Budget) []map[string]any {
	out := make([]map[string]any, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, map[string]any{
			"id":     b.ID,
			"title":  b.Title,
			"budget": b.Amount,
			"spent":  b.Spent,
		})
	}
	return out
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
