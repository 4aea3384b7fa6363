package profile

import (
	"context"
	"errors"
	"time"
)

// Onboarding status values.
const (
	OnboardingNotStarted = "not_started"
	OnboardingInProgress = "in_progress"
	OnboardingCompleted  = "completed"
)

// ErrNotFound indicates that no profile exists for the requested user.
var ErrNotFound = errors.New("profile not found")

// Profile is the per-user financial profile. Numeric fields are pointers so
// "not yet collected" is distinguishable from zero.
type Profile struct {
	UserID           string `json:"user_id"`
	OnboardingStatus string `json:"onboarding_status"`

	MonthlyIncome *float64 `json:"monthly_income,omitempty"`
	Savings       *float64 `json:"savings,omitempty"`
	Investments   *float64 `json:"investments,omitempty"`
	Debts         *float64 `json:"debts,omitempty"`

	// AIPreferences holds tone, style, and risk preference hints for agents.
	AIPreferences map[string]any `json:"user_ai_preferences,omitempty"`
	// PersonalInfo holds preferred currency, location context, and similar.
	PersonalInfo map[string]any `json:"personal_info,omitempty"`
	// ExtraInfo holds goals, budget categories, and habits other agents use.
	ExtraInfo map[string]any `json:"extra_info,omitempty"`

	// AISummary is a short model-written summary of the user's situation.
	AISummary string `json:"ai_summary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty profile for the given user.
func New(userID string) *Profile {
	now := time.Now().UTC()
	return &Profile{
		UserID:           userID,
		OnboardingStatus: OnboardingNotStarted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Clone returns a copy of the profile with its maps copied.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.MonthlyIncome = cloneNumber(p.MonthlyIncome)
	c.Savings = cloneNumber(p.Savings)
	c.Investments = cloneNumber(p.Investments)
	c.Debts = cloneNumber(p.Debts)
	c.AIPreferences = cloneMap(p.AIPreferences)
	c.PersonalInfo = cloneMap(p.PersonalInfo)
	c.ExtraInfo = cloneMap(p.ExtraInfo)
	return &c
}

func cloneNumber(v *float64) *float64 {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Store persists user profiles.
type Store interface {
	// Get returns the profile for userID, or ErrNotFound.
	Get(ctx context.Context, userID string) (*Profile, error)

	// Put inserts or overwrites the profile keyed by its UserID.
	Put(ctx context.Context, p *Profile) error
}

// GetOrCreate loads the profile for userID, creating an empty one when none
// exists yet.
func GetOrCreate(ctx context.Context, store Store, userID string) (*Profile, error) {
	p, err := store.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		p = New(userID)
		if err := store.Put(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
