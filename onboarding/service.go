package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aion-pfm/aion/engine"
	"github.com/aion-pfm/aion/profile"
)

// Turn result types.
const (
	TurnQuestion = "question"
	TurnFinished = "finished"
	TurnMessage  = "message"
)

// ErrAlreadyCompleted indicates that the user finished onboarding earlier.
var ErrAlreadyCompleted = errors.New("onboarding already completed")

// TurnResult is the outcome of one onboarding turn. Exactly one of Question
// and Message is set; Finished turns carry neither.
type TurnResult struct {
	Type     string    `json:"type"`
	Question *Question `json:"question,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// Service drives the onboarding interview for users. It runs the onboarding
// agent through the engine and classifies each turn's result: a question
// posted via ask_question, completion via finish_onboarding_and_save_info, or
// a plain message.
type Service struct {
	engine    *engine.Engine
	profiles  profile.Store
	board     *Board
	agentName string
}

// NewService creates an onboarding service. The named agent must be
// registered with the engine and carry the ask and finish tools bound to the
// same board and profile store.
func NewService(eng *engine.Engine, profiles profile.Store, board *Board, agentName string) *Service {
	return &Service{
		engine:    eng,
		profiles:  profiles,
		board:     board,
		agentName: agentName,
	}
}

// Next returns the current onboarding question without submitting an answer,
// starting the interview when the user has not begun yet.
func (s *Service) Next(ctx context.Context, userID string) (*TurnResult, error) {
	return s.turn(ctx, userID, "")
}

// Submit records the user's answer to the current question and returns the
// next turn result.
func (s *Service) Submit(ctx context.Context, userID, answer string) (*TurnResult, error) {
	if answer == "" {
		return nil, errors.New("answer must not be empty")
	}
	return s.turn(ctx, userID, answer)
}

func (s *Service) turn(ctx context.Context, userID, message string) (*TurnResult, error) {
	p, err := profile.GetOrCreate(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if p.OnboardingStatus == profile.OnboardingCompleted {
		return nil, ErrAlreadyCompleted
	}
	if p.OnboardingStatus == profile.OnboardingNotStarted {
		p.OnboardingStatus = profile.OnboardingInProgress
		p.UpdatedAt = time.Now().UTC()
		if err := s.profiles.Put(ctx, p); err != nil {
			return nil, err
		}
	}

	outcome, err := s.engine.Run(ctx, s.agentName, userID, message)
	if err != nil {
		return nil, fmt.Errorf("onboarding turn: %w", err)
	}

	// Completion wins over a stale question from the same run.
	updated, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if updated.OnboardingStatus == profile.OnboardingCompleted {
		s.board.Take(userID)
		return &TurnResult{Type: TurnFinished}, nil
	}

	if q := s.board.Take(userID); q != nil {
		return &TurnResult{Type: TurnQuestion, Question: q}, nil
	}
	return &TurnResult{Type: TurnMessage, Message: outcome.Message}, nil
}
