package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
)

type HabitService struct {
	repo     domain.HabitRepository
	userRepo domain.UserRepository
}

func NewHabitService(repo domain.HabitRepository, userRepo domain.UserRepository) *HabitService {
	return &HabitService{
		repo:     repo,
		userRepo: userRepo,
	}
}

type CreateHabitInput struct {
	UserID       string
	Name         string
	Domains      []string
	WeeklyTarget int
	Context      string
	Difficulty   string
	SmartGoal    string
	Why          string
	MinimalDose  string
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	habit, err := domain.NewHabit(input.UserID, input.Name, input.WeeklyTarget, input.Domains, domain.HabitDetails{
		Context:     input.Context,
		Difficulty:  input.Difficulty,
		SmartGoal:   input.SmartGoal,
		Why:         input.Why,
		MinimalDose: input.MinimalDose,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: create: %w", err)
	}

	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Get returns the habit only when it belongs to userID; a foreign habit is
// reported as not found.
func (s *HabitService) Get(ctx context.Context, userID, habitID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) ChangeStatus(ctx context.Context, userID, habitID string, status domain.HabitStatus) (*domain.Habit, error) {
	habit, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if err := habit.TransitionTo(status); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: update: %w", err)
	}

	return habit, nil
}
