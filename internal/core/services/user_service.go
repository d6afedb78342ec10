package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
)

type UserService struct {
	repo domain.UserRepository
}

func NewUserService(repo domain.UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

type OnboardUserInput struct {
	ID         string
	Name       string
	Timezone   string
	BatchStart time.Time
}

func (s *UserService) Onboard(ctx context.Context, input OnboardUserInput) (*domain.User, error) {
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}

	user, err := domain.NewUser(id, input.Name, input.Timezone, input.BatchStart)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("user service: create: %w", err)
	}

	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) Pause(ctx context.Context, id, reason string) (*domain.User, error) {
	return s.mutate(ctx, id, func(u *domain.User) { u.Pause(reason) })
}

func (s *UserService) Resume(ctx context.Context, id string) (*domain.User, error) {
	return s.mutate(ctx, id, func(u *domain.User) { u.Resume() })
}

func (s *UserService) AdjustTrust(ctx context.Context, id string, delta int) (*domain.User, error) {
	return s.mutate(ctx, id, func(u *domain.User) { u.AdjustTrust(delta) })
}

func (s *UserService) mutate(ctx context.Context, id string, apply func(*domain.User)) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(user)

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("user service: update: %w", err)
	}

	return user, nil
}
