package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/dashboard"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/progress"
)

const dashboardConcurrency = 4

type ProgressService struct {
	userRepo  domain.UserRepository
	habitRepo domain.HabitRepository
	proofRepo domain.ProofRepository
	engine    *progress.Engine
	now       func() time.Time
}

func NewProgressService(userRepo domain.UserRepository, habitRepo domain.HabitRepository, proofRepo domain.ProofRepository, engine *progress.Engine) *ProgressService {
	return &ProgressService{
		userRepo:  userRepo,
		habitRepo: habitRepo,
		proofRepo: proofRepo,
		engine:    engine,
		now:       time.Now,
	}
}

func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	s.now = now
	return s
}

type DashboardView struct {
	Cycle  domain.CycleContext    `json:"cycle"`
	Stats  domain.DashboardStats  `json:"stats"`
	Habits []domain.HabitProgress `json:"habits"`
}

func (s *ProgressService) Cycle(ctx context.Context, userID string) (domain.CycleContext, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return domain.CycleContext{}, err
	}
	return cycle.ContextAt(user.BatchStart, s.now(), user.Location())
}

func (s *ProgressService) HabitProgress(ctx context.Context, userID, habitID string) (*domain.HabitProgress, error) {
	cc, err := s.Cycle(ctx, userID)
	if err != nil {
		return nil, err
	}

	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	p, err := s.compute(ctx, habit, cc)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Dashboard loads every habit's history concurrently, then folds the
// per-habit progress into user-level stats.
func (s *ProgressService) Dashboard(ctx context.Context, userID string) (*DashboardView, error) {
	cc, err := s.Cycle(ctx, userID)
	if err != nil {
		return nil, err
	}

	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("progress service: list habits: %w", err)
	}

	var mu sync.Mutex
	byHabit := make(map[string]domain.HabitProgress, len(habits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardConcurrency)

	for _, h := range habits {
		g.Go(func() error {
			p, err := s.compute(gctx, h, cc)
			if err != nil {
				return err
			}
			mu.Lock()
			byHabit[h.ID] = p
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats, err := dashboard.Aggregate(habits, byHabit)
	if err != nil {
		return nil, err
	}

	view := &DashboardView{
		Cycle:  cc,
		Stats:  stats,
		Habits: make([]domain.HabitProgress, 0, len(habits)),
	}
	for _, h := range habits {
		view.Habits = append(view.Habits, byHabit[h.ID])
	}

	return view, nil
}

func (s *ProgressService) compute(ctx context.Context, habit *domain.Habit, cc domain.CycleContext) (domain.HabitProgress, error) {
	proofs, err := s.proofRepo.ListByHabitID(ctx, habit.ID)
	if err != nil {
		return domain.HabitProgress{}, fmt.Errorf("progress service: list proofs for %s: %w", habit.ID, err)
	}
	return s.engine.Compute(*habit, proofs, cc)
}
