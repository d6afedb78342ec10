package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
)

var (
	_ domain.UserRepository  = (*InMemoryUserRepository)(nil)
	_ domain.HabitRepository = (*InMemoryHabitRepository)(nil)
	_ domain.ProofRepository = (*InMemoryProofRepository)(nil)
)

type InMemoryUserRepository struct {
	store map[string]domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[user.ID]; exists {
		return domain.ErrUserExists
	}
	r.store[user.ID] = *user
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.store[user.ID] = *user
	return nil
}

type InMemoryHabitRepository struct {
	store map[string]domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]domain.Habit),
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	h := cloneHabit(&habit)
	return &h, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, stored := range r.store {
		if stored.UserID == userID {
			h := cloneHabit(&stored)
			habits = append(habits, &h)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		if habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].ID < habits[j].ID
		}
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}
	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

func cloneHabit(h *domain.Habit) domain.Habit {
	c := *h
	c.Domains = append([]string(nil), h.Domains...)
	return c
}

type InMemoryProofRepository struct {
	store     []domain.Proof
	byMessage map[string]int

	mu sync.RWMutex
}

func NewInMemoryProofRepository() *InMemoryProofRepository {
	return &InMemoryProofRepository{
		byMessage: make(map[string]int),
	}
}

func (r *InMemoryProofRepository) Create(ctx context.Context, proof *domain.Proof) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if proof.MessageID != "" {
		if _, exists := r.byMessage[proof.MessageID]; exists {
			return domain.ErrProofExists
		}
		r.byMessage[proof.MessageID] = len(r.store)
	}
	r.store = append(r.store, *proof)
	return nil
}

func (r *InMemoryProofRepository) GetByMessageID(ctx context.Context, messageID string) (*domain.Proof, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byMessage[messageID]
	if !ok {
		return nil, domain.ErrProofNotFound
	}
	p := r.store[idx]
	return &p, nil
}

func (r *InMemoryProofRepository) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Proof, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	proofs := []*domain.Proof{}
	for _, stored := range r.store {
		if stored.HabitID == habitID {
			p := stored
			proofs = append(proofs, &p)
		}
	}

	sort.SliceStable(proofs, func(i, j int) bool {
		return proofs[i].Date.Before(proofs[j].Date)
	})

	return proofs, nil
}
