package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrProofNotFound = errors.New("proof not found")
	ErrProofExists   = errors.New("proof already recorded for this message")
)

type UserRepository interface {
	// Create persists a newly onboarded user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id string) (*User, error)

	// Update stores status, trust and timezone changes. Users are never deleted.
	Update(ctx context.Context, user *User) error
}

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all habits associated with a specific user,
	// ordered by creation time.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update modifies the state of an existing habit.
	Update(ctx context.Context, habit *Habit) error
}

type ProofRepository interface {
	// Create appends a proof. When a proof with the same MessageID already
	// exists it must return ErrProofExists and store nothing.
	Create(ctx context.Context, proof *Proof) error

	// GetByMessageID finds the proof recorded for a chat message.
	GetByMessageID(ctx context.Context, messageID string) (*Proof, error)

	// ListByHabitID returns the whole history of a habit ordered by date.
	ListByHabitID(ctx context.Context, habitID string) ([]*Proof, error)
}
