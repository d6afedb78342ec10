package domain

import (
	"errors"
	"time"
)

var (
	ErrUnsortedInput     = errors.New("proofs must be ordered by date")
	ErrInconsistentInput = errors.New("habits and progress records do not match")
)

type WeekTally struct {
	Week           int     `json:"week"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
	Qualified      bool    `json:"qualified"`
}

// HabitProgress is a view over a habit's proof history. It is recomputed on
// every read and never stored as the source of truth.
type HabitProgress struct {
	HabitID         string      `json:"habit_id"`
	WeeklyTarget    int         `json:"weekly_target"`
	WeeklyCompleted int         `json:"weekly_completed"`
	CompletionRate  float64     `json:"completion_rate"`
	CurrentStreak   int         `json:"current_streak"`
	LongestStreak   int         `json:"longest_streak"`
	LastProofDate   *time.Time  `json:"last_proof_date"`
	TotalProofs     int         `json:"total_proofs"`
	Weeks           []WeekTally `json:"weeks"`
}

type DashboardStats struct {
	TotalHabits     int     `json:"total_habits"`
	ActiveHabits    int     `json:"active_habits"`
	CompletedHabits int     `json:"completed_habits"`
	PausedHabits    int     `json:"paused_habits"`
	CurrentStreak   int     `json:"current_streak"`
	LongestStreak   int     `json:"longest_streak"`
	WeeklyScore     float64 `json:"weekly_score"`
	TotalProofs     int     `json:"total_proofs"`
	PerfectWeek     bool    `json:"perfect_week"`
}
