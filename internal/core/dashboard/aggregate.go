// Package dashboard rolls per-habit progress up into user-level statistics.
package dashboard

import (
	"fmt"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
)

// Aggregate requires exactly one progress record per habit, keyed by habit
// ID. Any mismatch fails with domain.ErrInconsistentInput.
func Aggregate(habits []*domain.Habit, progressByHabit map[string]domain.HabitProgress) (domain.DashboardStats, error) {
	if len(habits) != len(progressByHabit) {
		return domain.DashboardStats{}, fmt.Errorf("%w: %d habits, %d progress records",
			domain.ErrInconsistentInput, len(habits), len(progressByHabit))
	}

	var stats domain.DashboardStats
	var rateSum float64
	var rated int
	perfect := true
	seen := make(map[string]bool, len(habits))

	for _, h := range habits {
		if h == nil {
			return domain.DashboardStats{}, fmt.Errorf("%w: nil habit", domain.ErrInconsistentInput)
		}
		if seen[h.ID] {
			return domain.DashboardStats{}, fmt.Errorf("%w: duplicate habit %s", domain.ErrInconsistentInput, h.ID)
		}
		seen[h.ID] = true

		p, ok := progressByHabit[h.ID]
		if !ok || (p.HabitID != "" && p.HabitID != h.ID) {
			return domain.DashboardStats{}, fmt.Errorf("%w: no progress for habit %s", domain.ErrInconsistentInput, h.ID)
		}

		stats.TotalHabits++
		stats.TotalProofs += p.TotalProofs

		switch h.Status {
		case domain.HabitStatusActive:
			stats.ActiveHabits++
			stats.CurrentStreak = max(stats.CurrentStreak, p.CurrentStreak)
			stats.LongestStreak = max(stats.LongestStreak, p.LongestStreak)
			if p.WeeklyTarget > 0 {
				rateSum += p.CompletionRate
				rated++
				perfect = perfect && p.CompletionRate >= 1
			}
		case domain.HabitStatusCompleted:
			stats.CompletedHabits++
		case domain.HabitStatusPaused:
			stats.PausedHabits++
		}
	}

	if rated > 0 {
		stats.WeeklyScore = rateSum / float64(rated) * 100
		stats.PerfectWeek = perfect
	}

	return stats, nil
}
