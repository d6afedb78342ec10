// Package progress folds a habit's proof history into weekly completion
// tallies and streaks.
package progress

import (
	"time"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
)

// Policy decides how cheat-day proofs count toward a weekly target.
type Policy struct {
	// CountCheatDays lets a cheat-day proof satisfy a day of the target.
	CountCheatDays bool
	// CheatDaysPerWeek caps how many cheat days may count in one week.
	// Zero means no cap.
	CheatDaysPerWeek int
}

func DefaultPolicy() Policy {
	return Policy{CountCheatDays: true}
}

type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

type weekBucket struct {
	effortDays map[int]bool
	cheatDays  map[int]bool
}

// Compute derives a HabitProgress from proofs ordered by date, ascending.
// Unordered input fails with domain.ErrUnsortedInput. At most one proof per
// calendar day counts toward a week.
func (e *Engine) Compute(habit domain.Habit, proofs []*domain.Proof, cc domain.CycleContext) (domain.HabitProgress, error) {
	for i := 1; i < len(proofs); i++ {
		if proofs[i].Date.Before(proofs[i-1].Date) {
			return domain.HabitProgress{}, domain.ErrUnsortedInput
		}
	}

	res := domain.HabitProgress{
		HabitID:      habit.ID,
		WeeklyTarget: habit.WeeklyTarget,
		TotalProofs:  len(proofs),
	}

	if len(proofs) > 0 {
		last := proofs[len(proofs)-1].Date
		res.LastProofDate = &last
	}

	buckets := make(map[int]*weekBucket)
	for _, p := range proofs {
		day := cycle.DayOf(cc.BatchStart, p.Date)
		if day < 0 || day > cc.DayIndex {
			continue
		}

		week := cycle.WeekIndex(day)
		b, ok := buckets[week]
		if !ok {
			b = &weekBucket{effortDays: map[int]bool{}, cheatDays: map[int]bool{}}
			buckets[week] = b
		}

		if p.IsCheatDay {
			b.cheatDays[day] = true
		} else {
			b.effortDays[day] = true
		}
	}

	firstWeek := creationWeek(habit, cc)
	current := cc.WeekIndex

	completed := func(week int) int {
		b, ok := buckets[week]
		if !ok {
			return 0
		}
		n := len(b.effortDays)
		if !e.policy.CountCheatDays {
			return n
		}
		cheats := 0
		for day := range b.cheatDays {
			if b.effortDays[day] {
				continue
			}
			cheats++
		}
		if e.policy.CheatDaysPerWeek > 0 && cheats > e.policy.CheatDaysPerWeek {
			cheats = e.policy.CheatDaysPerWeek
		}
		return n + cheats
	}

	qualifies := func(week int) bool {
		return habit.WeeklyTarget > 0 && completed(week) >= habit.WeeklyTarget
	}

	run := 0
	for w := firstWeek; w <= current; w++ {
		c := completed(w)
		q := qualifies(w)
		res.Weeks = append(res.Weeks, domain.WeekTally{
			Week:           w,
			Completed:      c,
			CompletionRate: Rate(c, habit.WeeklyTarget),
			Qualified:      q,
		})

		if q {
			run++
			res.LongestStreak = max(res.LongestStreak, run)
		} else {
			run = 0
		}
	}

	res.WeeklyCompleted = completed(current)
	res.CompletionRate = Rate(res.WeeklyCompleted, habit.WeeklyTarget)
	res.CurrentStreak = currentStreak(current, firstWeek, qualifies)

	return res, nil
}

// currentStreak walks back from the current week. The in-progress week
// counts only once it already meets the target; otherwise the walk starts
// from the week before.
func currentStreak(current, firstWeek int, qualifies func(int) bool) int {
	w := current
	if !qualifies(w) {
		w--
	}

	streak := 0
	for ; w >= firstWeek && qualifies(w); w-- {
		streak++
	}
	return streak
}

// Rate is completed/target clamped to [0, 1]. A zero target yields 0.
func Rate(completed, target int) float64 {
	if target <= 0 {
		return 0
	}
	r := float64(completed) / float64(target)
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}

func creationWeek(habit domain.Habit, cc domain.CycleContext) int {
	if habit.CreatedAt.IsZero() {
		return 1
	}
	created := domain.CivilDay(habit.CreatedAt, locationOf(cc))
	week := cycle.WeekIndex(cycle.DayOf(cc.BatchStart, created))
	if week < 1 {
		return 1
	}
	return week
}

func locationOf(cc domain.CycleContext) *time.Location {
	if cc.Location == nil {
		return time.UTC
	}
	return cc.Location
}
