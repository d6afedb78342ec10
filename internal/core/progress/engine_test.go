package progress_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/progress"
)

var batch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func ctxAt(t *testing.T, day int) domain.CycleContext {
	t.Helper()
	cc, err := cycle.ContextAt(batch, batch.AddDate(0, 0, day).Add(15*time.Hour), time.UTC)
	require.NoError(t, err)
	return cc
}

func habit(target int) domain.Habit {
	return domain.Habit{ID: "h1", UserID: "u1", Name: "Run", WeeklyTarget: target, Status: domain.HabitStatusActive, CreatedAt: batch}
}

type dayProof struct {
	day     int
	minimal bool
	cheat   bool
}

func proofsOn(fixtures ...dayProof) []*domain.Proof {
	out := make([]*domain.Proof, 0, len(fixtures))
	for _, s := range fixtures {
		p := domain.NewProof("h1", "u1", batch.AddDate(0, 0, s.day))
		p.IsMinimalDose = s.minimal
		p.IsCheatDay = s.cheat
		out = append(out, p)
	}
	return out
}

func days(ds ...int) []*domain.Proof {
	fixtures := make([]dayProof, 0, len(ds))
	for _, d := range ds {
		fixtures = append(fixtures, dayProof{day: d})
	}
	return proofsOn(fixtures...)
}

func TestCompute_EndToEnd(t *testing.T) {
	engine := progress.NewEngine(progress.DefaultPolicy())

	// Target 3 with proofs on days 1, 3, 5 (week 1) and day 9 (week 2, current).
	got, err := engine.Compute(habit(3), days(1, 3, 5, 9), ctxAt(t, 9))
	require.NoError(t, err)

	last := batch.AddDate(0, 0, 9)
	want := domain.HabitProgress{
		HabitID:         "h1",
		WeeklyTarget:    3,
		WeeklyCompleted: 1,
		CompletionRate:  1.0 / 3.0,
		CurrentStreak:   1,
		LongestStreak:   1,
		LastProofDate:   &last,
		TotalProofs:     4,
		Weeks: []domain.WeekTally{
			{Week: 1, Completed: 3, CompletionRate: 1.0, Qualified: true},
			{Week: 2, Completed: 1, CompletionRate: 1.0 / 3.0, Qualified: false},
		},
	}

	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Compute() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_Empty(t *testing.T) {
	engine := progress.NewEngine(progress.DefaultPolicy())

	got, err := engine.Compute(habit(3), nil, ctxAt(t, 16))

	require.NoError(t, err)
	assert.Equal(t, 0, got.WeeklyCompleted)
	assert.Equal(t, 0, got.CurrentStreak)
	assert.Equal(t, 0, got.LongestStreak)
	assert.Equal(t, 0.0, got.CompletionRate)
	assert.Nil(t, got.LastProofDate)
	assert.Equal(t, 0, got.TotalProofs)
	assert.Len(t, got.Weeks, 3)
}

func TestCompute_CheatDays(t *testing.T) {
	t.Run("Success: Cheat day alone satisfies a target of one", func(t *testing.T) {
		engine := progress.NewEngine(progress.DefaultPolicy())

		got, err := engine.Compute(habit(1), proofsOn(dayProof{day: 2, cheat: true}), ctxAt(t, 4))

		require.NoError(t, err)
		assert.Equal(t, 1, got.WeeklyCompleted)
		assert.Equal(t, 1.0, got.CompletionRate)
		assert.Equal(t, 1, got.CurrentStreak, "current week already meets target")
	})

	t.Run("Success: Disabled policy ignores cheat days", func(t *testing.T) {
		engine := progress.NewEngine(progress.Policy{CountCheatDays: false})

		got, err := engine.Compute(habit(1), proofsOn(dayProof{day: 2, cheat: true}), ctxAt(t, 4))

		require.NoError(t, err)
		assert.Equal(t, 0, got.WeeklyCompleted)
		assert.Equal(t, 0.0, got.CompletionRate)
		assert.Equal(t, 1, got.TotalProofs)
	})

	t.Run("Success: Weekly cap limits counted cheat days", func(t *testing.T) {
		engine := progress.NewEngine(progress.Policy{CountCheatDays: true, CheatDaysPerWeek: 1})

		proofs := proofsOn(
			dayProof{day: 0, cheat: true},
			dayProof{day: 1, cheat: true},
			dayProof{day: 2},
		)
		got, err := engine.Compute(habit(3), proofs, ctxAt(t, 3))

		require.NoError(t, err)
		assert.Equal(t, 2, got.WeeklyCompleted)
	})

	t.Run("Success: Minimal dose counts like a full proof", func(t *testing.T) {
		engine := progress.NewEngine(progress.DefaultPolicy())

		got, err := engine.Compute(habit(2), proofsOn(dayProof{day: 1, minimal: true}, dayProof{day: 2}), ctxAt(t, 3))

		require.NoError(t, err)
		assert.Equal(t, 2, got.WeeklyCompleted)
		assert.Equal(t, 1.0, got.CompletionRate)
	})
}

func TestCompute_Streaks(t *testing.T) {
	engine := progress.NewEngine(progress.DefaultPolicy())

	tests := []struct {
		name            string
		target          int
		proofs          []*domain.Proof
		day             int
		expectedCurrent int
		expectedLongest int
	}{
		{"Success: Three closed weeks qualify", 2, days(0, 1, 7, 8, 14, 15), 22, 3, 3},
		{"Success: Current week included once it qualifies", 2, days(0, 1, 7, 8), 8, 2, 2},
		{"Fail: Gap week breaks the streak", 1, days(0, 14, 21), 22, 2, 2},
		{"Fail: Missed previous week leaves nothing", 1, days(0, 1), 15, 0, 1},
		{"Edge Case: Same day twice counts once", 2, days(3, 3, 3), 5, 0, 0},
		{"Edge Case: Over-achieving clamps the rate only", 1, days(0, 1, 2, 3), 4, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Compute(habit(tt.target), tt.proofs, ctxAt(t, tt.day))

			require.NoError(t, err)
			assert.Equal(t, tt.expectedCurrent, got.CurrentStreak)
			assert.Equal(t, tt.expectedLongest, got.LongestStreak)
			assert.LessOrEqual(t, got.CompletionRate, 1.0)
			assert.GreaterOrEqual(t, got.CompletionRate, 0.0)
		})
	}

	t.Run("Edge Case: Walk stops at the creation week", func(t *testing.T) {
		h := habit(1)
		h.CreatedAt = batch.AddDate(0, 0, 14)

		// Proofs before creation are still in range but weeks before the
		// creation week are not part of the habit's life.
		got, err := engine.Compute(h, days(0, 7, 14, 21), ctxAt(t, 22))

		require.NoError(t, err)
		assert.Equal(t, 2, got.CurrentStreak)
		assert.Len(t, got.Weeks, 2)
		assert.Equal(t, 3, got.Weeks[0].Week)
	})

	t.Run("Edge Case: Zero target never qualifies", func(t *testing.T) {
		got, err := engine.Compute(habit(0), days(0, 1, 2), ctxAt(t, 3))

		require.NoError(t, err)
		assert.Equal(t, 3, got.WeeklyCompleted)
		assert.Equal(t, 0.0, got.CompletionRate)
		assert.Equal(t, 0, got.CurrentStreak)
	})
}

func TestCompute_InputContract(t *testing.T) {
	engine := progress.NewEngine(progress.DefaultPolicy())

	t.Run("Fail: Unsorted proofs are rejected", func(t *testing.T) {
		_, err := engine.Compute(habit(3), days(5, 1), ctxAt(t, 9))
		assert.ErrorIs(t, err, domain.ErrUnsortedInput)
	})

	t.Run("Edge Case: Out-of-window proofs are ignored", func(t *testing.T) {
		proofs := days(-2, 1, 30)

		got, err := engine.Compute(habit(1), proofs, ctxAt(t, 3))

		require.NoError(t, err)
		assert.Equal(t, 1, got.WeeklyCompleted)
		assert.Equal(t, 3, got.TotalProofs)
	})

	t.Run("Success: Identical inputs give identical output", func(t *testing.T) {
		proofs := days(1, 3, 5, 9)
		cc := ctxAt(t, 9)

		a, errA := engine.Compute(habit(3), proofs, cc)
		b, errB := engine.Compute(habit(3), proofs, cc)

		require.NoError(t, errA)
		require.NoError(t, errB)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("Compute() not deterministic:\n%s", diff)
		}
	})
}

func TestRate(t *testing.T) {
	assert.Equal(t, 0.0, progress.Rate(3, 0))
	assert.Equal(t, 0.5, progress.Rate(1, 2))
	assert.Equal(t, 1.0, progress.Rate(9, 3))
	assert.Equal(t, 0.0, progress.Rate(-1, 3))
}
