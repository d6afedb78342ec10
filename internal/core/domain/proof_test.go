package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
)

func TestNewProof(t *testing.T) {
	t.Run("Success: Date is truncated to the civil day", func(t *testing.T) {
		p := domain.NewProof("h1", "u1", time.Date(2024, 3, 5, 22, 15, 0, 0, time.UTC))

		assert.NotEmpty(t, p.ID)
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), p.Date)
		assert.Equal(t, domain.DefaultProofUnit, p.Unit)
		assert.NoError(t, p.Validate())
	})
}

func TestProof_Validate(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		mutate      func(p *domain.Proof)
		expectedErr error
	}{
		{"Success: Minimal dose alone", func(p *domain.Proof) { p.IsMinimalDose = true }, nil},
		{"Success: Cheat day alone", func(p *domain.Proof) { p.IsCheatDay = true }, nil},
		{"Fail: Both reduced-effort flags", func(p *domain.Proof) { p.IsMinimalDose, p.IsCheatDay = true, true }, domain.ErrConflictingFlags},
		{"Fail: Missing habit", func(p *domain.Proof) { p.HabitID = "" }, domain.ErrProofMissingHabit},
		{"Fail: Missing user", func(p *domain.Proof) { p.UserID = " " }, domain.ErrProofMissingUserID},
		{"Fail: Zero date", func(p *domain.Proof) { p.Date = time.Time{} }, domain.ErrProofDateRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.NewProof("h1", "u1", day)
			tt.mutate(p)
			assert.Equal(t, tt.expectedErr, p.Validate())
		})
	}
}

func TestProof_WithinCycle(t *testing.T) {
	cc := domain.CycleContext{
		BatchStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Today:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name        string
		date        time.Time
		expectedErr error
	}{
		{"Edge Case: Batch start day", cc.BatchStart, nil},
		{"Edge Case: Today", cc.Today, nil},
		{"Fail: Before batch", cc.BatchStart.AddDate(0, 0, -1), domain.ErrProofOutOfRange},
		{"Fail: In the future", cc.Today.AddDate(0, 0, 1), domain.ErrProofOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.NewProof("h1", "u1", tt.date)
			assert.Equal(t, tt.expectedErr, p.WithinCycle(cc))
		})
	}
}

func TestClassifiedProof_ToProof(t *testing.T) {
	c := domain.ClassifiedProof{
		HabitID:    "h1",
		UserID:     "u1",
		MessageID:  "m1",
		Date:       time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Unit:       "30 min",
		IsCheatDay: true,
		RawText:    "rest day today",
	}

	p := c.ToProof()

	assert.Equal(t, "m1", p.MessageID)
	assert.Equal(t, "30 min", p.Unit)
	assert.Equal(t, "rest day today", p.Note)
	assert.True(t, p.IsCheatDay)
	assert.False(t, p.IsMinimalDose)
	assert.NoError(t, p.Validate())
}

func TestCivilDay(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skip("tzdata not available")
	}

	late := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), domain.CivilDay(late, rome))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), domain.CivilDay(late, nil))
}
