package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/classifier"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/services"
)

var batchStart = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

type fixture struct {
	users  *repository.InMemoryUserRepository
	habits *repository.InMemoryHabitRepository
	proofs *repository.InMemoryProofRepository
	user   *domain.User
	run    *domain.Habit
	read   *domain.Habit
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		users:  repository.NewInMemoryUserRepository(),
		habits: repository.NewInMemoryHabitRepository(),
		proofs: repository.NewInMemoryProofRepository(),
	}

	user, err := domain.NewUser("u1", "Ada", "UTC", batchStart)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, user))
	f.user = user

	f.run, err = domain.NewHabit("u1", "Morning Run", 3, []string{"fitness"}, domain.HabitDetails{MinimalDose: "10 min"})
	require.NoError(t, err)
	f.run.CreatedAt = batchStart
	require.NoError(t, f.habits.Create(ctx, f.run))

	f.read, err = domain.NewHabit("u1", "Read Fiction", 4, []string{"learning"}, domain.HabitDetails{})
	require.NoError(t, err)
	f.read.CreatedAt = batchStart
	require.NoError(t, f.habits.Create(ctx, f.read))

	return f
}

func (f *fixture) proofService(day int) *services.ProofService {
	return services.NewProofService(f.users, f.habits, f.proofs, classifier.New(), nil, nil).
		WithClock(func() time.Time { return batchStart.AddDate(0, 0, day).Add(9 * time.Hour) })
}

func TestProofService_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Matching message becomes a proof", func(t *testing.T) {
		f := newFixture(t)
		svc := f.proofService(3)

		res, err := svc.Ingest(ctx, domain.Message{ID: "m1", SenderID: "u1", Text: "Did my morning run, 5 km"})
		require.NoError(t, err)

		require.True(t, res.Outcome.Matched())
		require.NotNil(t, res.Proof)
		assert.False(t, res.Duplicate)
		assert.Equal(t, f.run.ID, res.Proof.HabitID)
		assert.Equal(t, batchStart.AddDate(0, 0, 3), res.Proof.Date)
		assert.Equal(t, "5 km", res.Proof.Unit)

		stored, err := f.proofs.ListByHabitID(ctx, f.run.ID)
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("Success: Redelivered message is a duplicate", func(t *testing.T) {
		f := newFixture(t)
		svc := f.proofService(3)
		msg := domain.Message{ID: "m1", SenderID: "u1", Text: "morning run done"}

		first, err := svc.Ingest(ctx, msg)
		require.NoError(t, err)
		second, err := svc.Ingest(ctx, msg)
		require.NoError(t, err)

		assert.True(t, second.Duplicate)
		assert.Equal(t, first.Proof.ID, second.Proof.ID)

		stored, _ := f.proofs.ListByHabitID(ctx, f.run.ID)
		assert.Len(t, stored, 1)
	})

	t.Run("Success: Cheat cue wins over minimal cue", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.proofService(5).Ingest(ctx, domain.Message{ID: "m2", SenderID: "u1", Text: "morning run skipped, cheat day, just a quick walk"})
		require.NoError(t, err)

		require.NotNil(t, res.Proof)
		assert.True(t, res.Proof.IsCheatDay)
		assert.False(t, res.Proof.IsMinimalDose)
	})

	t.Run("Edge Case: Unrelated chatter stores nothing", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.proofService(3).Ingest(ctx, domain.Message{ID: "m3", SenderID: "u1", Text: "good morning everyone"})
		require.NoError(t, err)

		assert.False(t, res.Outcome.Matched())
		assert.Equal(t, classifier.ReasonLowConfidence, res.Outcome.Reason)
		assert.Nil(t, res.Proof)
	})

	t.Run("Edge Case: Paused user is not eligible", func(t *testing.T) {
		f := newFixture(t)
		f.user.Pause("holiday")
		require.NoError(t, f.users.Update(ctx, f.user))

		res, err := f.proofService(3).Ingest(ctx, domain.Message{ID: "m4", SenderID: "u1", Text: "morning run"})
		require.NoError(t, err)
		assert.Equal(t, classifier.ReasonUserNotEligible, res.Outcome.Reason)
	})

	t.Run("Fail: Message before the batch starts", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.proofService(-2).Ingest(ctx, domain.Message{ID: "m5", SenderID: "u1", Text: "morning run"})
		assert.ErrorIs(t, err, domain.ErrInvalidCycle)
	})

	t.Run("Fail: Missing message id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.proofService(3).Ingest(ctx, domain.Message{SenderID: "u1", Text: "morning run"})
		assert.ErrorIs(t, err, services.ErrMessageIDRequired)
	})

	t.Run("Fail: Unknown sender", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.proofService(3).Ingest(ctx, domain.Message{ID: "m6", SenderID: "ghost", Text: "morning run"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestProofService_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Date defaults to today", func(t *testing.T) {
		f := newFixture(t)
		p, err := f.proofService(4).Record(ctx, services.RecordProofInput{UserID: "u1", HabitID: f.read.ID, Unit: "30 pages"})
		require.NoError(t, err)

		assert.Equal(t, batchStart.AddDate(0, 0, 4), p.Date)
		assert.Equal(t, "30 pages", p.Unit)
	})

	t.Run("Success: Offset instant is dated on the user's calendar", func(t *testing.T) {
		ny, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skip("tzdata not available")
		}
		f := newFixture(t)
		f.user.Timezone = "America/New_York"
		f.user.BatchStart = time.Date(2024, 3, 4, 0, 0, 0, 0, ny)
		require.NoError(t, f.users.Update(ctx, f.user))

		// Still Sunday evening in New York, Monday in UTC.
		p, err := f.proofService(8).Record(ctx, services.RecordProofInput{
			UserID:  "u1",
			HabitID: f.read.ID,
			Date:    time.Date(2024, 3, 10, 22, 0, 0, 0, time.FixedZone("EST", -5*3600)),
		})
		require.NoError(t, err)
		assert.Equal(t, batchStart.AddDate(0, 0, 6), p.Date)
	})

	t.Run("Success: Calendar day is taken as written", func(t *testing.T) {
		f := newFixture(t)
		p, err := f.proofService(4).Record(ctx, services.RecordProofInput{UserID: "u1", HabitID: f.read.ID, Day: "2024-03-06"})
		require.NoError(t, err)
		assert.Equal(t, batchStart.AddDate(0, 0, 2), p.Date)
	})

	t.Run("Fail: Malformed calendar day", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.proofService(4).Record(ctx, services.RecordProofInput{UserID: "u1", HabitID: f.read.ID, Day: "06/03/2024"})
		assert.ErrorIs(t, err, domain.ErrInvalidProofDate)
	})

	t.Run("Fail: Conflicting flags", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.proofService(4).Record(ctx, services.RecordProofInput{
			UserID:        "u1",
			HabitID:       f.read.ID,
			IsMinimalDose: true,
			IsCheatDay:    true,
		})
		assert.ErrorIs(t, err, domain.ErrConflictingFlags)
	})

	t.Run("Fail: Future date is out of range", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.proofService(4).Record(ctx, services.RecordProofInput{
			UserID:  "u1",
			HabitID: f.read.ID,
			Date:    batchStart.AddDate(0, 0, 6),
		})
		assert.ErrorIs(t, err, domain.ErrProofOutOfRange)
	})

	t.Run("Fail: Paused habit", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.read.TransitionTo(domain.HabitStatusPaused))
		require.NoError(t, f.habits.Update(ctx, f.read))

		_, err := f.proofService(4).Record(ctx, services.RecordProofInput{UserID: "u1", HabitID: f.read.ID})
		assert.ErrorIs(t, err, domain.ErrHabitNotActive)
	})

	t.Run("Security: Foreign habit looks missing", func(t *testing.T) {
		f := newFixture(t)
		other, err := domain.NewUser("u2", "Eve", "UTC", batchStart)
		require.NoError(t, err)
		require.NoError(t, f.users.Create(ctx, other))

		_, err = f.proofService(4).Record(ctx, services.RecordProofInput{UserID: "u2", HabitID: f.read.ID})
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)

		_, err = f.proofService(4).ListByHabit(ctx, "u2", f.read.ID)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})
}
