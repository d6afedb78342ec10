package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/progress"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/metrics"
)

var batch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu     sync.Mutex
	user   *domain.User
	habit  *domain.Habit
	proofs []*domain.Proof
	err    error
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

type fakeHabits struct{ *fakeStore }

func (f fakeHabits) GetByID(_ context.Context, id string) (*domain.Habit, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id != f.habit.ID {
		return nil, domain.ErrHabitNotFound
	}
	return f.habit, nil
}

func (f *fakeStore) ListByHabitID(_ context.Context, _ string) ([]*domain.Proof, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.Proof(nil), f.proofs...), nil
}

func (f *fakeStore) addProof(day int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proofs = append(f.proofs, domain.NewProof(f.habit.ID, f.user.ID, batch.AddDate(0, 0, day)))
}

func newFixture() (*fakeStore, *MemoryStreakTracker, *ProgressWorker) {
	store := &fakeStore{
		user:  &domain.User{ID: "u1", Timezone: "UTC", BatchStart: batch, Status: domain.UserStatusActive},
		habit: &domain.Habit{ID: "h1", UserID: "u1", Name: "Run", WeeklyTarget: 1, Status: domain.HabitStatusActive, CreatedAt: batch},
	}
	tracker := NewMemoryStreakTracker()
	w := NewProgressWorker(store, fakeHabits{store}, store, progress.NewEngine(progress.DefaultPolicy()), tracker, nil).
		WithClock(func() time.Time { return batch.AddDate(0, 0, 9) })
	return store, tracker, w
}

func TestProgressWorker_ProcessJob(t *testing.T) {
	t.Run("Success: First computation only stores a snapshot", func(t *testing.T) {
		store, tracker, w := newFixture()
		store.addProof(1)
		before := testutil.ToFloat64(metrics.StreakTransitions.WithLabelValues("extended"))

		w.processJob(context.Background(), ProgressJob{HabitID: "h1"})

		streak, found, _ := tracker.Last(context.Background(), "h1")
		assert.True(t, found)
		assert.Equal(t, 1, streak)
		assert.Equal(t, before, testutil.ToFloat64(metrics.StreakTransitions.WithLabelValues("extended")))
	})

	t.Run("Success: Extended streak is announced", func(t *testing.T) {
		store, tracker, w := newFixture()
		store.addProof(1)
		w.processJob(context.Background(), ProgressJob{HabitID: "h1"})

		before := testutil.ToFloat64(metrics.StreakTransitions.WithLabelValues("extended"))
		store.addProof(8)
		w.processJob(context.Background(), ProgressJob{HabitID: "h1"})

		streak, _, _ := tracker.Last(context.Background(), "h1")
		assert.Equal(t, 2, streak)
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.StreakTransitions.WithLabelValues("extended")))
	})

	t.Run("Success: Broken streak is announced", func(t *testing.T) {
		_, tracker, w := newFixture()
		require.NoError(t, tracker.Save(context.Background(), "h1", 4))

		before := testutil.ToFloat64(metrics.StreakTransitions.WithLabelValues("broken"))
		w.processJob(context.Background(), ProgressJob{HabitID: "h1"})

		streak, _, _ := tracker.Last(context.Background(), "h1")
		assert.Equal(t, 0, streak)
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.StreakTransitions.WithLabelValues("broken")))
	})

	t.Run("Fail: Repository error leaves snapshots untouched", func(t *testing.T) {
		store, tracker, w := newFixture()
		store.err = errors.New("db down")

		w.processJob(context.Background(), ProgressJob{HabitID: "h1"})

		_, found, _ := tracker.Last(context.Background(), "h1")
		assert.False(t, found)
	})

	t.Run("Edge Case: Cycle not started yet", func(t *testing.T) {
		_, tracker, w := newFixture()
		w.WithClock(func() time.Time { return batch.AddDate(0, 0, -3) })

		w.processJob(context.Background(), ProgressJob{HabitID: "h1"})

		_, found, _ := tracker.Last(context.Background(), "h1")
		assert.False(t, found)
	})
}

func TestProgressWorker_Lifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	store, tracker, w := newFixture()
	store.addProof(2)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	w.Enqueue("h1")

	assert.Eventually(t, func() bool {
		_, found, _ := tracker.Last(context.Background(), "h1")
		return found
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestProgressWorker_StartTwice(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("Edge Case: Second Start is a no-op", func(t *testing.T) {
		_, _, w := newFixture()
		ctx, cancel := context.WithCancel(context.Background())

		assert.NotPanics(t, func() {
			w.Start(ctx)
			w.Start(ctx)
		})

		cancel()
		select {
		case <-w.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop")
		}
	})
}

func TestProgressWorker_EnqueueFull(t *testing.T) {
	_, _, w := newFixture()
	before := testutil.ToFloat64(metrics.DroppedJobs)

	for i := 0; i < queueSize+5; i++ {
		w.Enqueue("h1")
	}

	assert.Len(t, w.jobs, queueSize)
	assert.Equal(t, before+5, testutil.ToFloat64(metrics.DroppedJobs))

	var nilWorker *ProgressWorker
	assert.NotPanics(t, func() { nilWorker.Enqueue("h1") })
}
