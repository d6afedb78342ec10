package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/progress"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/logger"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/metrics"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
}

type ProofRepository interface {
	ListByHabitID(ctx context.Context, habitID string) ([]*domain.Proof, error)
}

// StreakTracker remembers the last streak seen per habit so transitions can
// be announced. It is never read back as progress.
type StreakTracker interface {
	Last(ctx context.Context, habitID string) (streak int, found bool, err error)
	Save(ctx context.Context, habitID string, streak int) error
}

type ProgressJob struct {
	HabitID string
}

const queueSize = 100

type ProgressWorker struct {
	userRepo  UserRepository
	habitRepo HabitRepository
	proofRepo ProofRepository
	engine    *progress.Engine
	tracker   StreakTracker
	log       *zap.Logger
	now       func() time.Time
	jobs      chan ProgressJob
	done      chan struct{}
	startOnce sync.Once
}

func NewProgressWorker(uRepo UserRepository, hRepo HabitRepository, pRepo ProofRepository, engine *progress.Engine, tracker StreakTracker, log *zap.Logger) *ProgressWorker {
	return &ProgressWorker{
		userRepo:  uRepo,
		habitRepo: hRepo,
		proofRepo: pRepo,
		engine:    engine,
		tracker:   tracker,
		log:       logger.OrNop(log).Named("progress_worker"),
		now:       time.Now,
		jobs:      make(chan ProgressJob, queueSize),
		done:      make(chan struct{}),
	}
}

func (w *ProgressWorker) WithClock(now func() time.Time) *ProgressWorker {
	w.now = now
	return w
}

// Start consumes jobs in a single goroutine until ctx is cancelled. Calls
// after the first are no-ops.
func (w *ProgressWorker) Start(ctx context.Context) {
	w.startOnce.Do(func() { go w.run(ctx) })
}

func (w *ProgressWorker) run(ctx context.Context) {
	defer close(w.done)
	w.log.Info("started")
	for {
		select {
		case job := <-w.jobs:
			w.processJob(ctx, job)
		case <-ctx.Done():
			w.log.Info("shutting down")
			return
		}
	}
}

// Done is closed once the goroutine launched by Start has returned.
func (w *ProgressWorker) Done() <-chan struct{} {
	return w.done
}

func (w *ProgressWorker) Enqueue(habitID string) {
	if w == nil {
		return
	}
	select {
	case w.jobs <- ProgressJob{HabitID: habitID}:
	default:
		metrics.DroppedJobs.Inc()
		w.log.Warn("queue full, dropping job", zap.String("habit_id", habitID))
	}
}

func (w *ProgressWorker) processJob(ctx context.Context, job ProgressJob) {
	log := w.log.With(zap.String("habit_id", job.HabitID))

	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Error("fetching habit", zap.Error(err))
		return
	}

	user, err := w.userRepo.GetByID(ctx, habit.UserID)
	if err != nil {
		log.Error("fetching user", zap.Error(err))
		return
	}

	cc, err := cycle.ContextAt(user.BatchStart, w.now(), user.Location())
	if err != nil {
		log.Debug("cycle not started", zap.Error(err))
		return
	}

	proofs, err := w.proofRepo.ListByHabitID(ctx, habit.ID)
	if err != nil {
		log.Error("fetching proofs", zap.Error(err))
		return
	}

	p, err := w.engine.Compute(*habit, proofs, cc)
	if err != nil {
		log.Error("computing progress", zap.Error(err))
		return
	}

	prev, found, err := w.tracker.Last(ctx, habit.ID)
	if err != nil {
		log.Warn("reading streak snapshot", zap.Error(err))
	}

	if found && prev == p.CurrentStreak {
		return
	}

	if found {
		direction := "extended"
		if p.CurrentStreak < prev {
			direction = "broken"
		}
		metrics.StreakTransitions.WithLabelValues(direction).Inc()
		log.Info("streak_"+direction,
			zap.String("user_id", user.ID),
			zap.Int("previous", prev),
			zap.Int("current", p.CurrentStreak),
			zap.Int("week", cc.WeekIndex),
		)
	}

	if err := w.tracker.Save(ctx, habit.ID, p.CurrentStreak); err != nil {
		log.Warn("saving streak snapshot", zap.Error(err))
	}
}
