package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/logger"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/metrics"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

const (
	habitCacheTTL   = 30 * time.Minute
	habitCacheLabel = "habits"
)

// CachedHabitRepository is a read-through Redis cache in front of the habit
// store. The classifier lists a user's habits on every incoming message, so
// the per-user list is the hot key; single habits are cached alongside it.
// Any write drops both the habit and its owner's list.
type CachedHabitRepository struct {
	next domain.HabitRepository
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

func NewCachedHabitRepository(next domain.HabitRepository, rdb *redis.Client, log *zap.Logger) *CachedHabitRepository {
	return &CachedHabitRepository{
		next: next,
		rdb:  rdb,
		ttl:  habitCacheTTL,
		log:  logger.OrNop(log).Named("habit_cache"),
	}
}

func userHabitsKey(userID string) string { return "habits:" + userID }
func habitKey(id string) string          { return "habit:" + id }

// load decodes key into dst and reports whether it was a usable hit.
// Undecodable entries are removed so the next read repopulates them.
func (r *CachedHabitRepository) load(ctx context.Context, key string, dst any) bool {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues(habitCacheLabel, "miss").Inc()
		return false
	case err != nil:
		metrics.CacheLookups.WithLabelValues(habitCacheLabel, "error").Inc()
		r.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.CacheLookups.WithLabelValues(habitCacheLabel, "corrupt").Inc()
		r.log.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		r.rdb.Del(ctx, key)
		return false
	}

	metrics.CacheLookups.WithLabelValues(habitCacheLabel, "hit").Inc()
	return true
}

func (r *CachedHabitRepository) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.rdb.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *CachedHabitRepository) evict(ctx context.Context, h *domain.Habit) {
	if err := r.rdb.Del(ctx, userHabitsKey(h.UserID), habitKey(h.ID)).Err(); err != nil {
		r.log.Warn("cache eviction failed",
			zap.String("user_id", h.UserID),
			zap.String("habit_id", h.ID),
			zap.Error(err),
		)
	}
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	key := userHabitsKey(userID)

	var cached []*domain.Habit
	if r.load(ctx, key, &cached) {
		return cached, nil
	}

	habits, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, habits)
	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	key := habitKey(id)

	var cached domain.Habit
	if r.load(ctx, key, &cached) {
		return &cached, nil
	}

	habit, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, habit)
	return habit, nil
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.evict(ctx, habit)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.evict(ctx, habit)
	return nil
}
