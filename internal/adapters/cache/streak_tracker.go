package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/workers"
)

var _ workers.StreakTracker = (*RedisStreakTracker)(nil)

// snapshotTTL outlives a 90-day batch so a snapshot survives until the
// batch is over.
const snapshotTTL = 120 * 24 * time.Hour

// RedisStreakTracker keeps the last announced streak per habit so several
// API replicas agree on when a streak changed.
type RedisStreakTracker struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStreakTracker(rdb *redis.Client) *RedisStreakTracker {
	return &RedisStreakTracker{rdb: rdb, prefix: "streak:"}
}

func (t *RedisStreakTracker) key(habitID string) string {
	return t.prefix + habitID
}

func (t *RedisStreakTracker) Last(ctx context.Context, habitID string) (int, bool, error) {
	val, err := t.rdb.Get(ctx, t.key(habitID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get streak: %w", err)
	}

	streak, err := strconv.Atoi(val)
	if err != nil {
		t.rdb.Del(ctx, t.key(habitID))
		return 0, false, fmt.Errorf("corrupted streak snapshot %q: %w", val, err)
	}
	return streak, true, nil
}

func (t *RedisStreakTracker) Save(ctx context.Context, habitID string, streak int) error {
	if err := t.rdb.Set(ctx, t.key(habitID), streak, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("redis set streak: %w", err)
	}
	return nil
}
