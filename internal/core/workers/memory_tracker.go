package workers

import (
	"context"
	"sync"
)

var _ StreakTracker = (*MemoryStreakTracker)(nil)

type MemoryStreakTracker struct {
	mu      sync.RWMutex
	streaks map[string]int
}

func NewMemoryStreakTracker() *MemoryStreakTracker {
	return &MemoryStreakTracker{streaks: make(map[string]int)}
}

func (t *MemoryStreakTracker) Last(_ context.Context, habitID string) (int, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.streaks[habitID]
	return s, ok, nil
}

func (t *MemoryStreakTracker) Save(_ context.Context, habitID string, streak int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.streaks[habitID] = streak
	return nil
}
