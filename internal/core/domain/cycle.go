package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidCycle = errors.New("cycle has not started yet")
)

type Stage string

const (
	StageEarly  Stage = "early"
	StageMiddle Stage = "middle"
	StageFinal  Stage = "final"
)

// CycleContext locates a moment inside a user's batch. DayIndex is 0 on the
// batch start date; WeekIndex is 1-based.
type CycleContext struct {
	BatchStart    time.Time      `json:"batch_start"`
	Today         time.Time      `json:"today"`
	DayIndex      int            `json:"day_index"`
	WeekIndex     int            `json:"week_index"`
	Stage         Stage          `json:"stage"`
	DaysRemaining int            `json:"days_remaining"`
	Completed     bool           `json:"completed"`
	Location      *time.Location `json:"-"`
}

// CivilDay projects t onto its calendar date in loc and returns that date at
// midnight UTC, so civil dates from different zones compare directly.
func CivilDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
