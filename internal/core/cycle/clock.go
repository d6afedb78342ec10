// Package cycle maps a user's batch start and the current instant onto the
// day, week and stage of a 90-day accountability batch.
package cycle

import (
	"time"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
)

const (
	LengthDays  = 90
	DaysPerWeek = 7

	EarlyStageLastDay  = 21
	MiddleStageLastDay = 44

	secondsPerDay = 24 * 60 * 60
)

// ContextAt stages now against batchStart using calendar days in loc.
// It fails with domain.ErrInvalidCycle when now precedes the batch start date.
func ContextAt(batchStart, now time.Time, loc *time.Location) (domain.CycleContext, error) {
	if loc == nil {
		loc = time.UTC
	}

	start := domain.CivilDay(batchStart, loc)
	today := domain.CivilDay(now, loc)

	day := DayOf(start, today)
	if day < 0 {
		return domain.CycleContext{}, domain.ErrInvalidCycle
	}

	return domain.CycleContext{
		BatchStart:    start,
		Today:         today,
		DayIndex:      day,
		WeekIndex:     WeekIndex(day),
		Stage:         StageOf(day),
		DaysRemaining: max(0, LengthDays-1-day),
		Completed:     day >= LengthDays,
		Location:      loc,
	}, nil
}

// DayOf counts whole days from start to day. Both must already be civil
// dates as returned by domain.CivilDay.
func DayOf(start, day time.Time) int {
	// Unix seconds rather than Sub, which saturates past ~292 years.
	return int((day.Unix() - start.Unix()) / secondsPerDay)
}

// WeekIndex is 1-based: days 0..6 are week 1, days 7..13 week 2.
// Negative days have no week and map to 0.
func WeekIndex(dayIndex int) int {
	if dayIndex < 0 {
		return 0
	}
	return dayIndex/DaysPerWeek + 1
}

func StageOf(dayIndex int) domain.Stage {
	switch {
	case dayIndex <= EarlyStageLastDay:
		return domain.StageEarly
	case dayIndex <= MiddleStageLastDay:
		return domain.StageMiddle
	default:
		return domain.StageFinal
	}
}
