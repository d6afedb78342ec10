package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty      = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong    = errors.New("habit name is too long (max 100 chars)")
	ErrHabitTextTooLong    = errors.New("habit description field is too long (max 500 chars)")
	ErrHabitInvalidUserID  = errors.New("invalid user id")
	ErrInvalidWeeklyTarget = errors.New("weekly target must be between 1 and 7")
	ErrInvalidHabitStatus  = errors.New("invalid habit status (must be active, paused or completed)")
	ErrInvalidTransition   = errors.New("habit status transition not allowed")
	ErrHabitNotActive      = errors.New("habit is not active")
	ErrTooManyDomainTags   = errors.New("too many domain tags (max 10)")
)

type HabitStatus string

const (
	HabitStatusActive    HabitStatus = "active"
	HabitStatusPaused    HabitStatus = "paused"
	HabitStatusCompleted HabitStatus = "completed"
)

const (
	MaxNameLen        = 100
	MaxTextLen        = 500
	MaxDomainTags     = 10
	MaxWeeklyTarget   = 7
	MinWeeklyTarget   = 1
	DefaultDifficulty = "medium"
)

type Habit struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Name         string      `json:"name"`
	Domains      []string    `json:"domains"`
	WeeklyTarget int         `json:"weekly_target"`
	Context      string      `json:"context,omitempty"`
	Difficulty   string      `json:"difficulty,omitempty"`
	SmartGoal    string      `json:"smart_goal,omitempty"`
	Why          string      `json:"why,omitempty"`
	MinimalDose  string      `json:"minimal_dose,omitempty"`
	Status       HabitStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// HabitDetails carries the qualitative description a user gives a habit at
// creation time.
type HabitDetails struct {
	Context     string
	Difficulty  string
	SmartGoal   string
	Why         string
	MinimalDose string
}

func NewHabit(userID, name string, weeklyTarget int, domains []string, details HabitDetails) (*Habit, error) {
	now := time.Now().UTC()

	h := &Habit{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         strings.TrimSpace(name),
		Domains:      normalizeDomains(domains),
		WeeklyTarget: weeklyTarget,
		Context:      strings.TrimSpace(details.Context),
		Difficulty:   strings.TrimSpace(details.Difficulty),
		SmartGoal:    strings.TrimSpace(details.SmartGoal),
		Why:          strings.TrimSpace(details.Why),
		MinimalDose:  strings.TrimSpace(details.MinimalDose),
		Status:       HabitStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if h.Difficulty == "" {
		h.Difficulty = DefaultDifficulty
	}

	if err := h.Validate(); err != nil {
		return nil, err
	}

	return h, nil
}

func (h *Habit) Validate() error {
	if strings.TrimSpace(h.UserID) == "" {
		return ErrHabitInvalidUserID
	}
	if h.Name == "" {
		return ErrHabitNameEmpty
	}
	if utf8.RuneCountInString(h.Name) > MaxNameLen {
		return ErrHabitNameTooLong
	}
	for _, text := range []string{h.Context, h.SmartGoal, h.Why, h.MinimalDose} {
		if utf8.RuneCountInString(text) > MaxTextLen {
			return ErrHabitTextTooLong
		}
	}
	if h.WeeklyTarget < MinWeeklyTarget || h.WeeklyTarget > MaxWeeklyTarget {
		return ErrInvalidWeeklyTarget
	}
	if len(h.Domains) > MaxDomainTags {
		return ErrTooManyDomainTags
	}
	switch h.Status {
	case HabitStatusActive, HabitStatusPaused, HabitStatusCompleted:
	default:
		return ErrInvalidHabitStatus
	}
	return nil
}

func (h *Habit) IsActive() bool {
	return h.Status == HabitStatusActive
}

// TransitionTo applies a status change. Only active<->paused moves back and
// forth; completed is terminal.
func (h *Habit) TransitionTo(next HabitStatus) error {
	switch next {
	case HabitStatusActive, HabitStatusPaused, HabitStatusCompleted:
	default:
		return ErrInvalidHabitStatus
	}

	if h.Status == next {
		return nil
	}
	if h.Status == HabitStatusCompleted {
		return ErrInvalidTransition
	}

	h.Status = next
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func normalizeDomains(domains []string) []string {
	seen := make(map[string]bool, len(domains))
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
