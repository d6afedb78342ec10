package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrUserNameEmpty    = errors.New("user name cannot be empty")
	ErrInvalidTimezone  = errors.New("invalid timezone (must be an IANA name)")
	ErrUserNotActive    = errors.New("user is paused")
	ErrInvalidBatchDate = errors.New("batch start is required")
)

type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusPaused UserStatus = "paused"
)

type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Timezone    string     `json:"timezone"`
	BatchStart  time.Time  `json:"batch_start"`
	TrustCount  int        `json:"trust_count"`
	Status      UserStatus `json:"status"`
	PauseReason string     `json:"pause_reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewUser(id, name, timezone string, batchStart time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrUserNameEmpty
	}

	timezone = strings.TrimSpace(timezone)
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, ErrInvalidTimezone
	}

	if batchStart.IsZero() {
		return nil, ErrInvalidBatchDate
	}

	now := time.Now().UTC()
	return &User{
		ID:         id,
		Name:       name,
		Timezone:   timezone,
		BatchStart: batchStart.UTC(),
		Status:     UserStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Location resolves the user's timezone, falling back to UTC for records
// written before the timezone was validated.
func (u *User) Location() *time.Location {
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

func (u *User) Pause(reason string) {
	if u.Status == UserStatusPaused {
		return
	}
	u.Status = UserStatusPaused
	u.PauseReason = strings.TrimSpace(reason)
	u.UpdatedAt = time.Now().UTC()
}

func (u *User) Resume() {
	if u.Status == UserStatusActive {
		return
	}
	u.Status = UserStatusActive
	u.PauseReason = ""
	u.UpdatedAt = time.Now().UTC()
}

// AdjustTrust moves the trust counter by delta without letting it go negative.
func (u *User) AdjustTrust(delta int) {
	u.TrustCount += delta
	if u.TrustCount < 0 {
		u.TrustCount = 0
	}
	u.UpdatedAt = time.Now().UTC()
}
