package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConflictingFlags   = errors.New("a proof cannot be both minimal dose and cheat day")
	ErrProofOutOfRange    = errors.New("proof date is outside the user's cycle window")
	ErrInvalidProofDate   = errors.New("proof date must be YYYY-MM-DD")
	ErrProofDateRequired  = errors.New("proof date is required")
	ErrProofNoteTooLong   = errors.New("proof note is too long (max 500 chars)")
	ErrProofUnitTooLong   = errors.New("proof unit is too long (max 100 chars)")
	ErrProofMissingHabit  = errors.New("proof habit id is required")
	ErrProofMissingUserID = errors.New("proof user id is required")
)

const DefaultProofUnit = "1 session"

// Proof is an append-only record that a habit was performed on a given day.
// Date is a civil date stored as midnight UTC.
type Proof struct {
	ID            string    `json:"id"`
	HabitID       string    `json:"habit_id"`
	UserID        string    `json:"user_id"`
	MessageID     string    `json:"message_id,omitempty"`
	Date          time.Time `json:"date"`
	Unit          string    `json:"unit"`
	Note          string    `json:"note,omitempty"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	IsMinimalDose bool      `json:"is_minimal_dose"`
	IsCheatDay    bool      `json:"is_cheat_day"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewProof(habitID, userID string, date time.Time) *Proof {
	return &Proof{
		ID:        uuid.NewString(),
		HabitID:   habitID,
		UserID:    userID,
		Date:      CivilDay(date, time.UTC),
		Unit:      DefaultProofUnit,
		CreatedAt: time.Now().UTC(),
	}
}

func (p *Proof) Validate() error {
	if strings.TrimSpace(p.HabitID) == "" {
		return ErrProofMissingHabit
	}
	if strings.TrimSpace(p.UserID) == "" {
		return ErrProofMissingUserID
	}
	if p.Date.IsZero() {
		return ErrProofDateRequired
	}
	if p.IsMinimalDose && p.IsCheatDay {
		return ErrConflictingFlags
	}
	if len([]rune(p.Note)) > MaxTextLen {
		return ErrProofNoteTooLong
	}
	if len([]rune(p.Unit)) > MaxNameLen {
		return ErrProofUnitTooLong
	}
	return nil
}

// WithinCycle reports an error when the proof date falls outside
// [batchStart, today] of the given cycle.
func (p *Proof) WithinCycle(cc CycleContext) error {
	if p.Date.Before(cc.BatchStart) || p.Date.After(cc.Today) {
		return ErrProofOutOfRange
	}
	return nil
}

// ClassifiedProof is a candidate produced from a chat message. It becomes a
// Proof only once persisted.
type ClassifiedProof struct {
	HabitID       string    `json:"habit_id"`
	UserID        string    `json:"user_id"`
	MessageID     string    `json:"message_id"`
	Date          time.Time `json:"date"`
	Unit          string    `json:"unit"`
	IsMinimalDose bool      `json:"is_minimal_dose"`
	IsCheatDay    bool      `json:"is_cheat_day"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	RawText       string    `json:"raw_text"`
	Confidence    float64   `json:"confidence"`
}

func (c ClassifiedProof) ToProof() *Proof {
	p := NewProof(c.HabitID, c.UserID, c.Date)
	p.MessageID = c.MessageID
	if c.Unit != "" {
		p.Unit = c.Unit
	}
	p.Note = c.RawText
	if len([]rune(p.Note)) > MaxTextLen {
		p.Note = string([]rune(p.Note)[:MaxTextLen])
	}
	p.AttachmentURL = c.AttachmentURL
	p.IsMinimalDose = c.IsMinimalDose
	p.IsCheatDay = c.IsCheatDay
	return p
}
