package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
)

const queryTimeout = 3 * time.Second

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// sqlState extracts the SQLSTATE from either driver's error type.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

type userRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Timezone    string    `db:"timezone"`
	BatchStart  time.Time `db:"batch_start_at"`
	TrustCount  int       `db:"trust_count"`
	Status      string    `db:"status"`
	PauseReason string    `db:"pause_reason"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func newUserRow(u *domain.User) userRow {
	return userRow{
		ID:          u.ID,
		Name:        u.Name,
		Timezone:    u.Timezone,
		BatchStart:  u.BatchStart,
		TrustCount:  u.TrustCount,
		Status:      string(u.Status),
		PauseReason: u.PauseReason,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:          r.ID,
		Name:        r.Name,
		Timezone:    r.Timezone,
		BatchStart:  r.BatchStart.UTC(),
		TrustCount:  r.TrustCount,
		Status:      domain.UserStatus(r.Status),
		PauseReason: r.PauseReason,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type habitRow struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	Name         string         `db:"name"`
	DomainTags   pq.StringArray `db:"domain_tags"`
	WeeklyTarget int            `db:"weekly_target"`
	Context      string         `db:"context"`
	Difficulty   string         `db:"difficulty"`
	SmartGoal    string         `db:"smart_goal"`
	Why          string         `db:"why"`
	MinimalDose  string         `db:"minimal_dose"`
	Status       string         `db:"status"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func newHabitRow(h *domain.Habit) habitRow {
	tags := pq.StringArray(h.Domains)
	if tags == nil {
		tags = pq.StringArray{}
	}
	return habitRow{
		ID:           h.ID,
		UserID:       h.UserID,
		Name:         h.Name,
		DomainTags:   tags,
		WeeklyTarget: h.WeeklyTarget,
		Context:      h.Context,
		Difficulty:   h.Difficulty,
		SmartGoal:    h.SmartGoal,
		Why:          h.Why,
		MinimalDose:  h.MinimalDose,
		Status:       string(h.Status),
		CreatedAt:    h.CreatedAt,
		UpdatedAt:    h.UpdatedAt,
	}
}

func (r habitRow) toDomain() *domain.Habit {
	domains := []string(r.DomainTags)
	if domains == nil {
		domains = []string{}
	}
	return &domain.Habit{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Domains:      domains,
		WeeklyTarget: r.WeeklyTarget,
		Context:      r.Context,
		Difficulty:   r.Difficulty,
		SmartGoal:    r.SmartGoal,
		Why:          r.Why,
		MinimalDose:  r.MinimalDose,
		Status:       domain.HabitStatus(r.Status),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type proofRow struct {
	ID            string         `db:"id"`
	HabitID       string         `db:"habit_id"`
	UserID        string         `db:"user_id"`
	MessageID     sql.NullString `db:"message_id"`
	Date          time.Time      `db:"proof_date"`
	Unit          string         `db:"unit"`
	Note          string         `db:"note"`
	AttachmentURL string         `db:"attachment_url"`
	IsMinimalDose bool           `db:"is_minimal_dose"`
	IsCheatDay    bool           `db:"is_cheat_day"`
	CreatedAt     time.Time      `db:"created_at"`
}

func newProofRow(p *domain.Proof) proofRow {
	return proofRow{
		ID:            p.ID,
		HabitID:       p.HabitID,
		UserID:        p.UserID,
		MessageID:     sql.NullString{String: p.MessageID, Valid: p.MessageID != ""},
		Date:          p.Date,
		Unit:          p.Unit,
		Note:          p.Note,
		AttachmentURL: p.AttachmentURL,
		IsMinimalDose: p.IsMinimalDose,
		IsCheatDay:    p.IsCheatDay,
		CreatedAt:     p.CreatedAt,
	}
}

func (r proofRow) toDomain() *domain.Proof {
	return &domain.Proof{
		ID:            r.ID,
		HabitID:       r.HabitID,
		UserID:        r.UserID,
		MessageID:     r.MessageID.String,
		Date:          domain.CivilDay(r.Date, time.UTC),
		Unit:          r.Unit,
		Note:          r.Note,
		AttachmentURL: r.AttachmentURL,
		IsMinimalDose: r.IsMinimalDose,
		IsCheatDay:    r.IsCheatDay,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}
