package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
)

var _ domain.ProofRepository = (*PostgresProofRepository)(nil)

const proofColumns = `id, habit_id, user_id, message_id, proof_date, unit, note,
	attachment_url, is_minimal_dose, is_cheat_day, created_at`

// PostgresProofRepository is append-only. The partial unique index on
// message_id makes redelivered messages fail with domain.ErrProofExists.
type PostgresProofRepository struct {
	db *sqlx.DB
}

func NewPostgresProofRepository(db *sqlx.DB) *PostgresProofRepository {
	return &PostgresProofRepository{db: db}
}

func (r *PostgresProofRepository) Create(ctx context.Context, p *domain.Proof) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO proofs (` + proofColumns + `)
		VALUES (
			:id, :habit_id, :user_id, :message_id, :proof_date, :unit, :note,
			:attachment_url, :is_minimal_dose, :is_cheat_day, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, newProofRow(p)); err != nil {
		switch sqlState(err) {
		case codeUniqueViolation:
			return domain.ErrProofExists
		case codeForeignKeyViolation:
			return domain.ErrHabitNotFound
		}
		return fmt.Errorf("failed to insert proof: %w", err)
	}

	return nil
}

func (r *PostgresProofRepository) GetByMessageID(ctx context.Context, messageID string) (*domain.Proof, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + proofColumns + ` FROM proofs WHERE message_id = $1`

	var row proofRow
	if err := r.db.GetContext(ctx, &row, query, messageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProofNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return row.toDomain(), nil
}

func (r *PostgresProofRepository) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Proof, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT ` + proofColumns + ` FROM proofs
		WHERE habit_id = $1
		ORDER BY proof_date ASC, created_at ASC`

	var rows []proofRow
	if err := r.db.SelectContext(ctx, &rows, query, habitID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	proofs := make([]*domain.Proof, 0, len(rows))
	for _, row := range rows {
		proofs = append(proofs, row.toDomain())
	}

	return proofs, nil
}
