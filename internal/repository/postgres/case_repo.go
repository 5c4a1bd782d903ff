package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"litrecord/internal/domain"
	"litrecord/internal/port"
)

type caseRepo struct {
	db *sqlx.DB
}

// NewCaseRepo creates a new PostgreSQL-backed CaseRepository.
func NewCaseRepo(db *sqlx.DB) port.CaseRepository {
	return &caseRepo{db: db}
}

func (r *caseRepo) Create(ctx context.Context, c *domain.Case) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.NextPosition < 1 {
		c.NextPosition = 1
	}

	query := `INSERT INTO cases (id, name, status, mode, next_position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Status, c.Mode, c.NextPosition, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("caseRepo.Create: %w", err)
	}
	return nil
}

func (r *caseRepo) GetByID(ctx context.Context, caseID uuid.UUID) (*domain.Case, error) {
	var c domain.Case
	err := r.db.GetContext(ctx, &c, "SELECT * FROM cases WHERE id = $1", caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, fmt.Errorf("caseRepo.GetByID: %w", err)
	}
	return &c, nil
}

func (r *caseRepo) List(ctx context.Context, status domain.CaseStatus, offset, limit int) ([]domain.Case, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM cases WHERE ($1 = '' OR status = $1)", string(status))
	if err != nil {
		return nil, 0, fmt.Errorf("caseRepo.List count: %w", err)
	}

	var cases []domain.Case
	err = r.db.SelectContext(ctx, &cases,
		`SELECT * FROM cases WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		string(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("caseRepo.List: %w", err)
	}
	return cases, total, nil
}

func (r *caseRepo) UpdateStatus(ctx context.Context, caseID uuid.UUID, status domain.CaseStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE cases SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), caseID)
	if err != nil {
		return fmt.Errorf("caseRepo.UpdateStatus: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("caseRepo.UpdateStatus: rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrCaseNotFound
	}
	return nil
}
