package port

import (
	"context"

	"github.com/google/uuid"

	"litrecord/internal/domain"
)

// CaseRepository defines the contract for case persistence.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, caseID uuid.UUID) (*domain.Case, error)
	List(ctx context.Context, status domain.CaseStatus, offset, limit int) ([]domain.Case, int, error)
	UpdateStatus(ctx context.Context, caseID uuid.UUID, status domain.CaseStatus) error
}
