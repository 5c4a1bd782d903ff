package port

import (
	"context"

	"github.com/google/uuid"

	"litrecord/internal/domain"
)

// DocumentRepository defines read access to document provenance records.
// Documents are written only inside a ledger transaction.
type DocumentRepository interface {
	GetByID(ctx context.Context, caseID, docID uuid.UUID) (*domain.Document, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Document, error)
}
