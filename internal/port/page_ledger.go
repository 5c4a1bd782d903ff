package port

import (
	"context"

	"github.com/google/uuid"

	"litrecord/internal/domain"
)

// PageLedger is the ordered record of every page in every case.
//
// WithinCase runs fn as the case's critical section: no other WithinCase call
// for the same case runs concurrently, and everything fn writes through tx is
// committed together or not at all. Calls for different cases do not block
// each other.
type PageLedger interface {
	WithinCase(ctx context.Context, caseID uuid.UUID, fn func(tx LedgerTx) error) error
	GetPage(ctx context.Context, pageID uuid.UUID) (*domain.Page, error)
	ListByCategory(ctx context.Context, caseID uuid.UUID, category domain.Category) ([]domain.Page, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Page, error)
}

// LedgerTx is the view of one case inside its critical section.
type LedgerTx interface {
	// Case returns the locked case row.
	Case() *domain.Case
	// RecordedFingerprints returns which of fps already belong to pages of the case.
	RecordedFingerprints(ctx context.Context, fps []string) ([]string, error)
	InsertDocument(ctx context.Context, doc *domain.Document) error
	// AppendPage assigns page.ID when unset and page.DisplayPosition as the
	// next position of the case, then persists the row.
	AppendPage(ctx context.Context, page *domain.Page) error
	GetPage(ctx context.Context, pageID uuid.UUID) (*domain.Page, error)
	ListPages(ctx context.Context) ([]domain.Page, error)
	UpdateCategory(ctx context.Context, pageID uuid.UUID, category domain.Category, manualOverride bool) error
	// MovePage relocates a page to newPosition, shifting the pages between
	// its old and new position by one so positions stay contiguous.
	MovePage(ctx context.Context, pageID uuid.UUID, newPosition int) error
}
