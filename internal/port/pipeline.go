package port

import (
	"context"

	"github.com/google/uuid"

	"litrecord/internal/domain"
)

// SplitInput identifies the document being split and carries its bytes.
type SplitInput struct {
	CaseID     uuid.UUID
	DocumentID uuid.UUID
	Content    []byte
}

// PageUnit is one physical page produced by a split. The page's single-page
// PDF has already been persisted under ArtifactKey.
type PageUnit struct {
	Index       int
	Text        string
	ArtifactKey string
}

// DocumentSplitter decomposes a document into pages. It returns every page or
// an error; never a partial result.
type DocumentSplitter interface {
	Split(ctx context.Context, input SplitInput) ([]PageUnit, error)
	// Discard removes artifacts written for a document whose ingestion failed.
	Discard(ctx context.Context, units []PageUnit)
}

// PageClassifier assigns a category to page text.
type PageClassifier interface {
	Classify(text string) domain.Category
}
