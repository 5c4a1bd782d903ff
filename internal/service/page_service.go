package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"litrecord/internal/domain"
	"litrecord/internal/metrics"
	"litrecord/internal/port"
)

// PageService defines the page ledger operations exposed to callers.
type PageService interface {
	GetPage(ctx context.Context, pageID uuid.UUID) (*domain.Page, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Page, error)
	ListByCategory(ctx context.Context, caseID uuid.UUID, category string) ([]domain.Page, error)
	SetCategory(ctx context.Context, pageID uuid.UUID, category string) (*domain.Page, error)
	Reorder(ctx context.Context, caseID, pageID uuid.UUID, newPosition int) (*domain.Page, error)
	Reclassify(ctx context.Context, caseID uuid.UUID) (int, error)
	Content(ctx context.Context, pageID uuid.UUID) ([]byte, error)
	ContentURL(ctx context.Context, pageID uuid.UUID, expirySeconds int64) (string, error)
}

type pageService struct {
	caseRepo   port.CaseRepository
	ledger     port.PageLedger
	storage    port.ObjectStorage
	classifier port.PageClassifier
	registry   *domain.CategoryRegistry
	metrics    *metrics.Registry
}

// NewPageService creates a new PageService. metrics may be nil.
func NewPageService(
	caseRepo port.CaseRepository,
	ledger port.PageLedger,
	storage port.ObjectStorage,
	classifier port.PageClassifier,
	registry *domain.CategoryRegistry,
	m *metrics.Registry,
) PageService {
	return &pageService{
		caseRepo:   caseRepo,
		ledger:     ledger,
		storage:    storage,
		classifier: classifier,
		registry:   registry,
		metrics:    m,
	}
}

func (s *pageService) GetPage(ctx context.Context, pageID uuid.UUID) (*domain.Page, error) {
	return s.ledger.GetPage(ctx, pageID)
}

func (s *pageService) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Page, error) {
	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	return s.ledger.ListByCase(ctx, caseID)
}

func (s *pageService) ListByCategory(ctx context.Context, caseID uuid.UUID, category string) ([]domain.Page, error) {
	if category == "" {
		return s.ListByCase(ctx, caseID)
	}
	c, err := s.registry.Parse(category)
	if err != nil {
		return nil, err
	}
	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	return s.ledger.ListByCategory(ctx, caseID, c)
}

func (s *pageService) SetCategory(ctx context.Context, pageID uuid.UUID, category string) (*domain.Page, error) {
	c, err := s.registry.Parse(category)
	if err != nil {
		return nil, err
	}
	page, err := s.ledger.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	var updated *domain.Page
	err = s.ledger.WithinCase(ctx, page.CaseID, func(tx port.LedgerTx) error {
		if err := tx.UpdateCategory(ctx, pageID, c, true); err != nil {
			return err
		}
		updated, err = tx.GetPage(ctx, pageID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOverride()
	log.Printf("pageService.SetCategory: page %s of case %s %s -> %s (manual)",
		pageID, page.CaseID, page.Category, c)
	return updated, nil
}

func (s *pageService) Reorder(ctx context.Context, caseID, pageID uuid.UUID, newPosition int) (*domain.Page, error) {
	page, err := s.ledger.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page.CaseID != caseID {
		return nil, fmt.Errorf("%w: page %s does not belong to case %s", domain.ErrInvalidTransition, pageID, caseID)
	}

	var moved *domain.Page
	err = s.ledger.WithinCase(ctx, caseID, func(tx port.LedgerTx) error {
		if err := tx.MovePage(ctx, pageID, newPosition); err != nil {
			return err
		}
		moved, err = tx.GetPage(ctx, pageID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("pageService.Reorder: page %s of case %s moved %d -> %d",
		pageID, caseID, page.DisplayPosition, moved.DisplayPosition)
	return moved, nil
}

func (s *pageService) Reclassify(ctx context.Context, caseID uuid.UUID) (int, error) {
	changed := 0
	err := s.ledger.WithinCase(ctx, caseID, func(tx port.LedgerTx) error {
		changed = 0
		pages, err := tx.ListPages(ctx)
		if err != nil {
			return err
		}
		for i := range pages {
			p := &pages[i]
			if p.ManualOverride || p.Category == domain.CategoryDuplicate {
				continue
			}
			next := s.classifier.Classify(p.Text)
			if next == p.Category {
				continue
			}
			if err := tx.UpdateCategory(ctx, p.ID, next, false); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordReclassified(changed)
	log.Printf("pageService.Reclassify: case %s, %d pages changed", caseID, changed)
	return changed, nil
}

func (s *pageService) Content(ctx context.Context, pageID uuid.UUID) ([]byte, error) {
	page, err := s.ledger.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	data, err := s.storage.Download(ctx, page.ArtifactKey)
	if err != nil {
		return nil, fmt.Errorf("downloading page %s: %w", pageID, err)
	}
	return data, nil
}

func (s *pageService) ContentURL(ctx context.Context, pageID uuid.UUID, expirySeconds int64) (string, error) {
	page, err := s.ledger.GetPage(ctx, pageID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, page.ArtifactKey, expirySeconds)
}
