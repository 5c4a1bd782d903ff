package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"litrecord/internal/domain"
	"litrecord/internal/port"
)

// CreateCaseInput is the DTO for opening a case.
type CreateCaseInput struct {
	Name string
	Mode domain.HandlingMode
}

// CaseService defines the case lifecycle contract.
type CaseService interface {
	Create(ctx context.Context, input *CreateCaseInput) (*domain.Case, error)
	GetByID(ctx context.Context, caseID uuid.UUID) (*domain.Case, error)
	List(ctx context.Context, status domain.CaseStatus, offset, limit int) ([]domain.Case, int, error)
	GetStatus(ctx context.Context, caseID uuid.UUID) (domain.CaseStatus, error)
	SetStatus(ctx context.Context, caseID uuid.UUID, status domain.CaseStatus) (*domain.Case, error)
	Toggle(ctx context.Context, caseID uuid.UUID) (*domain.Case, error)
	ListDocuments(ctx context.Context, caseID uuid.UUID) ([]domain.Document, error)
}

type caseService struct {
	caseRepo port.CaseRepository
	docRepo  port.DocumentRepository
}

// NewCaseService creates a new CaseService.
func NewCaseService(caseRepo port.CaseRepository, docRepo port.DocumentRepository) CaseService {
	return &caseService{caseRepo: caseRepo, docRepo: docRepo}
}

func (s *caseService) Create(ctx context.Context, input *CreateCaseInput) (*domain.Case, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrEmptyCaseName
	}
	mode := input.Mode
	if mode == "" {
		mode = domain.ModeHybrid
	}
	if !mode.Valid() {
		return nil, domain.ErrInvalidMode
	}

	c := &domain.Case{
		ID:           uuid.New(),
		Name:         name,
		Status:       domain.CaseStatusActive,
		Mode:         mode,
		NextPosition: 1,
	}
	if err := s.caseRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating case: %w", err)
	}
	log.Printf("caseService.Create: created case %s (%q, mode=%s)", c.ID, c.Name, c.Mode)
	return c, nil
}

func (s *caseService) GetByID(ctx context.Context, caseID uuid.UUID) (*domain.Case, error) {
	return s.caseRepo.GetByID(ctx, caseID)
}

func (s *caseService) List(ctx context.Context, status domain.CaseStatus, offset, limit int) ([]domain.Case, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, domain.ErrInvalidStatus
	}
	return s.caseRepo.List(ctx, status, offset, limit)
}

func (s *caseService) GetStatus(ctx context.Context, caseID uuid.UUID) (domain.CaseStatus, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return "", err
	}
	return c.Status, nil
}

func (s *caseService) SetStatus(ctx context.Context, caseID uuid.UUID, status domain.CaseStatus) (*domain.Case, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == status {
		return c, nil
	}
	if err := s.caseRepo.UpdateStatus(ctx, caseID, status); err != nil {
		return nil, err
	}
	log.Printf("caseService.SetStatus: case %s %s -> %s", caseID, c.Status, status)
	return s.caseRepo.GetByID(ctx, caseID)
}

func (s *caseService) Toggle(ctx context.Context, caseID uuid.UUID) (*domain.Case, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return s.SetStatus(ctx, caseID, c.Status.Toggled())
}

func (s *caseService) ListDocuments(ctx context.Context, caseID uuid.UUID) ([]domain.Document, error) {
	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	return s.docRepo.ListByCase(ctx, caseID)
}
