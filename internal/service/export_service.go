package service

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"litrecord/internal/csvexport"
	"litrecord/internal/domain"
	"litrecord/internal/export"
	"litrecord/internal/port"
)

// Media types of exported chronologies.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExportOutput is a rendered chronology.
type ExportOutput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders case chronologies.
type ExportService interface {
	Export(ctx context.Context, caseID uuid.UUID) (*ExportOutput, error)
	ExportCSV(ctx context.Context, caseID uuid.UUID) (*ExportOutput, error)
}

type exportService struct {
	caseRepo port.CaseRepository
	docRepo  port.DocumentRepository
	ledger   port.PageLedger
}

// NewExportService creates a new ExportService.
func NewExportService(caseRepo port.CaseRepository, docRepo port.DocumentRepository, ledger port.PageLedger) ExportService {
	return &exportService{caseRepo: caseRepo, docRepo: docRepo, ledger: ledger}
}

// Export renders the chronology workbook. The case's handling mode decides
// the sheet layout.
func (s *exportService) Export(ctx context.Context, caseID uuid.UUID) (*ExportOutput, error) {
	c, docs, pages, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, c, docs, pages); err != nil {
		return nil, err
	}

	name := strings.Trim(unsafeFilename.ReplaceAllString(c.Name, "_"), "_")
	if name == "" {
		name = c.ID.String()
	}
	return &ExportOutput{
		Filename:    name + "-chronology.xlsx",
		ContentType: ContentTypeXLSX,
		Content:     buf.Bytes(),
	}, nil
}

// ExportCSV renders every page of the case as one CSV row in display order.
func (s *exportService) ExportCSV(ctx context.Context, caseID uuid.UUID) (*ExportOutput, error) {
	c, docs, pages, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(&buf, docs)
	if err := w.WriteHeader(); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	if err := w.WritePages(pages); err != nil {
		return nil, fmt.Errorf("writing csv rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return &ExportOutput{
		Filename:    csvexport.BuildFilename(c.Name, time.Now()),
		ContentType: ContentTypeCSV,
		Content:     buf.Bytes(),
	}, nil
}

func (s *exportService) load(ctx context.Context, caseID uuid.UUID) (*domain.Case, []domain.Document, []domain.Page, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, nil, nil, err
	}
	docs, err := s.docRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing documents: %w", err)
	}
	pages, err := s.ledger.ListByCase(ctx, caseID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing pages: %w", err)
	}
	return c, docs, pages, nil
}
