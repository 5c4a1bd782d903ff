package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"litrecord/internal/dedup"
	"litrecord/internal/domain"
	"litrecord/internal/fingerprint"
	"litrecord/internal/metrics"
	"litrecord/internal/port"
	"litrecord/internal/resilience"
)

// IngestConfig holds ingestion limits.
type IngestConfig struct {
	MaxFileSize int64
	Concurrency int
}

// IngestFileInput is one file of a batch upload.
type IngestFileInput struct {
	Filename string
	Content  []byte
}

// IngestFileResult reports the outcome of one file of a batch upload.
type IngestFileResult struct {
	Filename string               `json:"filename"`
	Success  bool                 `json:"success"`
	Result   *domain.IngestResult `json:"result,omitempty"`
	Error    string               `json:"error,omitempty"`
	err      error
}

// FailedFileResult reports a file that was rejected before ingestion.
func FailedFileResult(filename string, err error) IngestFileResult {
	return IngestFileResult{Filename: filename, Error: err.Error(), err: err}
}

// Err returns the underlying error of a failed file.
func (r IngestFileResult) Err() error { return r.err }

// IngestService defines the document ingestion contract.
type IngestService interface {
	Ingest(ctx context.Context, caseID uuid.UUID, filename string, content []byte) (*domain.IngestResult, error)
	IngestBatch(ctx context.Context, caseID uuid.UUID, files []IngestFileInput) ([]IngestFileResult, error)
}

type ingestService struct {
	caseRepo   port.CaseRepository
	ledger     port.PageLedger
	splitter   port.DocumentSplitter
	classifier port.PageClassifier
	executor   *resilience.Executor
	metrics    *metrics.Registry
	cfg        IngestConfig
}

// NewIngestService creates a new IngestService. metrics may be nil.
func NewIngestService(
	caseRepo port.CaseRepository,
	ledger port.PageLedger,
	splitter port.DocumentSplitter,
	classifier port.PageClassifier,
	executor *resilience.Executor,
	m *metrics.Registry,
	cfg IngestConfig,
) IngestService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.Config{RetryMaxAttempts: 1})
	}
	return &ingestService{
		caseRepo:   caseRepo,
		ledger:     ledger,
		splitter:   splitter,
		classifier: classifier,
		executor:   executor,
		metrics:    m,
		cfg:        cfg,
	}
}

func (s *ingestService) Ingest(ctx context.Context, caseID uuid.UUID, filename string, content []byte) (*domain.IngestResult, error) {
	return s.ingestInTurn(ctx, caseID, filename, content, nil)
}

// ingestInTurn ingests one file. When turn is non-nil the ledger commit waits
// until turn is closed.
func (s *ingestService) ingestInTurn(ctx context.Context, caseID uuid.UUID, filename string, content []byte, turn <-chan struct{}) (*domain.IngestResult, error) {
	start := time.Now()
	result, categories, err := s.ingest(ctx, caseID, filename, content, turn)
	if err != nil {
		s.metrics.RecordIngest(outcomeOf(err), 0, time.Since(start))
		log.Printf("ingestService.Ingest: case %s file %q failed: %v", caseID, filename, err)
		return nil, err
	}

	s.metrics.RecordIngest(metrics.OutcomeSuccess, result.PagesCreated, time.Since(start))
	for _, c := range categories {
		s.metrics.RecordPage(string(c))
	}
	log.Printf("ingestService.Ingest: case %s file %q -> document %s (%d pages, %d duplicates)",
		caseID, filename, result.DocumentID, result.PagesCreated, result.DuplicatesFound)
	return result, nil
}

func (s *ingestService) ingest(ctx context.Context, caseID uuid.UUID, filename string, content []byte, turn <-chan struct{}) (*domain.IngestResult, []domain.Category, error) {
	if len(content) == 0 {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrMalformedDocument, domain.ErrEmptyDocument)
	}
	if s.cfg.MaxFileSize > 0 && int64(len(content)) > s.cfg.MaxFileSize {
		return nil, nil, domain.ErrFileTooLarge
	}
	if err := s.requireActive(ctx, caseID); err != nil {
		return nil, nil, err
	}

	// The document id is fixed before the first attempt so retries reuse
	// the same artifact keys.
	docID := uuid.New()
	var (
		result     *domain.IngestResult
		categories []domain.Category
	)
	err := s.executor.Execute(ctx, "ingest", func(ctx context.Context) error {
		var err error
		result, categories, err = s.attempt(ctx, caseID, docID, filename, content, turn)
		return err
	}, resilience.StorageClassifier)
	if err != nil {
		return nil, nil, err
	}
	return result, categories, nil
}

// attempt runs the pipeline once: split and hash outside the case lock, then
// dedup, classify and record inside it.
func (s *ingestService) attempt(ctx context.Context, caseID, docID uuid.UUID, filename string, content []byte, turn <-chan struct{}) (*domain.IngestResult, []domain.Category, error) {
	units, err := s.splitter.Split(ctx, port.SplitInput{CaseID: caseID, DocumentID: docID, Content: content})
	if err != nil {
		return nil, nil, err
	}

	if turn != nil {
		select {
		case <-turn:
		case <-ctx.Done():
			s.splitter.Discard(context.WithoutCancel(ctx), units)
			return nil, nil, ctx.Err()
		}
	}

	fps := make([]string, len(units))
	for i, u := range units {
		fps[i] = fingerprint.Compute(u.Text)
	}

	result := &domain.IngestResult{DocumentID: docID, Filename: filename}
	var categories []domain.Category

	err = s.ledger.WithinCase(ctx, caseID, func(tx port.LedgerTx) error {
		result.PagesCreated, result.DuplicatesFound = 0, 0
		categories = categories[:0]

		if tx.Case().Status == domain.CaseStatusArchived {
			return domain.ErrCaseArchived
		}
		recorded, err := tx.RecordedFingerprints(ctx, fps)
		if err != nil {
			return err
		}
		seen := dedup.NewSet(caseID, recorded)

		doc := &domain.Document{ID: docID, Filename: filename, PageCount: len(units)}
		if err := tx.InsertDocument(ctx, doc); err != nil {
			return err
		}

		for i, u := range units {
			category := domain.CategoryDuplicate
			if seen.Observe(fps[i]) {
				result.DuplicatesFound++
			} else {
				category = s.classifier.Classify(u.Text)
			}
			page := &domain.Page{
				DocumentID:  docID,
				PageIndex:   u.Index,
				Fingerprint: fps[i],
				Category:    category,
				ArtifactKey: u.ArtifactKey,
				Text:        u.Text,
			}
			if err := tx.AppendPage(ctx, page); err != nil {
				return err
			}
			categories = append(categories, category)
			result.PagesCreated++
		}
		return nil
	})
	if err != nil {
		s.splitter.Discard(context.WithoutCancel(ctx), units)
		return nil, nil, asStorageFailure(err)
	}
	return result, categories, nil
}

func (s *ingestService) IngestBatch(ctx context.Context, caseID uuid.UUID, files []IngestFileInput) ([]IngestFileResult, error) {
	if err := s.requireActive(ctx, caseID); err != nil {
		return nil, err
	}

	log.Printf("ingestService.IngestBatch: ingesting %d files into case %s (concurrency=%d)",
		len(files), caseID, s.cfg.Concurrency)

	// Files are split in parallel but commit to the ledger in upload order:
	// file i+1 commits only after file i has committed or failed.
	turns := make([]chan struct{}, len(files)+1)
	for i := range turns {
		turns[i] = make(chan struct{})
	}
	close(turns[0])

	results := make([]IngestFileResult, len(files))
	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i := range files {
		f := files[i]
		g.Go(func() error {
			defer func() {
				<-turns[i]
				close(turns[i+1])
			}()
			out, err := s.ingestInTurn(ctx, caseID, f.Filename, f.Content, turns[i])
			if err != nil {
				results[i] = FailedFileResult(f.Filename, err)
				return nil
			}
			results[i] = IngestFileResult{Filename: f.Filename, Success: true, Result: out}
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func (s *ingestService) requireActive(ctx context.Context, caseID uuid.UUID) error {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	if c.Status == domain.CaseStatusArchived {
		return domain.ErrCaseArchived
	}
	return nil
}

// asStorageFailure marks ledger write failures as retryable storage failures.
// Domain rejections and cancellation pass through unchanged.
func asStorageFailure(err error) error {
	switch {
	case errors.Is(err, domain.ErrCaseArchived),
		errors.Is(err, domain.ErrCaseNotFound),
		errors.Is(err, domain.ErrStorageFailure),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageFailure, err)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedDocument):
		return metrics.OutcomeMalformed
	case errors.Is(err, domain.ErrStorageFailure):
		return metrics.OutcomeStorage
	case errors.Is(err, domain.ErrCaseArchived),
		errors.Is(err, domain.ErrCaseNotFound),
		errors.Is(err, domain.ErrFileTooLarge):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
