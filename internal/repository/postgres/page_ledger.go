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

// fingerprintBatch bounds the size of one IN (...) list.
const fingerprintBatch = 1000

type pageLedger struct {
	db *sqlx.DB
}

// NewPageLedger creates a PostgreSQL-backed PageLedger. The critical section
// of a case is a transaction holding the case row lock.
func NewPageLedger(db *sqlx.DB) port.PageLedger {
	return &pageLedger{db: db}
}

func (l *pageLedger) WithinCase(ctx context.Context, caseID uuid.UUID, fn func(tx port.LedgerTx) error) (err error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pageLedger.WithinCase begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	var c domain.Case
	if err = tx.GetContext(ctx, &c, "SELECT * FROM cases WHERE id = $1 FOR UPDATE", caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrCaseNotFound
		}
		return fmt.Errorf("pageLedger.WithinCase lock: %w", err)
	}

	ltx := &ledgerTx{tx: tx, c: &c, startPosition: c.NextPosition}
	if err = fn(ltx); err != nil {
		return err
	}

	if c.NextPosition != ltx.startPosition {
		_, err = tx.ExecContext(ctx,
			"UPDATE cases SET next_position = $1, updated_at = $2 WHERE id = $3",
			c.NextPosition, time.Now().UTC(), c.ID)
		if err != nil {
			return fmt.Errorf("pageLedger.WithinCase advance: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("pageLedger.WithinCase commit: %w", err)
	}
	return nil
}

func (l *pageLedger) GetPage(ctx context.Context, pageID uuid.UUID) (*domain.Page, error) {
	var p domain.Page
	err := l.db.GetContext(ctx, &p, "SELECT * FROM pages WHERE id = $1", pageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPageNotFound
		}
		return nil, fmt.Errorf("pageLedger.GetPage: %w", err)
	}
	return &p, nil
}

func (l *pageLedger) ListByCategory(ctx context.Context, caseID uuid.UUID, category domain.Category) ([]domain.Page, error) {
	var pages []domain.Page
	err := l.db.SelectContext(ctx, &pages,
		`SELECT * FROM pages WHERE case_id = $1 AND category = $2
		 ORDER BY display_position`,
		caseID, category)
	if err != nil {
		return nil, fmt.Errorf("pageLedger.ListByCategory: %w", err)
	}
	return pages, nil
}

func (l *pageLedger) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Page, error) {
	var pages []domain.Page
	err := l.db.SelectContext(ctx, &pages,
		"SELECT * FROM pages WHERE case_id = $1 ORDER BY display_position", caseID)
	if err != nil {
		return nil, fmt.Errorf("pageLedger.ListByCase: %w", err)
	}
	return pages, nil
}

type ledgerTx struct {
	tx            *sqlx.Tx
	c             *domain.Case
	startPosition int
}

func (t *ledgerTx) Case() *domain.Case { return t.c }

func (t *ledgerTx) RecordedFingerprints(ctx context.Context, fps []string) ([]string, error) {
	unique := make([]string, 0, len(fps))
	seen := make(map[string]struct{}, len(fps))
	for _, fp := range fps {
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}
		unique = append(unique, fp)
	}

	var recorded []string
	for start := 0; start < len(unique); start += fingerprintBatch {
		end := min(start+fingerprintBatch, len(unique))
		query, args, err := sqlx.In(
			"SELECT DISTINCT fingerprint FROM pages WHERE case_id = ? AND fingerprint IN (?)",
			t.c.ID, unique[start:end])
		if err != nil {
			return nil, fmt.Errorf("ledgerTx.RecordedFingerprints: %w", err)
		}
		var batch []string
		if err := t.tx.SelectContext(ctx, &batch, t.tx.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("ledgerTx.RecordedFingerprints: %w", err)
		}
		recorded = append(recorded, batch...)
	}
	return recorded, nil
}

func (t *ledgerTx) InsertDocument(ctx context.Context, doc *domain.Document) error {
	doc.CaseID = t.c.ID
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now().UTC()
	}
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO documents (id, case_id, filename, page_count, ingested_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		doc.ID, doc.CaseID, doc.Filename, doc.PageCount, doc.IngestedAt)
	if err != nil {
		return fmt.Errorf("ledgerTx.InsertDocument: %w", err)
	}
	return nil
}

func (t *ledgerTx) AppendPage(ctx context.Context, p *domain.Page) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CaseID = t.c.ID
	p.DisplayPosition = t.c.NextPosition
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO pages (id, case_id, document_id, page_index, fingerprint, category,
			manual_override, display_position, artifact_key, extracted_text, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.CaseID, p.DocumentID, p.PageIndex, p.Fingerprint, p.Category,
		p.ManualOverride, p.DisplayPosition, p.ArtifactKey, p.Text, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ledgerTx.AppendPage: %w", err)
	}
	t.c.NextPosition++
	return nil
}

func (t *ledgerTx) GetPage(ctx context.Context, pageID uuid.UUID) (*domain.Page, error) {
	var p domain.Page
	err := t.tx.GetContext(ctx, &p,
		"SELECT * FROM pages WHERE id = $1 AND case_id = $2", pageID, t.c.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPageNotFound
		}
		return nil, fmt.Errorf("ledgerTx.GetPage: %w", err)
	}
	return &p, nil
}

func (t *ledgerTx) ListPages(ctx context.Context) ([]domain.Page, error) {
	var pages []domain.Page
	err := t.tx.SelectContext(ctx, &pages,
		"SELECT * FROM pages WHERE case_id = $1 ORDER BY display_position", t.c.ID)
	if err != nil {
		return nil, fmt.Errorf("ledgerTx.ListPages: %w", err)
	}
	return pages, nil
}

func (t *ledgerTx) UpdateCategory(ctx context.Context, pageID uuid.UUID, category domain.Category, manualOverride bool) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE pages SET category = $1, manual_override = $2, updated_at = $3
		 WHERE id = $4 AND case_id = $5`,
		category, manualOverride, time.Now().UTC(), pageID, t.c.ID)
	if err != nil {
		return fmt.Errorf("ledgerTx.UpdateCategory: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledgerTx.UpdateCategory: rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrPageNotFound
	}
	return nil
}

func (t *ledgerTx) MovePage(ctx context.Context, pageID uuid.UUID, newPosition int) error {
	var current int
	err := t.tx.GetContext(ctx, &current,
		"SELECT display_position FROM pages WHERE id = $1 AND case_id = $2", pageID, t.c.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPageNotFound
		}
		return fmt.Errorf("ledgerTx.MovePage: %w", err)
	}

	var count int
	if err := t.tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM pages WHERE case_id = $1", t.c.ID); err != nil {
		return fmt.Errorf("ledgerTx.MovePage count: %w", err)
	}
	if newPosition < 1 || newPosition > count {
		return fmt.Errorf("%w: position %d outside 1..%d", domain.ErrInvalidTransition, newPosition, count)
	}
	if newPosition == current {
		return nil
	}

	now := time.Now().UTC()
	var shift string
	if newPosition < current {
		shift = `UPDATE pages SET display_position = display_position + 1, updated_at = $1
			WHERE case_id = $2 AND display_position >= $3 AND display_position < $4`
		_, err = t.tx.ExecContext(ctx, shift, now, t.c.ID, newPosition, current)
	} else {
		shift = `UPDATE pages SET display_position = display_position - 1, updated_at = $1
			WHERE case_id = $2 AND display_position > $3 AND display_position <= $4`
		_, err = t.tx.ExecContext(ctx, shift, now, t.c.ID, current, newPosition)
	}
	if err != nil {
		return fmt.Errorf("ledgerTx.MovePage shift: %w", err)
	}

	_, err = t.tx.ExecContext(ctx,
		"UPDATE pages SET display_position = $1, updated_at = $2 WHERE id = $3",
		newPosition, now, pageID)
	if err != nil {
		return fmt.Errorf("ledgerTx.MovePage: %w", err)
	}
	return nil
}
