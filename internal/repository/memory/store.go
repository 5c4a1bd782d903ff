// Package memory implements the case, document and page stores in process
// memory. Each case has its own lock; writes made inside a critical section
// are staged and only become visible when the section returns nil.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"litrecord/internal/domain"
	"litrecord/internal/port"
)

// Store holds every case, document and page of the process.
type Store struct {
	mu        sync.RWMutex
	cases     map[uuid.UUID]domain.Case
	documents map[uuid.UUID]domain.Document
	pages     map[uuid.UUID]domain.Page
	caseLocks map[uuid.UUID]*sync.Mutex
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		cases:     make(map[uuid.UUID]domain.Case),
		documents: make(map[uuid.UUID]domain.Document),
		pages:     make(map[uuid.UUID]domain.Page),
		caseLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Cases returns the store as a CaseRepository.
func (s *Store) Cases() port.CaseRepository { return (*caseRepo)(s) }

// Documents returns the store as a DocumentRepository.
func (s *Store) Documents() port.DocumentRepository { return (*documentRepo)(s) }

// Ledger returns the store as a PageLedger.
func (s *Store) Ledger() port.PageLedger { return (*pageLedger)(s) }

func (s *Store) lockFor(caseID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.caseLocks[caseID]
	if !ok {
		l = &sync.Mutex{}
		s.caseLocks[caseID] = l
	}
	return l
}

// casePages returns copies of the pages of caseID ordered by display position.
// Caller holds s.mu.
func (s *Store) casePages(caseID uuid.UUID, keep func(*domain.Page) bool) []domain.Page {
	var out []domain.Page
	for _, p := range s.pages {
		if p.CaseID == caseID && (keep == nil || keep(&p)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayPosition < out[j].DisplayPosition })
	return out
}

type caseRepo Store

func (r *caseRepo) Create(_ context.Context, c *domain.Case) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.NextPosition < 1 {
		c.NextPosition = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cases[c.ID]; ok {
		return fmt.Errorf("caseRepo.Create: case %s already exists", c.ID)
	}
	r.cases[c.ID] = *c
	return nil
}

func (r *caseRepo) GetByID(_ context.Context, caseID uuid.UUID) (*domain.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cases[caseID]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	return &c, nil
}

func (r *caseRepo) List(_ context.Context, status domain.CaseStatus, offset, limit int) ([]domain.Case, int, error) {
	r.mu.RLock()
	var all []domain.Case
	for _, c := range r.cases {
		if status == "" || c.Status == status {
			all = append(all, c)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return []domain.Case{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r *caseRepo) UpdateStatus(_ context.Context, caseID uuid.UUID, status domain.CaseStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[caseID]
	if !ok {
		return domain.ErrCaseNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	r.cases[caseID] = c
	return nil
}

type documentRepo Store

func (r *documentRepo) GetByID(_ context.Context, caseID, docID uuid.UUID) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.documents[docID]
	if !ok || d.CaseID != caseID {
		return nil, domain.ErrDocumentNotFound
	}
	return &d, nil
}

func (r *documentRepo) ListByCase(_ context.Context, caseID uuid.UUID) ([]domain.Document, error) {
	r.mu.RLock()
	var docs []domain.Document
	for _, d := range r.documents {
		if d.CaseID == caseID {
			docs = append(docs, d)
		}
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].IngestedAt.Equal(docs[j].IngestedAt) {
			return docs[i].ID.String() < docs[j].ID.String()
		}
		return docs[i].IngestedAt.Before(docs[j].IngestedAt)
	})
	return docs, nil
}

type pageLedger Store

func (l *pageLedger) store() *Store { return (*Store)(l) }

func (l *pageLedger) WithinCase(ctx context.Context, caseID uuid.UUID, fn func(tx port.LedgerTx) error) error {
	s := l.store()
	lock := s.lockFor(caseID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	c, ok := s.cases[caseID]
	var pages map[uuid.UUID]domain.Page
	if ok {
		pages = make(map[uuid.UUID]domain.Page)
		for _, p := range s.casePages(caseID, nil) {
			pages[p.ID] = p
		}
	}
	s.mu.RUnlock()
	if !ok {
		return domain.ErrCaseNotFound
	}

	tx := &ledgerTx{c: c, pages: pages, dirty: make(map[uuid.UUID]struct{})}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.cases[caseID]
	if stored.NextPosition != tx.c.NextPosition {
		stored.NextPosition = tx.c.NextPosition
		stored.UpdatedAt = time.Now().UTC()
		s.cases[caseID] = stored
	}
	for _, d := range tx.documents {
		s.documents[d.ID] = d
	}
	for id := range tx.dirty {
		s.pages[id] = tx.pages[id]
	}
	return nil
}

func (l *pageLedger) GetPage(_ context.Context, pageID uuid.UUID) (*domain.Page, error) {
	s := l.store()
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[pageID]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	return &p, nil
}

func (l *pageLedger) ListByCategory(_ context.Context, caseID uuid.UUID, category domain.Category) ([]domain.Page, error) {
	s := l.store()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.casePages(caseID, func(p *domain.Page) bool { return p.Category == category }), nil
}

func (l *pageLedger) ListByCase(_ context.Context, caseID uuid.UUID) ([]domain.Page, error) {
	s := l.store()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.casePages(caseID, nil), nil
}

// ledgerTx stages writes for one case. pages holds every page of the case,
// including staged ones; dirty lists the ids to publish on commit.
type ledgerTx struct {
	c         domain.Case
	pages     map[uuid.UUID]domain.Page
	documents []domain.Document
	dirty     map[uuid.UUID]struct{}
}

func (t *ledgerTx) Case() *domain.Case { return &t.c }

func (t *ledgerTx) RecordedFingerprints(_ context.Context, fps []string) ([]string, error) {
	wanted := make(map[string]struct{}, len(fps))
	for _, fp := range fps {
		wanted[fp] = struct{}{}
	}
	var out []string
	for _, p := range t.pages {
		if _, ok := wanted[p.Fingerprint]; ok {
			out = append(out, p.Fingerprint)
			delete(wanted, p.Fingerprint)
		}
	}
	return out, nil
}

func (t *ledgerTx) InsertDocument(_ context.Context, doc *domain.Document) error {
	doc.CaseID = t.c.ID
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now().UTC()
	}
	t.documents = append(t.documents, *doc)
	return nil
}

func (t *ledgerTx) AppendPage(_ context.Context, p *domain.Page) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for _, existing := range t.pages {
		if existing.DocumentID == p.DocumentID && existing.PageIndex == p.PageIndex {
			return fmt.Errorf("ledgerTx.AppendPage: page %d of document %s already recorded", p.PageIndex, p.DocumentID)
		}
	}
	now := time.Now().UTC()
	p.CaseID = t.c.ID
	p.DisplayPosition = t.c.NextPosition
	p.CreatedAt = now
	p.UpdatedAt = now

	t.pages[p.ID] = *p
	t.dirty[p.ID] = struct{}{}
	t.c.NextPosition++
	return nil
}

func (t *ledgerTx) GetPage(_ context.Context, pageID uuid.UUID) (*domain.Page, error) {
	p, ok := t.pages[pageID]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	return &p, nil
}

func (t *ledgerTx) ListPages(_ context.Context) ([]domain.Page, error) {
	out := make([]domain.Page, 0, len(t.pages))
	for _, p := range t.pages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayPosition < out[j].DisplayPosition })
	return out, nil
}

func (t *ledgerTx) UpdateCategory(_ context.Context, pageID uuid.UUID, category domain.Category, manualOverride bool) error {
	p, ok := t.pages[pageID]
	if !ok {
		return domain.ErrPageNotFound
	}
	p.Category = category
	p.ManualOverride = manualOverride
	p.UpdatedAt = time.Now().UTC()
	t.pages[pageID] = p
	t.dirty[pageID] = struct{}{}
	return nil
}

func (t *ledgerTx) MovePage(_ context.Context, pageID uuid.UUID, newPosition int) error {
	moving, ok := t.pages[pageID]
	if !ok {
		return domain.ErrPageNotFound
	}
	count := len(t.pages)
	if newPosition < 1 || newPosition > count {
		return fmt.Errorf("%w: position %d outside 1..%d", domain.ErrInvalidTransition, newPosition, count)
	}
	current := moving.DisplayPosition
	if newPosition == current {
		return nil
	}

	now := time.Now().UTC()
	for id, p := range t.pages {
		switch {
		case id == pageID:
			p.DisplayPosition = newPosition
		case newPosition < current && p.DisplayPosition >= newPosition && p.DisplayPosition < current:
			p.DisplayPosition++
		case newPosition > current && p.DisplayPosition > current && p.DisplayPosition <= newPosition:
			p.DisplayPosition--
		default:
			continue
		}
		p.UpdatedAt = now
		t.pages[id] = p
		t.dirty[id] = struct{}{}
	}
	return nil
}
