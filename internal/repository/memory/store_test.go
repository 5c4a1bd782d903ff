package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"litrecord/internal/domain"
	"litrecord/internal/port"
)

func newCase(t *testing.T, s *Store, status domain.CaseStatus) *domain.Case {
	t.Helper()
	c := &domain.Case{ID: uuid.New(), Name: "Doe v. County", Status: status, Mode: domain.ModeHybrid}
	require.NoError(t, s.Cases().Create(context.Background(), c))
	return c
}

func appendPages(t *testing.T, s *Store, caseID uuid.UUID, n int) []domain.Page {
	t.Helper()
	docID := uuid.New()
	var pages []domain.Page
	err := s.Ledger().WithinCase(context.Background(), caseID, func(tx port.LedgerTx) error {
		if err := tx.InsertDocument(context.Background(), &domain.Document{ID: docID, Filename: "a.pdf", PageCount: n}); err != nil {
			return err
		}
		for i := 1; i <= n; i++ {
			p := domain.Page{DocumentID: docID, PageIndex: i, Fingerprint: fmt.Sprintf("fp-%d", i), Category: domain.CategoryFacility}
			if err := tx.AppendPage(context.Background(), &p); err != nil {
				return err
			}
			pages = append(pages, p)
		}
		return nil
	})
	require.NoError(t, err)
	return pages
}

func positions(t *testing.T, s *Store, caseID uuid.UUID) map[uuid.UUID]int {
	t.Helper()
	pages, err := s.Ledger().ListByCase(context.Background(), caseID)
	require.NoError(t, err)
	out := make(map[uuid.UUID]int, len(pages))
	for _, p := range pages {
		out[p.ID] = p.DisplayPosition
	}
	return out
}

func TestCases_CreateGetList(t *testing.T) {
	s := NewStore()
	active := newCase(t, s, domain.CaseStatusActive)
	newCase(t, s, domain.CaseStatusArchived)

	got, err := s.Cases().GetByID(context.Background(), active.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NextPosition)

	list, total, err := s.Cases().List(context.Background(), domain.CaseStatusActive, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)

	_, total, err = s.Cases().List(context.Background(), "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, err = s.Cases().GetByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, domain.ErrCaseNotFound))
}

func TestCases_UpdateStatus(t *testing.T) {
	s := NewStore()
	c := newCase(t, s, domain.CaseStatusActive)

	require.NoError(t, s.Cases().UpdateStatus(context.Background(), c.ID, domain.CaseStatusArchived))
	got, err := s.Cases().GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStatusArchived, got.Status)

	err = s.Cases().UpdateStatus(context.Background(), uuid.New(), domain.CaseStatusActive)
	assert.True(t, errors.Is(err, domain.ErrCaseNotFound))
}

func TestLedger_AppendAssignsSequentialPositions(t *testing.T) {
	s := NewStore()
	c := newCase(t, s, domain.CaseStatusActive)

	first := appendPages(t, s, c.ID, 3)
	second := appendPages(t, s, c.ID, 2)

	assert.Equal(t, []int{1, 2, 3}, []int{first[0].DisplayPosition, first[1].DisplayPosition, first[2].DisplayPosition})
	assert.Equal(t, []int{4, 5}, []int{second[0].DisplayPosition, second[1].DisplayPosition})

	got, err := s.Cases().GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.NextPosition)

	docs, err := s.Documents().ListByCase(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestLedger_FailedSectionPublishesNothing(t *testing.T) {
	s := NewStore()
	c := newCase(t, s, domain.CaseStatusActive)
	boom := errors.New("boom")

	err := s.Ledger().WithinCase(context.Background(), c.ID, func(tx port.LedgerTx) error {
		docID := uuid.New()
		require.NoError(t, tx.InsertDocument(context.Background(), &domain.Document{ID: docID, Filename: "a.pdf", PageCount: 1}))
		require.NoError(t, tx.AppendPage(context.Background(), &domain.Page{DocumentID: docID, PageIndex: 1, Category: domain.CategoryFacility}))
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	pages, err := s.Ledger().ListByCase(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, pages)
	docs, err := s.Documents().ListByCase(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)
	got, err := s.Cases().GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NextPosition)
}

func TestLedger_WithinCase_UnknownCase(t *testing.T) {
	s := NewStore()
	err := s.Ledger().WithinCase(context.Background(), uuid.New(), func(port.LedgerTx) error { return nil })
	assert.True(t, errors.Is(err, domain.ErrCaseNotFound))
}

func TestLedger_RecordedFingerprints(t *testing.T) {
	s := NewStore()
	c := newCase(t, s, domain.CaseStatusActive)
	appendPages(t, s, c.ID, 2)

	err := s.Ledger().WithinCase(context.Background(), c.ID, func(tx port.LedgerTx) error {
		got, err := tx.RecordedFingerprints(context.Background(), []string{"fp-2", "fp-9", "fp-2"})
		require.NoError(t, err)
		assert.Equal(t, []string{"fp-2"}, got)
		return nil
	})
	require.NoError(t, err)
}

func TestLedger_MovePage(t *testing.T) {
	s := NewStore()
	c := newCase(t, s, domain.CaseStatusActive)
	pages := appendPages(t, s, c.ID, 5)

	// Move page at position 5 to position 2.
	err := s.Ledger().WithinCase(context.Background(), c.ID, func(tx port.LedgerTx) error {
		return tx.MovePage(context.Background(), pages[4].ID, 2)
	})
	require.NoError(t, err)

	pos := positions(t, s, c.ID)
	assert.Equal(t, 1, pos[pages[0].ID])
	assert.Equal(t, 2, pos[pages[4].ID])
	assert.Equal(t, 3, pos[pages[1].ID])
	assert.Equal(t, 4, pos[pages[2].ID])
	assert.Equal(t, 5, pos[pages[3].ID])

	// And back down to the end.
	err = s.Ledger().WithinCase(context.Background(), c.ID, func(tx port.LedgerTx) error {
		return tx.MovePage(context.Background(), pages[4].ID, 5)
	})
	require.NoError(t, err)
	pos = positions(t, s, c.ID)
	for i, p := range pages {
		assert.Equal(t, i+1, pos[p.ID])
	}
}

func TestLedger_MovePage_OutOfRange(t *testing.T) {
	s := NewStore()
	c := newCase(t, s, domain.CaseStatusActive)
	pages := appendPages(t, s, c.ID, 2)

	for _, target := range []int{0, 3, -1} {
		err := s.Ledger().WithinCase(context.Background(), c.ID, func(tx port.LedgerTx) error {
			return tx.MovePage(context.Background(), pages[0].ID, target)
		})
		assert.True(t, errors.Is(err, domain.ErrInvalidTransition), "target %d", target)
	}
}

func TestLedger_UpdateCategoryAndListByCategory(t *testing.T) {
	s := NewStore()
	c := newCase(t, s, domain.CaseStatusActive)
	pages := appendPages(t, s, c.ID, 3)

	err := s.Ledger().WithinCase(context.Background(), c.ID, func(tx port.LedgerTx) error {
		return tx.UpdateCategory(context.Background(), pages[1].ID, domain.CategoryAdmin, true)
	})
	require.NoError(t, err)

	admin, err := s.Ledger().ListByCategory(context.Background(), c.ID, domain.CategoryAdmin)
	require.NoError(t, err)
	require.Len(t, admin, 1)
	assert.Equal(t, pages[1].ID, admin[0].ID)
	assert.True(t, admin[0].ManualOverride)

	facility, err := s.Ledger().ListByCategory(context.Background(), c.ID, domain.CategoryFacility)
	require.NoError(t, err)
	require.Len(t, facility, 2)
	assert.Less(t, facility[0].DisplayPosition, facility[1].DisplayPosition)
}

func TestLedger_ConcurrentSectionsKeepPositionsUnique(t *testing.T) {
	s := NewStore()
	c := newCase(t, s, domain.CaseStatusActive)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			docID := uuid.New()
			_ = s.Ledger().WithinCase(context.Background(), c.ID, func(tx port.LedgerTx) error {
				if err := tx.InsertDocument(context.Background(), &domain.Document{ID: docID, Filename: "x.pdf", PageCount: 4}); err != nil {
					return err
				}
				for j := 1; j <= 4; j++ {
					if err := tx.AppendPage(context.Background(), &domain.Page{DocumentID: docID, PageIndex: j, Category: domain.CategoryFacility}); err != nil {
						return err
					}
				}
				return nil
			})
		}()
	}
	wg.Wait()

	pages, err := s.Ledger().ListByCase(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, pages, 32)
	for i, p := range pages {
		assert.Equal(t, i+1, p.DisplayPosition)
	}
}
