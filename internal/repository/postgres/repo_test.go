package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"litrecord/internal/domain"
	"litrecord/internal/port"
)

var caseColumns = []string{"id", "name", "status", "mode", "next_position", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

func caseRow(id uuid.UUID, next int) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(caseColumns).
		AddRow(id.String(), "Doe v. County", "active", "hybrid", next, now, now)
}

func TestCaseRepo_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCaseRepo(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM cases WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(caseRow(id, 4))

	c, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, domain.CaseStatusActive, c.Status)
	assert.Equal(t, 4, c.NextPosition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCaseRepo(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM cases WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.True(t, errors.Is(err, domain.ErrCaseNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseRepo_Create_DefaultsPosition(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCaseRepo(db)
	c := &domain.Case{ID: uuid.New(), Name: "Roe v. Clinic", Status: domain.CaseStatusActive, Mode: domain.ModeSplit}

	mock.ExpectExec("INSERT INTO cases").
		WithArgs(c.ID, c.Name, c.Status, c.Mode, 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, 1, c.NextPosition)
	assert.False(t, c.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseRepo_UpdateStatus_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCaseRepo(db)
	id := uuid.New()

	mock.ExpectExec("UPDATE cases SET status").
		WithArgs(domain.CaseStatusArchived, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), id, domain.CaseStatusArchived)
	assert.True(t, errors.Is(err, domain.ErrCaseNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseRepo_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCaseRepo(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM cases`).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM cases WHERE`).
		WithArgs("active", 20, 0).
		WillReturnRows(caseRow(id, 1))

	cases, total, err := repo.List(context.Background(), domain.CaseStatusActive, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, cases, 1)
	assert.Equal(t, id, cases[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepo(db)
	caseID, docID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM documents WHERE id = \$1 AND case_id = \$2`).
		WithArgs(docID, caseID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), caseID, docID)
	assert.True(t, errors.Is(err, domain.ErrDocumentNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageLedger_WithinCase_AppendsAndAdvancesCounter(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewPageLedger(db)
	caseID, docID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM cases WHERE id = \$1 FOR UPDATE`).
		WithArgs(caseID).
		WillReturnRows(caseRow(caseID, 3))
	mock.ExpectExec("INSERT INTO documents").
		WithArgs(docID, caseID, "records.pdf", 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO pages").
		WithArgs(sqlmock.AnyArg(), caseID, docID, 1, "fp1", domain.CategoryAdmin, false, 3,
			"k1", "consent", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO pages").
		WithArgs(sqlmock.AnyArg(), caseID, docID, 2, "fp2", domain.CategoryFacility, false, 4,
			"k2", "vitals", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE cases SET next_position").
		WithArgs(5, sqlmock.AnyArg(), caseID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var positions []int
	err := ledger.WithinCase(context.Background(), caseID, func(tx port.LedgerTx) error {
		require.NoError(t, tx.InsertDocument(context.Background(),
			&domain.Document{ID: docID, Filename: "records.pdf", PageCount: 2}))
		for i, p := range []domain.Page{
			{DocumentID: docID, PageIndex: 1, Fingerprint: "fp1", Category: domain.CategoryAdmin, ArtifactKey: "k1", Text: "consent"},
			{DocumentID: docID, PageIndex: 2, Fingerprint: "fp2", Category: domain.CategoryFacility, ArtifactKey: "k2", Text: "vitals"},
		} {
			page := p
			if err := tx.AppendPage(context.Background(), &page); err != nil {
				return err
			}
			assert.NotEqual(t, uuid.Nil, page.ID, "page %d", i)
			positions = append(positions, page.DisplayPosition)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, positions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageLedger_WithinCase_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewPageLedger(db)
	caseID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM cases WHERE id = \$1 FOR UPDATE`).
		WithArgs(caseID).
		WillReturnRows(caseRow(caseID, 1))
	mock.ExpectExec("INSERT INTO documents").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("classifier exploded")
	err := ledger.WithinCase(context.Background(), caseID, func(tx port.LedgerTx) error {
		require.NoError(t, tx.InsertDocument(context.Background(),
			&domain.Document{ID: uuid.New(), Filename: "a.pdf", PageCount: 1}))
		return boom
	})

	assert.True(t, errors.Is(err, boom))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageLedger_WithinCase_CaseNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewPageLedger(db)
	caseID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(caseID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := ledger.WithinCase(context.Background(), caseID, func(port.LedgerTx) error {
		t.Fatal("fn must not run for a missing case")
		return nil
	})
	assert.True(t, errors.Is(err, domain.ErrCaseNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerTx_RecordedFingerprints(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewPageLedger(db)
	caseID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(caseID).WillReturnRows(caseRow(caseID, 5))
	mock.ExpectQuery(`SELECT DISTINCT fingerprint FROM pages WHERE case_id = \$1 AND fingerprint IN \(\$2, \$3\)`).
		WithArgs(caseID, "a", "b").
		WillReturnRows(sqlmock.NewRows([]string{"fingerprint"}).AddRow("b"))
	mock.ExpectCommit()

	var recorded []string
	err := ledger.WithinCase(context.Background(), caseID, func(tx port.LedgerTx) error {
		var err error
		recorded, err = tx.RecordedFingerprints(context.Background(), []string{"a", "b", "a"})
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, recorded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerTx_MovePage_ShiftsEarlierPagesDown(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewPageLedger(db)
	caseID, pageID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(caseID).WillReturnRows(caseRow(caseID, 6))
	mock.ExpectQuery(`SELECT display_position FROM pages`).
		WithArgs(pageID, caseID).
		WillReturnRows(sqlmock.NewRows([]string{"display_position"}).AddRow(5))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM pages`).
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectExec(`SET display_position = display_position \+ 1`).
		WithArgs(sqlmock.AnyArg(), caseID, 2, 5).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`UPDATE pages SET display_position = \$1`).
		WithArgs(2, sqlmock.AnyArg(), pageID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := ledger.WithinCase(context.Background(), caseID, func(tx port.LedgerTx) error {
		return tx.MovePage(context.Background(), pageID, 2)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerTx_MovePage_OutOfRange(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewPageLedger(db)
	caseID, pageID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(caseID).WillReturnRows(caseRow(caseID, 4))
	mock.ExpectQuery(`SELECT display_position FROM pages`).
		WithArgs(pageID, caseID).
		WillReturnRows(sqlmock.NewRows([]string{"display_position"}).AddRow(1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM pages`).
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	err := ledger.WithinCase(context.Background(), caseID, func(tx port.LedgerTx) error {
		return tx.MovePage(context.Background(), pageID, 9)
	})

	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseRepo_UpdateStatus_RowsAffectedError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCaseRepo(db)
	id := uuid.New()

	mock.ExpectExec("UPDATE cases SET status").
		WithArgs(domain.CaseStatusArchived, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("driver: no row count")))

	err := repo.UpdateStatus(context.Background(), id, domain.CaseStatusArchived)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrCaseNotFound))
	assert.Contains(t, err.Error(), "rows affected")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerTx_UpdateCategory(t *testing.T) {
	tests := []struct {
		name    string
		result  driver.Result
		wantErr error
		errText string
	}{
		{name: "updated", result: sqlmock.NewResult(0, 1)},
		{name: "missing page", result: sqlmock.NewResult(0, 0), wantErr: domain.ErrPageNotFound},
		{name: "rows affected fails", result: sqlmock.NewErrorResult(errors.New("driver: no row count")), errText: "rows affected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			ledger := NewPageLedger(db)
			caseID, pageID := uuid.New(), uuid.New()

			mock.ExpectBegin()
			mock.ExpectQuery(`FOR UPDATE`).WithArgs(caseID).WillReturnRows(caseRow(caseID, 2))
			mock.ExpectExec(`UPDATE pages SET category = \$1, manual_override = \$2`).
				WithArgs(domain.CategoryAdmin, true, sqlmock.AnyArg(), pageID, caseID).
				WillReturnResult(tt.result)
			if tt.wantErr == nil && tt.errText == "" {
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			err := ledger.WithinCase(context.Background(), caseID, func(tx port.LedgerTx) error {
				return tx.UpdateCategory(context.Background(), pageID, domain.CategoryAdmin, true)
			})

			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr))
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCheckSchema(t *testing.T) {
	tests := []struct {
		name    string
		present []string
		missing string
	}{
		{name: "migrated", present: []string{"cases", "documents", "pages"}},
		{name: "pages missing", present: []string{"cases", "documents"}, missing: "missing pages"},
		{name: "empty database", missing: "missing cases, documents, pages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			rows := sqlmock.NewRows([]string{"table_name"})
			for _, name := range tt.present {
				rows.AddRow(name)
			}
			mock.ExpectQuery(`FROM information_schema.tables`).
				WithArgs("cases", "documents", "pages").
				WillReturnRows(rows)

			err := CheckSchema(context.Background(), db)
			if tt.missing == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.missing)
				assert.Contains(t, err.Error(), "litctl migrate up")
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
