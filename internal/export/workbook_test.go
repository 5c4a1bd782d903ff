package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"litrecord/internal/domain"
)

func fixture(mode domain.HandlingMode) (*domain.Case, []domain.Document, []domain.Page) {
	c := &domain.Case{ID: uuid.New(), Name: "Doe v. County", Status: domain.CaseStatusActive, Mode: mode}
	doc := domain.Document{ID: uuid.New(), CaseID: c.ID, Filename: "records.pdf", PageCount: 4, IngestedAt: time.Now()}
	cats := []domain.Category{domain.CategoryFacility, domain.CategoryAdmin, domain.CategoryDuplicate, domain.CategoryFacility}
	pages := make([]domain.Page, len(cats))
	for i, cat := range cats {
		pages[i] = domain.Page{
			ID: uuid.New(), CaseID: c.ID, DocumentID: doc.ID, PageIndex: i + 1,
			Category: cat, DisplayPosition: i + 1, Fingerprint: "fp", ArtifactKey: "k",
		}
	}
	return c, []domain.Document{doc}, pages
}

func render(t *testing.T, mode domain.HandlingMode) *excelize.File {
	t.Helper()
	c, docs, pages := fixture(mode)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, c, docs, pages))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func rowCount(t *testing.T, f *excelize.File, sheet string) int {
	t.Helper()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return len(rows) - 1
}

func TestWrite_PreserveKeepsDuplicatesInline(t *testing.T) {
	f := render(t, domain.ModePreserve)
	assert.Equal(t, []string{SheetChronology, SheetDocuments}, f.GetSheetList())
	assert.Equal(t, 4, rowCount(t, f, SheetChronology))

	v, err := f.GetCellValue(SheetChronology, "B4")
	require.NoError(t, err)
	assert.Equal(t, "duplicate", v)
	v, err = f.GetCellValue(SheetChronology, "D2")
	require.NoError(t, err)
	assert.Equal(t, "records.pdf", v)
}

func TestWrite_HybridSeparatesDuplicates(t *testing.T) {
	f := render(t, domain.ModeHybrid)
	assert.Equal(t, []string{SheetChronology, SheetDuplicates, SheetDocuments}, f.GetSheetList())
	assert.Equal(t, 3, rowCount(t, f, SheetChronology))
	assert.Equal(t, 1, rowCount(t, f, SheetDuplicates))
}

func TestWrite_SplitOneSheetPerCategory(t *testing.T) {
	f := render(t, domain.ModeSplit)
	assert.Equal(t, []string{"Facility", "Admin", "Duplicate", SheetDocuments}, f.GetSheetList())
	assert.Equal(t, 2, rowCount(t, f, "Facility"))

	v, err := f.GetCellValue("Facility", "A3")
	require.NoError(t, err)
	assert.Equal(t, "4", v)
}

func TestWrite_EmptyCase(t *testing.T) {
	c := &domain.Case{ID: uuid.New(), Name: "Empty", Mode: domain.ModeSplit}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, c, nil, nil))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{SheetChronology, SheetDocuments}, f.GetSheetList())
}

func TestWrite_SplitSanitizesSheetNames(t *testing.T) {
	c, docs, pages := fixture(domain.ModeSplit)
	long := domain.Category("physical-therapy-and-rehabilitation-notes")
	pages[0].Category = "imaging/radiology"
	pages[1].Category = "documents"
	pages[2].Category = long
	pages[3].Category = long + "-2"

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, c, docs, pages))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 5)
	assert.Equal(t, "Imaging_radiology", sheets[0])
	assert.Equal(t, "Documents (2)", sheets[1])
	assert.Equal(t, "Physical-therapy-and-rehabilita", sheets[2])
	assert.Equal(t, "Physical-therapy-and-rehabi (2)", sheets[3])
	assert.Equal(t, SheetDocuments, sheets[4])
	for _, s := range sheets {
		assert.LessOrEqual(t, len([]rune(s)), 31)
		assert.Equal(t, 1, rowCount(t, f, s))
	}
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Admin", sheetName(domain.CategoryAdmin))
	assert.Equal(t, "Notes_2024_", sheetName("notes:2024*"))
	assert.Equal(t, "Uncategorized", sheetName(""))
	assert.Equal(t, "Uncategorized", sheetName("''"))
}
