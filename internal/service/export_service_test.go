package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"litrecord/internal/domain"
	"litrecord/internal/export"
	"litrecord/internal/service"
)

func TestExportService_Export(t *testing.T) {
	f := newIngestFixture(t)
	_, err := f.ingest.Ingest(context.Background(), f.caseID, "a.pdf", pdf("Vitals chart", "Vitals chart", "Consent"))
	require.NoError(t, err)

	svc := service.NewExportService(f.store.Cases(), f.store.Documents(), f.store.Ledger())
	out, err := svc.Export(context.Background(), f.caseID)
	require.NoError(t, err)
	assert.Equal(t, "Doe_v._County-chronology.xlsx", out.Filename)
	assert.Equal(t, service.ContentTypeXLSX, out.ContentType)

	wb, err := excelize.OpenReader(bytes.NewReader(out.Content))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()
	assert.Equal(t, []string{export.SheetChronology, export.SheetDuplicates, export.SheetDocuments}, wb.GetSheetList())
}

func TestExportService_UnknownCase(t *testing.T) {
	f := newIngestFixture(t)
	svc := service.NewExportService(f.store.Cases(), f.store.Documents(), f.store.Ledger())
	_, err := svc.Export(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, domain.ErrCaseNotFound))
}

func TestExportService_ExportCSV(t *testing.T) {
	f := newIngestFixture(t)
	_, err := f.ingest.Ingest(context.Background(), f.caseID, "a.pdf", pdf("Vitals chart", "Vitals chart", "Consent"))
	require.NoError(t, err)

	svc := service.NewExportService(f.store.Cases(), f.store.Documents(), f.store.Ledger())
	out, err := svc.ExportCSV(context.Background(), f.caseID)
	require.NoError(t, err)
	assert.Equal(t, service.ContentTypeCSV, out.ContentType)
	assert.True(t, strings.HasPrefix(out.Filename, "Doe_v_County_"))
	assert.True(t, strings.HasSuffix(out.Filename, ".csv"))

	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(out.Content, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "duplicate", rows[2][1])
	assert.Equal(t, "a.pdf", rows[3][5])
}
