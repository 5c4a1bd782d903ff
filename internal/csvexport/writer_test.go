package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"litrecord/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)

	assert.Len(t, row, len(columns))
	assert.Equal(t, "Position", row[0])
	assert.Equal(t, "Created At", row[len(row)-1])
}

func TestWritePages(t *testing.T) {
	docID := uuid.New()
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	pages := []domain.Page{
		{DocumentID: docID, PageIndex: 1, DisplayPosition: 1, Category: domain.CategoryAdmin, Fingerprint: "aa", ArtifactKey: "k1", CreatedAt: created},
		{DocumentID: docID, PageIndex: 2, DisplayPosition: 2, Category: domain.CategoryDuplicate, Fingerprint: "aa", ArtifactKey: "k2", CreatedAt: created},
		{DocumentID: docID, PageIndex: 3, DisplayPosition: 3, Category: domain.CategoryFacility, ManualOverride: true, CreatedAt: created},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, []domain.Document{{ID: docID, Filename: "intake.pdf"}})
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WritePages(pages))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"1", "admin", "No", "No", docID.String(), "intake.pdf", "1", "aa", "k1", "2025-03-01T09:30:00Z"}, rows[1])
	assert.Equal(t, "Yes", rows[2][3])
	assert.Equal(t, "Yes", rows[3][2])
}

func TestWritePages_UnknownDocument(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	require.NoError(t, w.WritePages([]domain.Page{{DocumentID: uuid.New(), PageIndex: 1, DisplayPosition: 1}}))
	w.Flush()

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, rows[0][5])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Doe v. Acme Corp", "Doe_v_Acme_Corp"},
		{"simple", "simple"},
		{"with-hyphens_and_underscores", "with-hyphens_and_underscores"},
		{"  leading & trailing  ", "leading_trailing"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	long := bytes.Repeat([]byte("a"), 150)
	assert.Len(t, SanitizeFilename(string(long)), 100)
}

func TestBuildFilename(t *testing.T) {
	day := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Doe_v_Acme_2025-06-30.csv", BuildFilename("Doe v. Acme", day))
	assert.Equal(t, "case_2025-06-30.csv", BuildFilename("???", day))
}
