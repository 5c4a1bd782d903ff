// Package csvexport renders a case chronology as a flat CSV file.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"litrecord/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Position",
	"Category",
	"Manual Override",
	"Duplicate",
	"Document ID",
	"Filename",
	"Page",
	"Fingerprint",
	"Artifact",
	"Created At",
}

// Writer wraps csv.Writer for exporting pages as CSV.
type Writer struct {
	csv       *csv.Writer
	filenames map[uuid.UUID]string
}

// NewWriter creates a Writer that writes CSV to w. docs resolve the
// Filename column.
func NewWriter(w io.Writer, docs []domain.Document) *Writer {
	filenames := make(map[uuid.UUID]string, len(docs))
	for _, d := range docs {
		filenames[d.ID] = d.Filename
	}
	return &Writer{csv: csv.NewWriter(w), filenames: filenames}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WritePages writes one row per page in the order given.
func (w *Writer) WritePages(pages []domain.Page) error {
	for i := range pages {
		if err := w.csv.Write(w.pageToRow(&pages[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func (w *Writer) pageToRow(p *domain.Page) []string {
	return []string{
		strconv.Itoa(p.DisplayPosition),
		string(p.Category),
		formatBool(p.ManualOverride),
		formatBool(p.Category == domain.CategoryDuplicate),
		p.DocumentID.String(),
		w.filenames[p.DocumentID],
		strconv.Itoa(p.PageIndex),
		p.Fingerprint,
		p.ArtifactKey,
		p.CreatedAt.Format(time.RFC3339),
	}
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a case name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_case_name}_{YYYY-MM-DD}.csv
func BuildFilename(caseName string, now time.Time) string {
	sanitized := SanitizeFilename(caseName)
	if sanitized == "" {
		sanitized = "case"
	}
	return fmt.Sprintf("%s_%s.csv", sanitized, now.Format("2006-01-02"))
}
