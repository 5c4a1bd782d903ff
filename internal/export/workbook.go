// Package export renders a case's page chronology as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"litrecord/internal/domain"
)

const (
	SheetChronology = "Chronology"
	SheetDuplicates = "Duplicates"
	SheetDocuments  = "Documents"
)

var pageColumns = []any{
	"Position", "Category", "Manual Override", "Document", "Page", "Fingerprint", "Artifact",
}

var documentColumns = []any{
	"Document ID", "Filename", "Pages", "Ingested At",
}

// Write renders the workbook for c to w. pages must be ordered by display
// position. The case's handling mode decides where duplicate pages go:
// preserve keeps them inline, hybrid moves them to their own sheet and split
// writes one sheet per category.
func Write(w io.Writer, c *domain.Case, docs []domain.Document, pages []domain.Page) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	filenames := make(map[uuid.UUID]string, len(docs))
	for _, d := range docs {
		filenames[d.ID] = d.Filename
	}

	sheets := partition(c.Mode, pages)
	first := true
	for _, s := range sheets {
		if first {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("export: rename sheet: %w", err)
			}
			first = false
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("export: new sheet %s: %w", s.name, err)
		}
		if err := writePages(f, s.name, header, s.pages, filenames); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SheetDocuments); err != nil {
		return fmt.Errorf("export: new sheet %s: %w", SheetDocuments, err)
	}
	if err := writeDocuments(f, header, docs); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   c.Name,
		Subject: fmt.Sprintf("Case %s (%s)", c.ID, c.Mode),
	}); err != nil {
		return fmt.Errorf("export: doc props: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write: %w", err)
	}
	return nil
}

type sheet struct {
	name  string
	pages []domain.Page
}

func partition(mode domain.HandlingMode, pages []domain.Page) []sheet {
	switch mode {
	case domain.ModePreserve:
		return []sheet{{name: SheetChronology, pages: pages}}
	case domain.ModeSplit:
		var out []sheet
		index := make(map[domain.Category]int)
		used := map[string]bool{strings.ToLower(SheetDocuments): true}
		for _, p := range pages {
			i, ok := index[p.Category]
			if !ok {
				i = len(out)
				index[p.Category] = i
				out = append(out, sheet{name: uniqueSheetName(sheetName(p.Category), used)})
			}
			out[i].pages = append(out[i].pages, p)
		}
		if len(out) == 0 {
			out = append(out, sheet{name: SheetChronology})
		}
		return out
	default:
		var main, dups []domain.Page
		for _, p := range pages {
			if p.Category == domain.CategoryDuplicate {
				dups = append(dups, p)
			} else {
				main = append(main, p)
			}
		}
		return []sheet{
			{name: SheetChronology, pages: main},
			{name: SheetDuplicates, pages: dups},
		}
	}
}

const maxSheetName = 31

// sheetName title-cases a category, replaces characters Excel forbids in
// sheet titles and trims it to 31 runes.
func sheetName(c domain.Category) string {
	name := strings.Trim(strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, string(c)), "' ")
	if name == "" {
		return "Uncategorized"
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	if len(r) > maxSheetName {
		r = r[:maxSheetName]
	}
	return string(r)
}

// uniqueSheetName suffixes name until it differs, case-insensitively, from
// every name in used, then records it.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(name)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		candidate = string(r) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func writePages(f *excelize.File, name string, header int, pages []domain.Page, filenames map[uuid.UUID]string) error {
	if err := f.SetSheetRow(name, "A1", &pageColumns); err != nil {
		return fmt.Errorf("export: %s header: %w", name, err)
	}
	if err := f.SetCellStyle(name, "A1", "G1", header); err != nil {
		return fmt.Errorf("export: %s header style: %w", name, err)
	}
	for i, p := range pages {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		doc := filenames[p.DocumentID]
		if doc == "" {
			doc = p.DocumentID.String()
		}
		row := []any{
			p.DisplayPosition,
			string(p.Category),
			p.ManualOverride,
			doc,
			p.PageIndex,
			p.Fingerprint,
			p.ArtifactKey,
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("export: %s row %d: %w", name, i+2, err)
		}
	}
	return nil
}

func writeDocuments(f *excelize.File, header int, docs []domain.Document) error {
	if err := f.SetSheetRow(SheetDocuments, "A1", &documentColumns); err != nil {
		return fmt.Errorf("export: documents header: %w", err)
	}
	if err := f.SetCellStyle(SheetDocuments, "A1", "D1", header); err != nil {
		return fmt.Errorf("export: documents header style: %w", err)
	}
	for i, d := range docs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{d.ID.String(), d.Filename, d.PageCount, d.IngestedAt.UTC().Format("2006-01-02 15:04:05")}
		if err := f.SetSheetRow(SheetDocuments, cell, &row); err != nil {
			return fmt.Errorf("export: documents row %d: %w", i+2, err)
		}
	}
	return nil
}
