// Package splitter decomposes uploaded PDFs into single-page artifacts and
// extracts the text layer of each page.
package splitter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"litrecord/internal/domain"
	"litrecord/internal/port"
)

const defaultWorkers = 4

var disableConfigDir sync.Once

// PDFSplitter splits documents with pdfcpu and persists each page through an
// ObjectStorage before returning it.
type PDFSplitter struct {
	storage port.ObjectStorage
	workers int
}

// New creates a PDFSplitter. workers bounds per-document page parallelism.
func New(storage port.ObjectStorage, workers int) *PDFSplitter {
	if workers <= 0 {
		workers = defaultWorkers
	}
	disableConfigDir.Do(api.DisableConfigDir)
	return &PDFSplitter{storage: storage, workers: workers}
}

// ArtifactKey is the storage key of a page artifact.
func ArtifactKey(caseID, documentID uuid.UUID, pageIndex int) string {
	return fmt.Sprintf("cases/%s/documents/%s/pages/%05d.pdf", caseID, documentID, pageIndex)
}

func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// Split returns one unit per physical page in source order. Either every page
// is split and stored, or an error is returned and any artifacts written for
// this attempt are removed.
func (s *PDFSplitter) Split(ctx context.Context, input port.SplitInput) ([]port.PageUnit, error) {
	pages, err := splitPages(input.Content)
	if err != nil {
		return nil, err
	}

	units := make([]port.PageUnit, len(pages))
	stored := make([]bool, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			index := i + 1
			key := ArtifactKey(input.CaseID, input.DocumentID, index)
			_, err := s.storage.Upload(gctx, port.UploadInput{
				Key:         key,
				Body:        bytes.NewReader(pages[i]),
				ContentType: domain.ContentTypePDF,
				Size:        int64(len(pages[i])),
			})
			if err != nil {
				return fmt.Errorf("%w: page %d: %w", domain.ErrStorageFailure, index, err)
			}
			stored[i] = true
			units[i] = port.PageUnit{
				Index:       index,
				Text:        ExtractText(pages[i]),
				ArtifactKey: key,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var written []port.PageUnit
		for i, ok := range stored {
			if ok {
				written = append(written, units[i])
			}
		}
		s.Discard(context.WithoutCancel(ctx), written)
		return nil, err
	}

	return units, nil
}

// Discard deletes the artifacts of units. Failures are logged, not returned;
// an orphaned artifact is never referenced by a page row.
func (s *PDFSplitter) Discard(ctx context.Context, units []port.PageUnit) {
	for _, u := range units {
		if err := s.storage.Delete(ctx, u.ArtifactKey); err != nil {
			log.Printf("splitter.Discard: failed to delete artifact %s: %v", u.ArtifactKey, err)
		}
	}
}

// splitPages returns the single-page PDFs of content in page order.
func splitPages(content []byte) ([][]byte, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty content", domain.ErrMalformedDocument)
	}

	spans, err := safeSplitRaw(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}
	if len(spans) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", domain.ErrMalformedDocument)
	}

	pages := make([][]byte, 0, len(spans))
	for _, span := range spans {
		data, err := io.ReadAll(span.Reader)
		if err != nil {
			return nil, fmt.Errorf("%w: reading page %d: %v", domain.ErrMalformedDocument, span.From, err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}

// safeSplitRaw guards against parser panics on hostile input.
func safeSplitRaw(content []byte) (spans []*api.PageSpan, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()
	return api.SplitRaw(bytes.NewReader(content), 1, configuration())
}

// ExtractText returns the text layer of a single-page PDF. Pages without a
// text layer, or whose text cannot be decoded, yield "".
func ExtractText(page []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(page), int64(len(page)))
	if err != nil {
		return ""
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		t, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(t)
	}
	return b.String()
}
