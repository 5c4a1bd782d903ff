package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"litrecord/internal/domain"
	"litrecord/internal/service"
)

// DocumentHandler handles document upload endpoints.
type DocumentHandler struct {
	ingestService service.IngestService
	maxFileSize   int64
}

// NewDocumentHandler creates a new DocumentHandler. maxFileSize is in bytes.
func NewDocumentHandler(ingestService service.IngestService, maxFileSize int64) *DocumentHandler {
	return &DocumentHandler{ingestService: ingestService, maxFileSize: maxFileSize}
}

// Upload handles POST /api/v1/cases/:id/documents
// @Summary Ingest one or more PDF documents into a case
// @Description Each file is split into pages, deduplicated against the case and classified.
// @Description A single file returns its ingest result; several files return one result per file.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Case ID"
// @Param files formData file true "PDF files"
// @Success 201 {object} Response{data=domain.IngestResult} "Single file ingested"
// @Success 207 {object} Response{data=[]IngestFileResult} "Per-file results of a batch"
// @Failure 400 {object} ErrorResponseBody "Missing files"
// @Failure 409 {object} ErrorResponseBody "Case archived"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "Malformed PDF"
// @Failure 503 {object} ErrorResponseBody "Storage unavailable"
// @Security BearerAuth
// @Router /cases/{id}/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart form with files is required")
		return
	}
	headers := slices.Concat(form.File["files"], form.File["file"])
	if len(headers) == 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "at least one file is required")
		return
	}

	if len(headers) == 1 {
		content, err := h.readFile(headers[0])
		if err != nil {
			HandleError(c, err)
			return
		}
		result, err := h.ingestService.Ingest(c.Request.Context(), caseID, headers[0].Filename, content)
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondCreated(c, result)
		return
	}

	// Oversized files are reported in their own slot; the rest are ingested.
	results := make([]service.IngestFileResult, len(headers))
	accepted := make([]int, 0, len(headers))
	files := make([]service.IngestFileInput, 0, len(headers))
	for i, fh := range headers {
		content, err := h.readFile(fh)
		if errors.Is(err, domain.ErrFileTooLarge) {
			results[i] = service.FailedFileResult(fh.Filename, err)
			continue
		}
		if err != nil {
			HandleError(c, err)
			return
		}
		accepted = append(accepted, i)
		files = append(files, service.IngestFileInput{Filename: fh.Filename, Content: content})
	}

	ingested, err := h.ingestService.IngestBatch(c.Request.Context(), caseID, files)
	if err != nil {
		HandleError(c, err)
		return
	}
	for j, r := range ingested {
		results[accepted[j]] = r
	}

	status := http.StatusCreated
	for _, r := range results {
		if !r.Success {
			status = http.StatusMultiStatus
			break
		}
	}
	c.JSON(status, APIResponse{Success: status == http.StatusCreated, Data: results})
}

func (h *DocumentHandler) readFile(fh *multipart.FileHeader) ([]byte, error) {
	if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
		return nil, domain.ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxFileSize > 0 {
		r = io.LimitReader(f, h.maxFileSize+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}
	if h.maxFileSize > 0 && int64(len(content)) > h.maxFileSize {
		return nil, domain.ErrFileTooLarge
	}
	return content, nil
}
