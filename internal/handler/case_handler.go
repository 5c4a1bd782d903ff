package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"litrecord/internal/domain"
	"litrecord/internal/service"
)

// CaseHandler handles case lifecycle endpoints.
type CaseHandler struct {
	caseService   service.CaseService
	exportService service.ExportService
}

// NewCaseHandler creates a new CaseHandler.
func NewCaseHandler(caseService service.CaseService, exportService service.ExportService) *CaseHandler {
	return &CaseHandler{caseService: caseService, exportService: exportService}
}

// Create handles POST /api/v1/cases
// @Summary Open a case
// @Tags cases
// @Accept json
// @Produce json
// @Param request body CreateCaseRequest true "Case details"
// @Success 201 {object} Response{data=domain.Case}
// @Failure 400 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /cases [post]
func (h *CaseHandler) Create(c *gin.Context) {
	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required")
		return
	}

	created, err := h.caseService.Create(c.Request.Context(), &service.CreateCaseInput{
		Name: req.Name,
		Mode: domain.HandlingMode(req.Mode),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, created)
}

// List handles GET /api/v1/cases
// @Summary List cases
// @Tags cases
// @Produce json
// @Param status query string false "active or archived"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Case,meta=PagMeta}
// @Security BearerAuth
// @Router /cases [get]
func (h *CaseHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	status := domain.CaseStatus(c.Query("status"))

	cases, total, err := h.caseService.List(c.Request.Context(), status, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, cases, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/cases/:id
// @Summary Get a case
// @Tags cases
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} Response{data=domain.Case}
// @Failure 404 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /cases/{id} [get]
func (h *CaseHandler) GetByID(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	found, err := h.caseService.GetByID(c.Request.Context(), caseID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, found)
}

// GetStatus handles GET /api/v1/cases/:id/status
// @Summary Get the lifecycle status of a case
// @Tags cases
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} Response{data=CaseStatusResponse}
// @Failure 404 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /cases/{id}/status [get]
func (h *CaseHandler) GetStatus(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	status, err := h.caseService.GetStatus(c.Request.Context(), caseID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, CaseStatusResponse{Status: string(status)})
}

// SetStatus handles PUT /api/v1/cases/:id/status
// @Summary Set the lifecycle status of a case
// @Tags cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param request body SetCaseStatusRequest true "New status"
// @Success 200 {object} Response{data=domain.Case}
// @Failure 400 {object} ErrorResponseBody
// @Failure 404 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /cases/{id}/status [put]
func (h *CaseHandler) SetStatus(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetCaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "status is required")
		return
	}

	updated, err := h.caseService.SetStatus(c.Request.Context(), caseID, domain.CaseStatus(req.Status))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, updated)
}

// Toggle handles POST /api/v1/cases/:id/toggle
// @Summary Toggle a case between active and archived
// @Tags cases
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} Response{data=domain.Case}
// @Failure 404 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /cases/{id}/toggle [post]
func (h *CaseHandler) Toggle(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	updated, err := h.caseService.Toggle(c.Request.Context(), caseID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, updated)
}

// ListDocuments handles GET /api/v1/cases/:id/documents
// @Summary List the documents ingested into a case
// @Tags cases
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} Response{data=[]domain.Document}
// @Failure 404 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /cases/{id}/documents [get]
func (h *CaseHandler) ListDocuments(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	docs, err := h.caseService.ListDocuments(c.Request.Context(), caseID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, docs)
}

// Export handles GET /api/v1/cases/:id/export
// @Summary Download the chronology index of a case
// @Description The default format is an Excel workbook laid out by the case's handling mode.
// @Tags cases
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/csv
// @Param id path string true "Case ID"
// @Param format query string false "xlsx or csv" default(xlsx)
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /cases/{id}/export [get]
func (h *CaseHandler) Export(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var (
		out *service.ExportOutput
		err error
	)
	switch c.DefaultQuery("format", "xlsx") {
	case "xlsx":
		out, err = h.exportService.Export(c.Request.Context(), caseID)
	case "csv":
		out, err = h.exportService.ExportCSV(c.Request.Context(), caseID)
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be xlsx or csv")
		return
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Content)
}
