package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"litrecord/internal/domain"
	"litrecord/internal/service"
)

const defaultContentURLExpiry = 3600

// PageHandler handles page listing and editing endpoints.
type PageHandler struct {
	pageService service.PageService
	urlExpiry   int64
}

// NewPageHandler creates a new PageHandler. urlExpiry is the default lifetime
// in seconds of presigned content URLs.
func NewPageHandler(pageService service.PageService, urlExpiry int64) *PageHandler {
	if urlExpiry <= 0 {
		urlExpiry = defaultContentURLExpiry
	}
	return &PageHandler{pageService: pageService, urlExpiry: urlExpiry}
}

// ListByCase handles GET /api/v1/cases/:id/pages
// @Summary List the pages of a case in display order
// @Tags pages
// @Produce json
// @Param id path string true "Case ID"
// @Param category query string false "Only pages in this category"
// @Success 200 {object} Response{data=[]domain.Page}
// @Failure 404 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /cases/{id}/pages [get]
func (h *PageHandler) ListByCase(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	pages, err := h.pageService.ListByCategory(c.Request.Context(), caseID, c.Query("category"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, pages)
}

// Reclassify handles POST /api/v1/cases/:id/reclassify
// @Summary Re-run classification over a case
// @Description Pages with a manual override and duplicate pages keep their category.
// @Tags pages
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} Response{data=ReclassifyResponse}
// @Failure 404 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /cases/{id}/reclassify [post]
func (h *PageHandler) Reclassify(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	changed, err := h.pageService.Reclassify(c.Request.Context(), caseID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, ReclassifyResponse{Reclassified: changed})
}

// GetByID handles GET /api/v1/pages/:id
// @Summary Get a page
// @Tags pages
// @Produce json
// @Param id path string true "Page ID"
// @Success 200 {object} Response{data=domain.Page}
// @Failure 404 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /pages/{id} [get]
func (h *PageHandler) GetByID(c *gin.Context) {
	pageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page, err := h.pageService.GetPage(c.Request.Context(), pageID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, page)
}

// SetCategory handles PUT /api/v1/pages/:id/category
// @Summary Manually assign a category to a page
// @Description The assignment is pinned and survives later reclassification.
// @Tags pages
// @Accept json
// @Produce json
// @Param id path string true "Page ID"
// @Param request body SetCategoryRequest true "Category"
// @Success 200 {object} Response{data=domain.Page}
// @Failure 400 {object} ErrorResponseBody
// @Failure 404 {object} ErrorResponseBody
// @Failure 409 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /pages/{id}/category [put]
func (h *PageHandler) SetCategory(c *gin.Context) {
	pageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "category is required")
		return
	}

	page, err := h.pageService.SetCategory(c.Request.Context(), pageID, req.Category)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, page)
}

// Reorder handles PUT /api/v1/pages/:id/position
// @Summary Move a page to a new display position
// @Description Pages between the old and new positions shift by one.
// @Tags pages
// @Accept json
// @Produce json
// @Param id path string true "Page ID"
// @Param request body ReorderRequest true "Target position"
// @Success 200 {object} Response{data=domain.Page}
// @Failure 400 {object} ErrorResponseBody
// @Failure 404 {object} ErrorResponseBody
// @Failure 409 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /pages/{id}/position [put]
func (h *PageHandler) Reorder(c *gin.Context) {
	pageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "case_id and position are required")
		return
	}

	page, err := h.pageService.Reorder(c.Request.Context(), req.CaseID, pageID, req.Position)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, page)
}

// Content handles GET /api/v1/pages/:id/content
// @Summary Download the single-page PDF of a page
// @Description With redirect=true the response redirects to a presigned URL instead.
// @Tags pages
// @Produce application/pdf
// @Param id path string true "Page ID"
// @Param redirect query bool false "Redirect to a presigned URL"
// @Param expiry query int false "Presigned URL expiry in seconds" default(3600)
// @Success 200 {file} file
// @Success 307 "Redirect to presigned URL"
// @Failure 404 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /pages/{id}/content [get]
func (h *PageHandler) Content(c *gin.Context) {
	pageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if redirect, _ := strconv.ParseBool(c.Query("redirect")); redirect {
		expiry, err := strconv.ParseInt(c.Query("expiry"), 10, 64)
		if err != nil || expiry <= 0 {
			expiry = h.urlExpiry
		}
		url, err := h.pageService.ContentURL(c.Request.Context(), pageID, expiry)
		if err != nil {
			HandleError(c, err)
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, url)
		return
	}

	content, err := h.pageService.Content(c.Request.Context(), pageID)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Data(http.StatusOK, domain.ContentTypePDF, content)
}
