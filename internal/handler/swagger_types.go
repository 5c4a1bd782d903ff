package handler

import (
	"github.com/google/uuid"

	"litrecord/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// CreateCaseRequest represents the create case request body.
type CreateCaseRequest struct {
	Name string `json:"name" binding:"required" example:"Doe v. Acme Corp"`
	Mode string `json:"mode" example:"hybrid"`
}

// SetCaseStatusRequest represents the set case status request body.
type SetCaseStatusRequest struct {
	Status string `json:"status" binding:"required" example:"archived"`
}

// SetCategoryRequest represents the manual page category request body.
type SetCategoryRequest struct {
	Category string `json:"category" binding:"required" example:"admin"`
}

// ReorderRequest represents the page reorder request body.
type ReorderRequest struct {
	CaseID   uuid.UUID `json:"case_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Position int       `json:"position" binding:"required,min=1" example:"3"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// CaseStatusResponse represents the lifecycle status of a case.
type CaseStatusResponse struct {
	Status string `json:"status" example:"active"`
}

// ReclassifyResponse reports how many pages changed category.
type ReclassifyResponse struct {
	Reclassified int `json:"reclassified" example:"4"`
}

// IngestFileResult represents the outcome of a single file in a batch upload.
type IngestFileResult struct {
	Filename string               `json:"filename" example:"records.pdf"`
	Success  bool                 `json:"success" example:"true"`
	Result   *domain.IngestResult `json:"result,omitempty"`
	Error    string               `json:"error,omitempty" example:"document is not a readable paginated PDF"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
