package domain

import (
	"time"

	"github.com/google/uuid"
)

// Case is a litigation matter and the isolation boundary for documents,
// pages, fingerprints and display positions.
type Case struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	Status       CaseStatus   `db:"status" json:"status"`
	Mode         HandlingMode `db:"mode" json:"mode"`
	NextPosition int          `db:"next_position" json:"-"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// Document is the provenance record of one uploaded file. It is never
// modified after ingestion.
type Document struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CaseID     uuid.UUID `db:"case_id" json:"case_id"`
	Filename   string    `db:"filename" json:"filename"`
	PageCount  int       `db:"page_count" json:"page_count"`
	IngestedAt time.Time `db:"ingested_at" json:"ingested_at"`
}

// Page is one physical page of an ingested document. Only Category,
// ManualOverride and DisplayPosition change after creation.
type Page struct {
	ID              uuid.UUID `db:"id" json:"id"`
	CaseID          uuid.UUID `db:"case_id" json:"case_id"`
	DocumentID      uuid.UUID `db:"document_id" json:"document_id"`
	PageIndex       int       `db:"page_index" json:"page_index"`
	Fingerprint     string    `db:"fingerprint" json:"fingerprint"`
	Category        Category  `db:"category" json:"category"`
	ManualOverride  bool      `db:"manual_override" json:"manual_override"`
	DisplayPosition int       `db:"display_position" json:"display_position"`
	ArtifactKey     string    `db:"artifact_key" json:"artifact_key"`
	Text            string    `db:"extracted_text" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// IngestResult summarises one successfully ingested document.
type IngestResult struct {
	DocumentID      uuid.UUID `json:"document_id"`
	Filename        string    `json:"filename"`
	PagesCreated    int       `json:"pages_created"`
	DuplicatesFound int       `json:"duplicates_found"`
}
