package domain

import "errors"

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrCaseNotFound      = errors.New("case not found")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrPageNotFound      = errors.New("page not found")
	ErrCaseArchived      = errors.New("case is archived")
	ErrInvalidMode       = errors.New("invalid handling mode")
	ErrInvalidStatus     = errors.New("invalid case status")
	ErrEmptyCaseName     = errors.New("case name is required")
	ErrFileTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrMalformedDocument = errors.New("document cannot be split into pages")
	ErrStorageFailure    = errors.New("durable storage write failed")
	ErrInvalidTransition = errors.New("invalid page transition")
	ErrEmptyDocument     = errors.New("uploaded file is empty")
)
