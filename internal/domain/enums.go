package domain

// CaseStatus is the lifecycle state of a case. A case only ever toggles
// between the two values.
type CaseStatus string

const (
	CaseStatusActive   CaseStatus = "active"
	CaseStatusArchived CaseStatus = "archived"
)

// Valid reports whether s is a known case status.
func (s CaseStatus) Valid() bool {
	return s == CaseStatusActive || s == CaseStatusArchived
}

// Toggled returns the other lifecycle state.
func (s CaseStatus) Toggled() CaseStatus {
	if s == CaseStatusActive {
		return CaseStatusArchived
	}
	return CaseStatusActive
}

// HandlingMode controls how duplicates are presented by exports. The core
// stores it on the case but never consults it during ingestion.
type HandlingMode string

const (
	ModeHybrid   HandlingMode = "hybrid"
	ModePreserve HandlingMode = "preserve"
	ModeSplit    HandlingMode = "split"
)

// AllowedModes maps the accepted mode strings to their HandlingMode.
var AllowedModes = map[string]HandlingMode{
	"hybrid":   ModeHybrid,
	"preserve": ModePreserve,
	"split":    ModeSplit,
}

// Valid reports whether m is a known handling mode.
func (m HandlingMode) Valid() bool {
	_, ok := AllowedModes[string(m)]
	return ok
}

// ContentTypePDF is the only content type accepted for uploads and the type
// of every stored page artifact.
const ContentTypePDF = "application/pdf"
