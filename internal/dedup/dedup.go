// Package dedup tracks which page fingerprints a case has already seen.
package dedup

import "github.com/google/uuid"

// Set is the seen-fingerprint set of a single case. It is not safe for
// concurrent use; callers hold the case's critical section while using it.
type Set struct {
	caseID uuid.UUID
	seen   map[string]struct{}
}

// NewSet returns a set for caseID seeded with fingerprints already recorded
// in the ledger.
func NewSet(caseID uuid.UUID, recorded []string) *Set {
	s := &Set{caseID: caseID, seen: make(map[string]struct{}, len(recorded))}
	for _, fp := range recorded {
		s.seen[fp] = struct{}{}
	}
	return s
}

// CaseID returns the case the set belongs to.
func (s *Set) CaseID() uuid.UUID { return s.caseID }

// ClassifyDuplicate reports whether fp has been seen before in this case.
func (s *Set) ClassifyDuplicate(fp string) bool {
	_, ok := s.seen[fp]
	return ok
}

// RecordSeen marks fp as seen.
func (s *Set) RecordSeen(fp string) {
	s.seen[fp] = struct{}{}
}

// Observe classifies fp and records it in one step. The first call for a
// fingerprint returns false; every later call returns true.
func (s *Set) Observe(fp string) (isDuplicate bool) {
	if s.ClassifyDuplicate(fp) {
		return true
	}
	s.RecordSeen(fp)
	return false
}

// Len returns the number of distinct fingerprints seen.
func (s *Set) Len() int { return len(s.seen) }
