package dedup

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSet_FirstOccurrenceIsNotDuplicate(t *testing.T) {
	s := NewSet(uuid.New(), nil)

	assert.False(t, s.Observe("fp-1"))
	assert.True(t, s.Observe("fp-1"))
	assert.True(t, s.Observe("fp-1"))
	assert.False(t, s.Observe("fp-2"))
	assert.Equal(t, 2, s.Len())
}

func TestSet_SeededFingerprintsAreDuplicates(t *testing.T) {
	caseID := uuid.New()
	s := NewSet(caseID, []string{"fp-old"})

	assert.Equal(t, caseID, s.CaseID())
	assert.True(t, s.ClassifyDuplicate("fp-old"))
	assert.True(t, s.Observe("fp-old"))
	assert.False(t, s.ClassifyDuplicate("fp-new"))
}

func TestSet_ClassifyDoesNotRecord(t *testing.T) {
	s := NewSet(uuid.New(), nil)

	assert.False(t, s.ClassifyDuplicate("fp"))
	assert.False(t, s.ClassifyDuplicate("fp"))
	s.RecordSeen("fp")
	assert.True(t, s.ClassifyDuplicate("fp"))
}

func TestSet_CasesAreIsolated(t *testing.T) {
	a := NewSet(uuid.New(), nil)
	b := NewSet(uuid.New(), nil)

	assert.False(t, a.Observe("shared"))
	assert.False(t, b.Observe("shared"))
}
