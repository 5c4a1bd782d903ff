package classifier

import (
	"sync/atomic"

	"litrecord/internal/domain"
)

// Holder publishes the current rule table to concurrent readers. Swapping the
// table never affects a classification already in progress.
type Holder struct {
	current atomic.Pointer[Classifier]
}

// NewHolder returns a Holder serving c.
func NewHolder(c *Classifier) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Classify delegates to the current table.
func (h *Holder) Classify(text string) domain.Category {
	return h.current.Load().Classify(text)
}

// Current returns the table in use.
func (h *Holder) Current() *Classifier {
	return h.current.Load()
}

// Swap installs c as the current table.
func (h *Holder) Swap(c *Classifier) {
	h.current.Store(c)
}
