package domain

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Category is the routing bucket of a page. Values outside the registry are
// rejected rather than silently creating a new bucket.
type Category string

const (
	CategoryFacility  Category = "facility"
	CategoryAdmin     Category = "admin"
	CategoryDuplicate Category = "duplicate"
)

// categoryName limits names to what a workbook sheet title accepts.
var categoryName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,30}$`)

// CategoryRegistry is the ordered set of categories known to the system.
type CategoryRegistry struct {
	mu      sync.RWMutex
	ordered []Category
	known   map[Category]struct{}
}

// NewCategoryRegistry returns a registry holding the baseline categories.
func NewCategoryRegistry() *CategoryRegistry {
	r := &CategoryRegistry{known: make(map[Category]struct{})}
	for _, c := range []Category{CategoryFacility, CategoryAdmin, CategoryDuplicate} {
		r.ordered = append(r.ordered, c)
		r.known[c] = struct{}{}
	}
	return r
}

// Register adds a category. Registering a known category is a no-op. Names
// are lower-cased and must be at most 31 characters of letters, digits,
// '-' or '_'.
func (r *CategoryRegistry) Register(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if c == "" {
		return "", fmt.Errorf("%w: empty category name", ErrInvalidTransition)
	}
	if !categoryName.MatchString(string(c)) {
		return "", fmt.Errorf("%w: invalid category name %q", ErrInvalidTransition, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.known[c]; !ok {
		r.ordered = append(r.ordered, c)
		r.known[c] = struct{}{}
	}
	return c, nil
}

// Parse resolves a category name against the registry.
func (r *CategoryRegistry) Parse(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if !r.Known(c) {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidTransition, name)
	}
	return c, nil
}

// Known reports whether c is registered.
func (r *CategoryRegistry) Known(c Category) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.known[c]
	return ok
}

// All returns the registered categories in registration order.
func (r *CategoryRegistry) All() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Clone returns an independent copy of the registry.
func (r *CategoryRegistry) Clone() *CategoryRegistry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := &CategoryRegistry{
		ordered: make([]Category, len(r.ordered)),
		known:   make(map[Category]struct{}, len(r.known)),
	}
	copy(out.ordered, r.ordered)
	for c := range r.known {
		out.known[c] = struct{}{}
	}
	return out
}
