package state

import (
	"slices"
	"sync"

	"github.com/team-dbx/dbx/internal/dto"
)

// CategoryRegistry is the list of known categories. It is only ever
// replaced as a whole.
type CategoryRegistry struct {
	mu         sync.RWMutex
	categories []dto.Category
}

func NewCategoryRegistry() *CategoryRegistry {
	return &CategoryRegistry{}
}

// Read returns a copy of the current categories; empty before the first
// ReplaceAll.
func (r *CategoryRegistry) Read() []dto.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.categories)
}

// ReplaceAll swaps the whole list. Last writer wins; there is no merge.
func (r *CategoryRegistry) ReplaceAll(categories []dto.Category) {
	next := slices.Clone(categories)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = next
}

// Empty reports whether no categories are known yet.
func (r *CategoryRegistry) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.categories) == 0
}

// Lookup resolves a category by exact name.
func (r *CategoryRegistry) Lookup(name string) (dto.Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		if c.Name == name {
			return c, true
		}
	}
	return dto.Category{}, false
}

// LookupID resolves a category by id.
func (r *CategoryRegistry) LookupID(id string) (dto.Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		if c.ID == id {
			return c, true
		}
	}
	return dto.Category{}, false
}

// Names returns the category names in registry order.
func (r *CategoryRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.categories))
	for _, c := range r.categories {
		names = append(names, c.Name)
	}
	return names
}
