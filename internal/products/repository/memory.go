package repository

import (
	"slices"
	"sync"

	"products-api/internal/products"

	"github.com/google/uuid"
)

// MemoryRepository owns the product collection for the lifetime of the
// process. Records keep insertion order; all operations are atomic with
// respect to each other.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []string
	items map[string]products.Product
	newID func() string
}

func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]products.Product),
		newID: uuid.NewString,
	}
}

func (r *MemoryRepository) List() []products.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]products.Product, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.items[id])
	}
	return list
}

func (r *MemoryRepository) Find(id string) (products.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	return p, ok
}

func (r *MemoryRepository) Create(in products.Input) products.Product {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for {
		if _, taken := r.items[id]; !taken {
			break
		}
		id = r.newID()
	}

	p := in.Apply(products.Product{
		ID:        id,
		CreatedAt: in.StampedAt,
		UpdatedAt: in.StampedAt,
	})
	r.items[id] = p
	r.order = append(r.order, id)
	return p
}

func (r *MemoryRepository) Update(id string, in products.Input) (products.Product, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return products.Product{}, false
	}

	p = in.Apply(p)
	if in.StampedAt.After(p.UpdatedAt) {
		p.UpdatedAt = in.StampedAt
	}
	r.items[id] = p
	return p, true
}

func (r *MemoryRepository) Delete(id string) (products.Product, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return products.Product{}, false
	}

	delete(r.items, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return p, true
}

// Stats counts products per category over the whole collection.
func (r *MemoryRepository) Stats() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]int)
	for _, p := range r.items {
		stats[p.Category]++
	}
	return stats
}

// Seed appends inputs in order, as if each had been created.
func (r *MemoryRepository) Seed(inputs []products.Input) {
	for _, in := range inputs {
		r.Create(in)
	}
}

func (r *MemoryRepository) Health() error {
	return nil
}
