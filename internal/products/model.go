package products

import "time"

const (
	EventsQueue  = "products.events"
	EventCreated = "product_created"
	EventUpdated = "product_updated"
	EventDeleted = "product_deleted"
)

type Product struct {
	ID          string    `json:"id" example:"0b6f7c1e-8a53-4a0e-9d0a-6f5f3b0e2c11"`
	Name        string    `json:"name" example:"Laptop Pro"`
	Description string    `json:"description" example:"High-performance laptop for professionals"`
	Price       float64   `json:"price" example:"1200"`
	Category    string    `json:"category" example:"Electronics"`
	InStock     bool      `json:"inStock" example:"true"`
	CreatedAt   time.Time `json:"createdAt" example:"2026-02-24T12:00:00Z"`
	UpdatedAt   time.Time `json:"updatedAt" example:"2026-02-24T12:00:00Z"`
}

// Input is a validated write payload. Nil fields were not supplied by the
// client and are left untouched on update.
type Input struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	InStock     *bool    `json:"inStock,omitempty"`

	// StampedAt is the request timestamp the record is written with.
	StampedAt time.Time `json:"-"`
}

// Apply merges the supplied fields of in over p.
func (in Input) Apply(p Product) Product {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	return p
}

type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 5
)

// ListQuery filters and paginates the product listing. Empty filters match
// everything.
type ListQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

type ListResult struct {
	Total int
	Page  int
	Limit int
	Items []Product
}
