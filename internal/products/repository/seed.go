package repository

import (
	"time"

	"products-api/internal/products"
)

type demoProduct struct {
	name        string
	description string
	price       float64
	category    string
	inStock     bool
}

var demoCatalog = []demoProduct{
	{"Laptop Pro", "High-performance laptop for professionals", 1200, "Electronics", true},
	{"Mechanical Keyboard", "Tactile and responsive typing experience", 150, "Peripherals", true},
	{"Wireless Mouse", "Ergonomic design with long battery life", 75, "Peripherals", false},
	{"Monitor 4K", "Ultra HD display for stunning visuals", 450, "Electronics", true},
}

// DemoCatalog returns the starter products stamped with now.
func DemoCatalog(now time.Time) []products.Input {
	inputs := make([]products.Input, 0, len(demoCatalog))
	for _, d := range demoCatalog {
		d := d
		inputs = append(inputs, products.Input{
			Name:        &d.name,
			Description: &d.description,
			Price:       &d.price,
			Category:    &d.category,
			InStock:     &d.inStock,
			StampedAt:   now,
		})
	}
	return inputs
}
