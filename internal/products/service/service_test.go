package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"products-api/internal/products"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockRepo struct {
	listFn   func() []products.Product
	findFn   func(id string) (products.Product, bool)
	createFn func(in products.Input) products.Product
	updateFn func(id string, in products.Input) (products.Product, bool)
	deleteFn func(id string) (products.Product, bool)
	statsFn  func() map[string]int
}

func (m *mockRepo) List() []products.Product { return m.listFn() }
func (m *mockRepo) Find(id string) (products.Product, bool) {
	return m.findFn(id)
}
func (m *mockRepo) Create(in products.Input) products.Product {
	return m.createFn(in)
}
func (m *mockRepo) Update(id string, in products.Input) (products.Product, bool) {
	return m.updateFn(id, in)
}
func (m *mockRepo) Delete(id string) (products.Product, bool) {
	return m.deleteFn(id)
}
func (m *mockRepo) Stats() map[string]int { return m.statsFn() }

type mockPublisher struct {
	events []products.ProductEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event products.ProductEvent) error {
	m.events = append(m.events, event)
	return m.err
}

func newTestCounters() Counters {
	return Counters{
		Created: prometheus.NewCounter(prometheus.CounterOpts{Name: "t_created", Help: "t"}),
		Updated: prometheus.NewCounter(prometheus.CounterOpts{Name: "t_updated", Help: "t"}),
		Deleted: prometheus.NewCounter(prometheus.CounterOpts{Name: "t_deleted", Help: "t"}),
	}
}

func newTestService(repo Repository, pub Publisher, counters Counters) *Service {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return New(repo, pub, logger, counters)
}

var catalog = []products.Product{
	{ID: "1", Name: "Laptop Pro", Category: "Electronics"},
	{ID: "2", Name: "Mechanical Keyboard", Category: "Peripherals"},
	{ID: "3", Name: "Wireless Mouse", Category: "peripherals"},
	{ID: "4", Name: "Monitor 4K", Category: "Electronics"},
	{ID: "5", Name: "Laptop Stand", Category: "ELECTRONICS"},
	{ID: "6", Name: "Desk Lamp", Category: "Office"},
}

func defaultRepo() *mockRepo {
	return &mockRepo{
		listFn: func() []products.Product { return catalog },
		findFn: func(id string) (products.Product, bool) {
			for _, p := range catalog {
				if p.ID == id {
					return p, true
				}
			}
			return products.Product{}, false
		},
		createFn: func(in products.Input) products.Product {
			return in.Apply(products.Product{ID: "new", CreatedAt: in.StampedAt, UpdatedAt: in.StampedAt})
		},
		updateFn: func(id string, in products.Input) (products.Product, bool) {
			return in.Apply(products.Product{ID: id, UpdatedAt: in.StampedAt}), true
		},
		deleteFn: func(id string) (products.Product, bool) {
			return products.Product{ID: id, Name: "gone"}, true
		},
		statsFn: func() map[string]int { return map[string]int{"Electronics": 2} },
	}
}

func ids(items []products.Product) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestListProducts(t *testing.T) {
	tests := []struct {
		name      string
		query     products.ListQuery
		wantIDs   []string
		wantTotal int
		wantPage  int
		wantLimit int
	}{
		{
			name:      "defaults",
			query:     products.ListQuery{},
			wantIDs:   []string{"1", "2", "3", "4", "5"},
			wantTotal: 6,
			wantPage:  1,
			wantLimit: 5,
		},
		{
			name:      "category is case-insensitive exact match",
			query:     products.ListQuery{Category: "electronics"},
			wantIDs:   []string{"1", "4", "5"},
			wantTotal: 3,
			wantPage:  1,
			wantLimit: 5,
		},
		{
			name:      "search is case-insensitive substring on name",
			query:     products.ListQuery{Search: "LAPTOP"},
			wantIDs:   []string{"1", "5"},
			wantTotal: 2,
			wantPage:  1,
			wantLimit: 5,
		},
		{
			name:      "category and search intersect",
			query:     products.ListQuery{Category: "Peripherals", Search: "mouse"},
			wantIDs:   []string{"3"},
			wantTotal: 1,
			wantPage:  1,
			wantLimit: 5,
		},
		{
			name:      "page 2 with limit 2",
			query:     products.ListQuery{Page: 2, Limit: 2},
			wantIDs:   []string{"3", "4"},
			wantTotal: 6,
			wantPage:  2,
			wantLimit: 2,
		},
		{
			name:      "page past the end is empty",
			query:     products.ListQuery{Page: 10, Limit: 5},
			wantIDs:   []string{},
			wantTotal: 6,
			wantPage:  10,
			wantLimit: 5,
		},
		{
			name:      "huge page does not overflow",
			query:     products.ListQuery{Page: int(^uint(0) >> 1), Limit: 3},
			wantIDs:   []string{},
			wantTotal: 6,
			wantPage:  int(^uint(0) >> 1),
			wantLimit: 3,
		},
		{
			name:      "defaults for invalid input",
			query:     products.ListQuery{Page: -1, Limit: 0},
			wantIDs:   []string{"1", "2", "3", "4", "5"},
			wantTotal: 6,
			wantPage:  1,
			wantLimit: 5,
		},
		{
			name:      "no match",
			query:     products.ListQuery{Category: "Garden"},
			wantIDs:   []string{},
			wantTotal: 0,
			wantPage:  1,
			wantLimit: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(defaultRepo(), &mockPublisher{}, newTestCounters())

			got := svc.ListProducts(context.Background(), tt.query)

			if got.Total != tt.wantTotal {
				t.Fatalf("want total %d, got %d", tt.wantTotal, got.Total)
			}
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit {
				t.Fatalf("want page %d limit %d, got page %d limit %d", tt.wantPage, tt.wantLimit, got.Page, got.Limit)
			}
			if got.Items == nil {
				t.Fatalf("items must not be nil")
			}
			gotIDs := ids(got.Items)
			if len(gotIDs) != len(tt.wantIDs) {
				t.Fatalf("want ids %v, got %v", tt.wantIDs, gotIDs)
			}
			for i := range gotIDs {
				if gotIDs[i] != tt.wantIDs[i] {
					t.Fatalf("want ids %v, got %v", tt.wantIDs, gotIDs)
				}
			}
		})
	}
}

func TestGetProduct(t *testing.T) {
	svc := newTestService(defaultRepo(), &mockPublisher{}, newTestCounters())

	p, err := svc.GetProduct(context.Background(), "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Mechanical Keyboard" {
		t.Fatalf("want Mechanical Keyboard, got %q", p.Name)
	}

	_, err = svc.GetProduct(context.Background(), "missing")
	if !errors.Is(err, products.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestCreateProduct(t *testing.T) {
	name := "Phone"
	at := time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC)
	pub := &mockPublisher{}
	counters := newTestCounters()
	svc := newTestService(defaultRepo(), pub, counters)

	product, err := svc.CreateProduct(context.Background(), products.Input{Name: &name, StampedAt: at})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.Name != name {
		t.Fatalf("want name %q, got %q", name, product.Name)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != products.EventCreated {
		t.Fatalf("want event %q, got %v", products.EventCreated, pub.events)
	}
	if !pub.events[0].Timestamp.Equal(at) {
		t.Fatalf("want event timestamp %v, got %v", at, pub.events[0].Timestamp)
	}
	if got := testutil.ToFloat64(counters.Created); got != 1 {
		t.Fatalf("want created counter 1, got %v", got)
	}
}

func TestUpdateProduct(t *testing.T) {
	tests := []struct {
		name      string
		found     bool
		wantErr   error
		wantEvent string
	}{
		{
			name:      "success",
			found:     true,
			wantEvent: products.EventUpdated,
		},
		{
			name:    "not found",
			found:   false,
			wantErr: products.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := defaultRepo()
			repo.updateFn = func(id string, in products.Input) (products.Product, bool) {
				if !tt.found {
					return products.Product{}, false
				}
				return in.Apply(products.Product{ID: id}), true
			}
			pub := &mockPublisher{}
			counters := newTestCounters()
			svc := newTestService(repo, pub, counters)

			_, err := svc.UpdateProduct(context.Background(), "42", products.Input{})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want error %v, got %v", tt.wantErr, err)
				}
				if len(pub.events) != 0 {
					t.Fatalf("want no events, got %v", pub.events)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(pub.events) != 1 || pub.events[0].EventType != tt.wantEvent {
				t.Fatalf("want event %q, got %v", tt.wantEvent, pub.events)
			}
			if got := testutil.ToFloat64(counters.Updated); got != 1 {
				t.Fatalf("want updated counter 1, got %v", got)
			}
		})
	}
}

func TestDeleteProduct(t *testing.T) {
	tests := []struct {
		name      string
		found     bool
		wantErr   error
		wantEvent string
	}{
		{
			name:      "success",
			found:     true,
			wantEvent: products.EventDeleted,
		},
		{
			name:    "not found",
			found:   false,
			wantErr: products.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := defaultRepo()
			repo.deleteFn = func(id string) (products.Product, bool) {
				if !tt.found {
					return products.Product{}, false
				}
				return products.Product{ID: id, Name: "Widget"}, true
			}
			pub := &mockPublisher{}
			svc := newTestService(repo, pub, newTestCounters())

			product, err := svc.DeleteProduct(context.Background(), "42")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if product.ID != "42" {
				t.Fatalf("want deleted product 42, got %q", product.ID)
			}
			if len(pub.events) != 1 || pub.events[0].EventType != tt.wantEvent {
				t.Fatalf("want event %q, got %v", tt.wantEvent, pub.events)
			}
		})
	}
}

func TestCategoryStats(t *testing.T) {
	svc := newTestService(defaultRepo(), &mockPublisher{}, newTestCounters())

	stats := svc.CategoryStats(context.Background())
	if stats["Electronics"] != 2 {
		t.Fatalf("want Electronics 2, got %v", stats)
	}
}

func TestCreateProduct_PublishFail_StillReturnsProduct(t *testing.T) {
	name := "Widget"
	pub := &mockPublisher{err: errors.New("broker down")}
	svc := newTestService(defaultRepo(), pub, newTestCounters())

	product, err := svc.CreateProduct(context.Background(), products.Input{Name: &name})
	if err != nil {
		t.Fatalf("expected no error despite publish failure, got: %v", err)
	}
	if product.Name != "Widget" {
		t.Fatalf("want name Widget, got %q", product.Name)
	}
}
