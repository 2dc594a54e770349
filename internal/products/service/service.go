package service

import (
	"context"
	"log/slog"
	"strings"

	"products-api/internal/products"

	"github.com/prometheus/client_golang/prometheus"
)

const msgProductNotFound = "Product not found"

type Repository interface {
	List() []products.Product
	Find(id string) (products.Product, bool)
	Create(in products.Input) products.Product
	Update(id string, in products.Input) (products.Product, bool)
	Delete(id string) (products.Product, bool)
	Stats() map[string]int
}

type Publisher interface {
	Publish(ctx context.Context, event products.ProductEvent) error
}

type Counters struct {
	Created prometheus.Counter
	Updated prometheus.Counter
	Deleted prometheus.Counter
}

type Service struct {
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
	counters  Counters
}

func New(repo Repository, publisher Publisher, logger *slog.Logger, counters Counters) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		counters:  counters,
	}
}

func (s *Service) ListProducts(_ context.Context, q products.ListQuery) products.ListResult {
	if q.Page < 1 {
		q.Page = products.DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = products.DefaultLimit
	}

	category := strings.ToLower(q.Category)
	search := strings.ToLower(q.Search)

	filtered := make([]products.Product, 0)
	for _, p := range s.repo.List() {
		if category != "" && strings.ToLower(p.Category) != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		filtered = append(filtered, p)
	}

	// Compare before multiplying so huge page numbers cannot overflow.
	start := len(filtered)
	if q.Page-1 <= len(filtered)/q.Limit {
		start = min((q.Page-1)*q.Limit, len(filtered))
	}
	end := start + min(q.Limit, len(filtered)-start)

	return products.ListResult{
		Total: len(filtered),
		Page:  q.Page,
		Limit: q.Limit,
		Items: filtered[start:end],
	}
}

func (s *Service) CategoryStats(_ context.Context) map[string]int {
	return s.repo.Stats()
}

func (s *Service) GetProduct(_ context.Context, id string) (products.Product, error) {
	p, ok := s.repo.Find(id)
	if !ok {
		return products.Product{}, products.NotFound(msgProductNotFound)
	}
	return p, nil
}

func (s *Service) CreateProduct(ctx context.Context, in products.Input) (products.Product, error) {
	product := s.repo.Create(in)

	s.publish(ctx, products.EventCreated, product)
	s.counters.Created.Inc()
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in products.Input) (products.Product, error) {
	product, ok := s.repo.Update(id, in)
	if !ok {
		return products.Product{}, products.NotFound(msgProductNotFound)
	}

	s.publish(ctx, products.EventUpdated, product)
	s.counters.Updated.Inc()
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) (products.Product, error) {
	product, ok := s.repo.Delete(id)
	if !ok {
		return products.Product{}, products.NotFound(msgProductNotFound)
	}

	s.publish(ctx, products.EventDeleted, product)
	s.counters.Deleted.Inc()
	return product, nil
}

// publish is best effort: a broker failure is logged and never fails the
// request.
func (s *Service) publish(ctx context.Context, eventType string, p products.Product) {
	if err := s.publisher.Publish(ctx, products.ProductEvent{
		EventType: eventType,
		ProductID: p.ID,
		Name:      p.Name,
		Timestamp: p.UpdatedAt,
	}); err != nil {
		s.logger.Error("publish "+eventType+" event failed",
			"product_id", p.ID,
			"error", err,
		)
	}
}
