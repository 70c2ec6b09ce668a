package repository

import (
	"context"
	"sync"

	"catalog-api/internal/model"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// productRepository implements ProductRepository with an in-memory slice.
type productRepository struct {
	mu       sync.RWMutex
	products []model.Product
	tracer   trace.Tracer
	logger   zerolog.Logger
}

// NewProductRepository creates an in-memory product store holding a copy of seed.
func NewProductRepository(seed []model.Product, tracer trace.Tracer, logger zerolog.Logger) ProductRepository {
	products := make([]model.Product, len(seed))
	copy(products, seed)

	logger = logger.With().Str("repository", "product").Logger()
	logger.Info().Int("count", len(products)).Msg("product store initialised")

	return &productRepository{
		products: products,
		tracer:   tracer,
		logger:   logger,
	}
}

// Append adds a product to the end of the collection.
func (r *productRepository) Append(ctx context.Context, product model.Product) error {
	_, span := r.tracer.Start(ctx, "ProductRepository.Append")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", product.ID))

	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = append(r.products, product)

	r.logger.Debug().
		Str("product_id", product.ID).
		Int("size", len(r.products)).
		Msg("product appended")

	return nil
}

// Find returns the product with the given ID, or nil if none exists.
func (r *productRepository) Find(ctx context.Context, id string) (*model.Product, error) {
	_, span := r.tracer.Start(ctx, "ProductRepository.Find")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.products {
		if r.products[i].ID == id {
			p := r.products[i]
			return &p, nil
		}
	}

	r.logger.Debug().Str("product_id", id).Msg("product not found")
	return nil, nil
}

// IndexOf returns the position of the product with the given ID, or -1.
func (r *productRepository) IndexOf(ctx context.Context, id string) (int, error) {
	_, span := r.tracer.Start(ctx, "ProductRepository.IndexOf")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.products {
		if r.products[i].ID == id {
			return i, nil
		}
	}
	return -1, nil
}

// Replace overwrites the product stored at index.
func (r *productRepository) Replace(ctx context.Context, index int, product model.Product) error {
	_, span := r.tracer.Start(ctx, "ProductRepository.Replace")
	defer span.End()
	span.SetAttributes(attribute.Int("product.index", index))

	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.products) {
		r.logger.Error().Int("index", index).Int("size", len(r.products)).Msg("replace out of range")
		return ErrIndexOutOfRange
	}

	r.products[index] = product
	return nil
}

// RemoveAt removes and returns the product stored at index.
func (r *productRepository) RemoveAt(ctx context.Context, index int) (model.Product, error) {
	_, span := r.tracer.Start(ctx, "ProductRepository.RemoveAt")
	defer span.End()
	span.SetAttributes(attribute.Int("product.index", index))

	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.products) {
		r.logger.Error().Int("index", index).Int("size", len(r.products)).Msg("remove out of range")
		return model.Product{}, ErrIndexOutOfRange
	}

	removed := r.products[index]
	r.products = append(r.products[:index], r.products[index+1:]...)

	r.logger.Debug().
		Str("product_id", removed.ID).
		Int("size", len(r.products)).
		Msg("product removed")

	return removed, nil
}

// All returns a copy of the collection in insertion order.
func (r *productRepository) All(ctx context.Context) ([]model.Product, error) {
	_, span := r.tracer.Start(ctx, "ProductRepository.All")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]model.Product, len(r.products))
	copy(products, r.products)

	span.SetAttributes(attribute.Int("product.count", len(products)))
	return products, nil
}
