package service

import (
	"context"
	"strings"
	"sync"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Operation results recorded by the operations counter.
const (
	resultSuccess  = "success"
	resultNotFound = "not_found"
	resultInvalid  = "invalid"
	resultError    = "error"
)

// productService implements ProductService.
type productService struct {
	// mu serializes the find-then-mutate sequences of Update and Delete.
	mu sync.Mutex

	productRepo repository.ProductRepository
	tracer      trace.Tracer
	operations  *prometheus.CounterVec
	logger      zerolog.Logger
	newID       func() string
}

// NewProductService creates a new product service. The operations counter is
// registered with registerer when it is not nil.
func NewProductService(
	productRepo repository.ProductRepository,
	tracer trace.Tracer,
	registerer prometheus.Registerer,
	logger zerolog.Logger,
) ProductService {
	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_product_operations_total",
			Help: "Product operations by operation and result",
		},
		[]string{"operation", "result"},
	)
	if registerer != nil {
		registerer.MustRegister(operations)
	}

	return &productService{
		productRepo: productRepo,
		tracer:      tracer,
		operations:  operations,
		logger:      logger.With().Str("service", "product").Logger(),
		newID:       uuid.NewString,
	}
}

// List filters the catalogue by category and stock state and returns one page of it.
func (s *productService) List(ctx context.Context, query model.ListQuery) (page *model.ProductPage, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.List")
	defer span.End()
	defer func() { s.observe(span, "list", err) }()

	if query.Page < 1 {
		query.Page = defaultPage
	}
	if query.Limit < 1 {
		query.Limit = defaultLimit
	}

	products, err := s.productRepo.All(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, errors.Wrap(err, "failed to list products")
	}

	filtered := make([]model.Product, 0, len(products))
	for _, p := range products {
		if query.Category != "" && !strings.EqualFold(p.Category, query.Category) {
			continue
		}
		if query.InStock != nil && p.InStock != *query.InStock {
			continue
		}
		filtered = append(filtered, p)
	}

	total := len(filtered)
	totalPages := total / query.Limit
	if total%query.Limit != 0 {
		totalPages++
	}

	items := []model.Product{}
	if query.Page <= totalPages {
		start := (query.Page - 1) * query.Limit
		end := total
		if total-start > query.Limit {
			end = start + query.Limit
		}
		items = filtered[start:end]
	}

	span.SetAttributes(
		attribute.Int("catalog.total", total),
		attribute.Int("catalog.page", query.Page),
	)
	s.logger.Debug().
		Str("category", query.Category).
		Int("total", total).
		Int("page", query.Page).
		Int("limit", query.Limit).
		Int("count", len(items)).
		Msg("listed products")

	return &model.ProductPage{
		Products:   items,
		Count:      len(items),
		Total:      total,
		Page:       query.Page,
		TotalPages: totalPages,
	}, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (product *model.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetByID")
	defer span.End()
	defer func() { s.observe(span, "get", err) }()
	span.SetAttributes(attribute.String("product.id", id))

	product, err = s.productRepo.Find(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, errors.Wrap(err, "failed to get product")
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.NewNotFoundError(id)
	}

	return product, nil
}

// Create adds a new product with a freshly generated ID.
func (s *productService) Create(ctx context.Context, req *model.CreateProductRequest) (product *model.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Create")
	defer span.End()
	defer func() { s.observe(span, "create", err) }()

	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	created := model.Product{
		ID:          s.newID(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		InStock:     inStock,
	}
	span.SetAttributes(attribute.String("product.id", created.ID))

	if err := s.productRepo.Append(ctx, created); err != nil {
		s.logger.Error().Err(err).Str("product_name", req.Name).Msg("failed to create product")
		return nil, errors.Wrap(err, "failed to create product")
	}

	s.logger.Info().
		Str("product_id", created.ID).
		Str("category", created.Category).
		Msg("product created")

	return &created, nil
}

// Update merges the supplied fields into an existing product. Text fields are
// only replaced by non-empty values; price and stock state are replaced
// whenever they are supplied.
func (s *productService) Update(ctx context.Context, id string, req *model.UpdateProductRequest) (product *model.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Update")
	defer span.End()
	defer func() { s.observe(span, "update", err) }()
	span.SetAttributes(attribute.String("product.id", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.productRepo.Find(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to find product for update")
		return nil, errors.Wrap(err, "failed to update product")
	}
	if existing == nil {
		return nil, model.NewNotFoundError(id)
	}

	idx, err := s.productRepo.IndexOf(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update product")
	}
	if idx < 0 {
		return nil, model.NewNotFoundError(id)
	}

	updated := *existing
	if req.Name != nil && *req.Name != "" {
		updated.Name = *req.Name
	}
	if req.Description != nil && *req.Description != "" {
		updated.Description = *req.Description
	}
	if req.Category != nil && *req.Category != "" {
		updated.Category = *req.Category
	}
	if req.Price != nil {
		updated.Price = *req.Price
	}
	if req.InStock != nil {
		updated.InStock = *req.InStock
	}

	if err := s.productRepo.Replace(ctx, idx, updated); err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Int("index", idx).Msg("failed to replace product")
		return nil, errors.Wrap(err, "failed to update product")
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")
	return &updated, nil
}

// Delete removes a product and returns the removed record.
func (s *productService) Delete(ctx context.Context, id string) (product *model.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Delete")
	defer span.End()
	defer func() { s.observe(span, "delete", err) }()
	span.SetAttributes(attribute.String("product.id", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.productRepo.IndexOf(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to find product for delete")
		return nil, errors.Wrap(err, "failed to delete product")
	}
	if idx < 0 {
		return nil, model.NewNotFoundError(id)
	}

	removed, err := s.productRepo.RemoveAt(ctx, idx)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Int("index", idx).Msg("failed to remove product")
		return nil, errors.Wrap(err, "failed to delete product")
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return &removed, nil
}

// Search returns products whose name or description contains query, ignoring case.
func (s *productService) Search(ctx context.Context, query string) (result *model.SearchResult, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Search")
	defer span.End()
	defer func() { s.observe(span, "search", err) }()

	if query == "" {
		return nil, model.NewValidationError(model.MsgSearchQueryRequired)
	}
	span.SetAttributes(attribute.String("catalog.query", query))

	products, err := s.productRepo.All(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("failed to search products")
		return nil, errors.Wrap(err, "failed to search products")
	}

	needle := strings.ToLower(query)
	matches := make([]model.Product, 0)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			matches = append(matches, p)
		}
	}

	s.logger.Debug().Str("query", query).Int("count", len(matches)).Msg("searched products")

	return &model.SearchResult{
		Products: matches,
		Count:    len(matches),
		Query:    query,
	}, nil
}

// Stats summarises the catalogue. The average price is rounded to two places.
func (s *productService) Stats(ctx context.Context) (stats *model.ProductStats, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Stats")
	defer span.End()
	defer func() { s.observe(span, "stats", err) }()

	products, err := s.productRepo.All(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute product stats")
		return nil, errors.Wrap(err, "failed to compute product stats")
	}

	stats = &model.ProductStats{
		TotalProducts: len(products),
		ByCategory:    make(map[string]int),
		AveragePrice:  decimal.Zero,
	}

	sum := decimal.Zero
	for _, p := range products {
		if p.InStock {
			stats.InStock++
		} else {
			stats.OutOfStock++
		}
		stats.ByCategory[p.Category]++
		sum = sum.Add(decimal.NewFromFloat(p.Price))
	}

	if len(products) > 0 {
		stats.AveragePrice = sum.Div(decimal.NewFromInt(int64(len(products)))).Round(2)
	}

	return stats, nil
}

// observe records the outcome of an operation on the span and the operations counter.
func (s *productService) observe(span trace.Span, operation string, err error) {
	result := resultSuccess
	switch {
	case err == nil:
	case model.KindOf(err) == model.KindNotFound:
		result = resultNotFound
	case model.KindOf(err) == model.KindValidation:
		result = resultInvalid
	default:
		result = resultError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.operations.WithLabelValues(operation, result).Inc()
}
