package service

import (
	"context"

	"catalog-api/internal/model"
)

// ProductService defines operations for catalogue management.
type ProductService interface {
	// List filters the catalogue by category and stock state and returns one page of it.
	List(ctx context.Context, query model.ListQuery) (*model.ProductPage, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Create adds a new product with a freshly generated ID.
	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)

	// Update merges the supplied fields into an existing product.
	Update(ctx context.Context, id string, req *model.UpdateProductRequest) (*model.Product, error)

	// Delete removes a product and returns the removed record.
	Delete(ctx context.Context, id string) (*model.Product, error)

	// Search returns products whose name or description contains query, ignoring case.
	Search(ctx context.Context, query string) (*model.SearchResult, error)

	// Stats summarises the catalogue.
	Stats(ctx context.Context) (*model.ProductStats, error)
}
