package repository

import (
	"context"
	"errors"

	"catalog-api/internal/model"
)

// ErrIndexOutOfRange is returned when a position does not address a stored product.
var ErrIndexOutOfRange = errors.New("product index out of range")

// ProductRepository defines the ordered product store.
type ProductRepository interface {
	// Append adds a product to the end of the collection.
	Append(ctx context.Context, product model.Product) error

	// Find returns the product with the given ID, or nil if none exists.
	Find(ctx context.Context, id string) (*model.Product, error)

	// IndexOf returns the position of the product with the given ID, or -1.
	IndexOf(ctx context.Context, id string) (int, error)

	// Replace overwrites the product stored at index.
	Replace(ctx context.Context, index int, product model.Product) error

	// RemoveAt removes and returns the product stored at index.
	RemoveAt(ctx context.Context, index int) (model.Product, error)

	// All returns a copy of the collection in insertion order.
	All(ctx context.Context) ([]model.Product, error)
}
