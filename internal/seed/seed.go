// Package seed provides the catalogue the product store starts with.
//
// Seed files are JSON lines, one product per line, optionally gzipped. Every
// line goes through the same validation as a create request and receives a
// fresh ID. Files can be read from the local file system or from S3.
package seed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"catalog-api/internal/model"
	"catalog-api/internal/validation"

	"github.com/google/uuid"
)

// Loader defines the interface for loading seed catalogues.
type Loader interface {
	// Load reads the catalogue at path and returns its products in file order.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// DefaultProducts returns the built-in catalogue used when no seed file is configured.
func DefaultProducts() []model.Product {
	return []model.Product{
		{
			ID:          uuid.NewString(),
			Name:        "Laptop",
			Description: "High-performance laptop",
			Price:       999.99,
			Category:    "Electronics",
			InStock:     true,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Coffee Maker",
			Description: "Automatic coffee maker",
			Price:       79.99,
			Category:    "Appliances",
			InStock:     true,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Desk Chair",
			Description: "Ergonomic office chair",
			Price:       249.99,
			Category:    "Furniture",
			InStock:     false,
		},
	}
}

// ctxCheckEvery is the number of lines read between context checks.
const ctxCheckEvery = 10_000

// decode reads JSON-lines product records from r. Blank lines are skipped;
// the first invalid line fails the whole load.
func decode(ctx context.Context, r io.Reader, validator validation.ProductValidator, source string) ([]model.Product, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	products := make([]model.Product, 0)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		req, err := validator.ParseCreate([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("invalid product in %s at line %d: %s", source, lineNo, describe(err))
		}

		inStock := true
		if req.InStock != nil {
			inStock = *req.InStock
		}
		products = append(products, model.Product{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Category:    req.Category,
			InStock:     inStock,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", source, err)
	}

	return products, nil
}

// describe flattens a validation error and its field problems into one line.
func describe(err error) string {
	var de *model.DomainError
	if !errors.As(err, &de) || len(de.Errors) == 0 {
		return err.Error()
	}
	return de.Message + ": " + strings.Join(de.Errors, "; ")
}
