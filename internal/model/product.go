package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product represents a single catalogue record.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     bool    `json:"inStock"`
}

// CreateProductRequest is the validated payload for creating a product.
type CreateProductRequest struct {
	Name        string
	Description string
	Price       float64
	Category    string
	// InStock is nil when the client omitted the field.
	InStock *bool
}

// UpdateProductRequest is the validated payload for a partial update.
// A nil field was not supplied by the client.
type UpdateProductRequest struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	InStock     *bool
}

// ListQuery holds the filters and pagination for listing products.
type ListQuery struct {
	Category string
	// InStock is nil when no stock filter was requested.
	InStock *bool
	Page    int
	Limit   int
}

// ProductPage is one page of a filtered product listing.
type ProductPage struct {
	Products   []Product
	Count      int
	Total      int
	Page       int
	TotalPages int
}

// SearchResult holds the products matching a search query.
type SearchResult struct {
	Products []Product
	Count    int
	Query    string
}

// ProductStats summarises the current catalogue.
type ProductStats struct {
	TotalProducts int             `json:"totalProducts"`
	InStock       int             `json:"inStock"`
	OutOfStock    int             `json:"outOfStock"`
	ByCategory    map[string]int  `json:"byCategory"`
	AveragePrice  decimal.Decimal `json:"averagePrice"`
}

// MarshalJSON renders averagePrice with exactly two decimals ("20.50"), or as
// a bare 0 when the catalogue is empty.
func (s ProductStats) MarshalJSON() ([]byte, error) {
	type stats ProductStats

	var average any = 0
	if s.TotalProducts > 0 {
		average = s.AveragePrice.StringFixed(2)
	}

	return json.Marshal(struct {
		stats
		AveragePrice any `json:"averagePrice"`
	}{stats: stats(s), AveragePrice: average})
}
