package handler

import (
	"io"
	"net/http"
	"strconv"

	"catalog-api/internal/model"
)

const (
	defaultPage  = 1
	defaultLimit = 10

	// maxBodyBytes caps request bodies accepted by the write endpoints.
	maxBodyBytes = 1 << 20
)

// readBody reads the request body, failing with a validation error when it
// cannot be read or exceeds maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, model.NewValidationError(model.MsgInvalidRequestBody)
	}
	return body, nil
}

// parseListQuery reads the listing filters from the query string. The stock
// filter applies whenever the parameter is present; only "true" selects
// in-stock products.
func parseListQuery(r *http.Request) model.ListQuery {
	values := r.URL.Query()

	query := model.ListQuery{
		Category: values.Get("category"),
		Page:     positiveInt(values.Get("page"), defaultPage),
		Limit:    positiveInt(values.Get("limit"), defaultLimit),
	}
	if values.Has("inStock") {
		inStock := values.Get("inStock") == "true"
		query.InStock = &inStock
	}
	return query
}

// positiveInt parses raw as a positive integer, returning fallback otherwise.
func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
