package validation

import (
	"errors"
	"testing"

	"catalog-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValidationError(t *testing.T, err error) *model.DomainError {
	t.Helper()
	require.Error(t, err)
	var de *model.DomainError
	require.True(t, errors.As(err, &de), "expected a DomainError, got %T", err)
	assert.Equal(t, model.KindValidation, de.Kind)
	return de
}

func TestProductValidator_ParseCreate_Success(t *testing.T) {
	v := NewProductValidator()

	tests := []struct {
		name            string
		body            string
		expectedPrice   float64
		expectedInStock *bool
	}{
		{
			name:          "Numeric price, inStock omitted",
			body:          `{"name":"Lamp","description":"Desk lamp","price":19.99,"category":"Furniture"}`,
			expectedPrice: 19.99,
		},
		{
			name:            "String price is coerced",
			body:            `{"name":"Lamp","description":"Desk lamp","price":"25.50","category":"Furniture","inStock":false}`,
			expectedPrice:   25.5,
			expectedInStock: func() *bool { b := false; return &b }(),
		},
		{
			name:          "Zero price is allowed",
			body:          `{"name":"Sticker","description":"Free sticker","price":0,"category":"Promo"}`,
			expectedPrice: 0,
		},
		{
			name:            "Unknown fields are ignored",
			body:            `{"name":"Lamp","description":"Desk lamp","price":5,"category":"Furniture","inStock":true,"colour":"red"}`,
			expectedPrice:   5,
			expectedInStock: func() *bool { b := true; return &b }(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := v.ParseCreate([]byte(tt.body))
			require.NoError(t, err)
			require.NotNil(t, req)
			assert.Equal(t, tt.expectedPrice, req.Price)
			assert.Equal(t, tt.expectedInStock, req.InStock)
			assert.NotEmpty(t, req.Name)
			assert.NotEmpty(t, req.Category)
		})
	}
}

func TestProductValidator_ParseCreate_Errors(t *testing.T) {
	v := NewProductValidator()

	tests := []struct {
		name           string
		body           string
		expectedErrors []string
	}{
		{
			name:           "Empty object reports every required field",
			body:           `{}`,
			expectedErrors: []string{MsgName, MsgDescription, MsgPriceMissing, MsgCategory},
		},
		{
			name:           "Negative price",
			body:           `{"name":"Lamp","description":"Desk lamp","price":-1,"category":"Furniture"}`,
			expectedErrors: []string{MsgPriceInvalid},
		},
		{
			name:           "Non-numeric price string",
			body:           `{"name":"Lamp","description":"Desk lamp","price":"cheap","category":"Furniture"}`,
			expectedErrors: []string{MsgPriceInvalid},
		},
		{
			name:           "Null price",
			body:           `{"name":"Lamp","description":"Desk lamp","price":null,"category":"Furniture"}`,
			expectedErrors: []string{MsgPriceMissing},
		},
		{
			name:           "Whitespace-only text fields",
			body:           `{"name":"   ","description":"\t","price":1,"category":" "}`,
			expectedErrors: []string{MsgName, MsgDescription, MsgCategory},
		},
		{
			name:           "Wrong types",
			body:           `{"name":42,"description":true,"price":1,"category":["a"],"inStock":"yes"}`,
			expectedErrors: []string{MsgName, MsgDescription, MsgCategory, MsgInStock},
		},
		{
			name:           "Null inStock",
			body:           `{"name":"Lamp","description":"Desk lamp","price":1,"category":"Furniture","inStock":null}`,
			expectedErrors: []string{MsgInStock},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := v.ParseCreate([]byte(tt.body))
			assert.Nil(t, req)
			de := requireValidationError(t, err)
			assert.Equal(t, "Validation failed", de.Message)
			assert.Equal(t, tt.expectedErrors, de.Errors)
		})
	}
}

func TestProductValidator_ParseCreate_InvalidBody(t *testing.T) {
	v := NewProductValidator()

	for _, body := range []string{``, `not json`, `null`, `[1,2]`, `"text"`} {
		t.Run(body, func(t *testing.T) {
			req, err := v.ParseCreate([]byte(body))
			assert.Nil(t, req)
			de := requireValidationError(t, err)
			assert.Equal(t, "Invalid request body", de.Message)
			assert.Empty(t, de.Errors)
		})
	}
}

func TestProductValidator_ParseUpdate(t *testing.T) {
	v := NewProductValidator()

	t.Run("Price only", func(t *testing.T) {
		req, err := v.ParseUpdate([]byte(`{"price":12.5}`))
		require.NoError(t, err)
		require.NotNil(t, req.Price)
		assert.Equal(t, 12.5, *req.Price)
		assert.Nil(t, req.Name)
		assert.Nil(t, req.Description)
		assert.Nil(t, req.Category)
		assert.Nil(t, req.InStock)
	})

	t.Run("Zero price is kept as provided", func(t *testing.T) {
		req, err := v.ParseUpdate([]byte(`{"price":"0"}`))
		require.NoError(t, err)
		require.NotNil(t, req.Price)
		assert.Equal(t, 0.0, *req.Price)
	})

	t.Run("Explicit false inStock", func(t *testing.T) {
		req, err := v.ParseUpdate([]byte(`{"inStock":false}`))
		require.NoError(t, err)
		require.NotNil(t, req.InStock)
		assert.False(t, *req.InStock)
	})

	t.Run("Empty object is a no-op update", func(t *testing.T) {
		req, err := v.ParseUpdate([]byte(`{}`))
		require.NoError(t, err)
		assert.Equal(t, &model.UpdateProductRequest{}, req)
	})

	t.Run("Text fields", func(t *testing.T) {
		req, err := v.ParseUpdate([]byte(`{"name":"Gaming Laptop","category":"electronics"}`))
		require.NoError(t, err)
		require.NotNil(t, req.Name)
		require.NotNil(t, req.Category)
		assert.Equal(t, "Gaming Laptop", *req.Name)
		assert.Equal(t, "electronics", *req.Category)
		assert.Nil(t, req.Description)
	})

	t.Run("Present fields are still validated", func(t *testing.T) {
		req, err := v.ParseUpdate([]byte(`{"name":"","price":-3,"inStock":"no"}`))
		assert.Nil(t, req)
		de := requireValidationError(t, err)
		assert.Equal(t, []string{MsgName, MsgPriceInvalid, MsgInStock}, de.Errors)
	})

	t.Run("Malformed body", func(t *testing.T) {
		req, err := v.ParseUpdate([]byte(`{"name":`))
		assert.Nil(t, req)
		de := requireValidationError(t, err)
		assert.Equal(t, "Invalid request body", de.Message)
	})
}
