package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog-api/internal/model"
	"catalog-api/internal/response"
	"catalog-api/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, query model.ListQuery) (*model.ProductPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPage), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id string, req *model.UpdateProductRequest) (*model.Product, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Search(ctx context.Context, query string) (*model.SearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchResult), args.Error(1)
}

func (m *MockProductService) Stats(ctx context.Context) (*model.ProductStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductStats), args.Error(1)
}

var laptop = model.Product{
	ID: "1", Name: "Laptop", Description: "High-performance laptop", Price: 999.99, Category: "Electronics", InStock: true,
}

func newTestRouter(svc *MockProductService) http.Handler {
	logger := zerolog.Nop()
	h := NewProductHandler(svc, validation.NewProductValidator(), response.NewFormatter(false, logger), logger)

	r := chi.NewRouter()
	r.Route("/api/products", h.Routes)
	return r
}

func serve(t *testing.T, handler http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
	return rec, decoded
}

func errorMessage(t *testing.T, body map[string]any) string {
	t.Helper()
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error object in %v", body)
	msg, _ := errBody["message"].(string)
	return msg
}

func TestProductHandler_List(t *testing.T) {
	inStock := true
	outOfStock := false

	tests := []struct {
		name          string
		target        string
		expectedQuery model.ListQuery
	}{
		{
			name:          "Default pagination",
			target:        "/api/products",
			expectedQuery: model.ListQuery{Page: 1, Limit: 10},
		},
		{
			name:          "All filters",
			target:        "/api/products?category=Electronics&inStock=true&page=2&limit=5",
			expectedQuery: model.ListQuery{Category: "Electronics", InStock: &inStock, Page: 2, Limit: 5},
		},
		{
			name:          "Any value other than true means out of stock",
			target:        "/api/products?inStock=yes",
			expectedQuery: model.ListQuery{InStock: &outOfStock, Page: 1, Limit: 10},
		},
		{
			name:          "Empty stock filter is still applied",
			target:        "/api/products?inStock=",
			expectedQuery: model.ListQuery{InStock: &outOfStock, Page: 1, Limit: 10},
		},
		{
			name:          "Invalid paging falls back to defaults",
			target:        "/api/products?page=abc&limit=-3",
			expectedQuery: model.ListQuery{Page: 1, Limit: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockProductService)
			svc.On("List", mock.Anything, tt.expectedQuery).Return(&model.ProductPage{
				Products:   []model.Product{laptop},
				Count:      1,
				Total:      3,
				Page:       tt.expectedQuery.Page,
				TotalPages: 3,
			}, nil)

			rec, body := serve(t, newTestRouter(svc), http.MethodGet, tt.target, "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, true, body["success"])
			assert.Equal(t, float64(1), body["count"])
			assert.Equal(t, float64(3), body["total"])
			assert.Equal(t, float64(tt.expectedQuery.Page), body["page"])
			assert.Equal(t, float64(3), body["totalPages"])
			assert.Len(t, body["data"], 1)
			svc.AssertExpectations(t)
		})
	}
}

func TestProductHandler_List_EmptyPage(t *testing.T) {
	svc := new(MockProductService)
	svc.On("List", mock.Anything, mock.Anything).Return(&model.ProductPage{
		Products: []model.Product{}, Total: 3, Page: 9, TotalPages: 1,
	}, nil)

	rec, _ := serve(t, newTestRouter(svc), http.MethodGet, "/api/products?page=9", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[],"count":0,"total":3,"page":9,"totalPages":1}`, rec.Body.String())
}

func TestProductHandler_GetByID(t *testing.T) {
	tests := []struct {
		name            string
		id              string
		mockReturn      *model.Product
		mockError       error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:           "Success",
			id:             "1",
			mockReturn:     &laptop,
			expectedStatus: http.StatusOK,
		},
		{
			name:            "Product not found",
			id:              "999",
			mockError:       model.NewNotFoundError("999"),
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Product with ID 999 not found",
		},
		{
			name:            "Service error is hidden",
			id:              "1",
			mockError:       errors.New("store unavailable"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockProductService)
			if tt.mockReturn != nil {
				svc.On("GetByID", mock.Anything, tt.id).Return(tt.mockReturn, nil)
			} else {
				svc.On("GetByID", mock.Anything, tt.id).Return(nil, tt.mockError)
			}

			rec, body := serve(t, newTestRouter(svc), http.MethodGet, "/api/products/"+tt.id, "")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				data := body["data"].(map[string]any)
				assert.Equal(t, "Laptop", data["name"])
				assert.Equal(t, true, data["inStock"])
			} else {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.expectedMessage, errorMessage(t, body))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockProductService)
		expectedReq := &model.CreateProductRequest{Name: "Lamp", Description: "Desk lamp", Price: 19.99, Category: "Furniture"}
		svc.On("Create", mock.Anything, expectedReq).Return(&model.Product{
			ID: "abc", Name: "Lamp", Description: "Desk lamp", Price: 19.99, Category: "Furniture", InStock: true,
		}, nil)

		rec, body := serve(t, newTestRouter(svc), http.MethodPost, "/api/products",
			`{"name":"Lamp","description":"Desk lamp","price":"19.99","category":"Furniture"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, MsgCreated, body["message"])
		assert.Equal(t, "abc", body["data"].(map[string]any)["id"])
		svc.AssertExpectations(t)
	})

	t.Run("Validation failure never reaches the service", func(t *testing.T) {
		svc := new(MockProductService)

		rec, body := serve(t, newTestRouter(svc), http.MethodPost, "/api/products", `{"name":"","price":-5}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Validation failed", errorMessage(t, body))
		errs := body["error"].(map[string]any)["errors"].([]any)
		assert.Equal(t, []any{
			validation.MsgName, validation.MsgDescription, validation.MsgPriceInvalid, validation.MsgCategory,
		}, errs)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		svc := new(MockProductService)

		rec, body := serve(t, newTestRouter(svc), http.MethodPost, "/api/products", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", errorMessage(t, body))
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestProductHandler_Update(t *testing.T) {
	t.Run("Price only", func(t *testing.T) {
		svc := new(MockProductService)
		price := 1099.99
		svc.On("Update", mock.Anything, "1", &model.UpdateProductRequest{Price: &price}).Return(&model.Product{
			ID: "1", Name: "Laptop", Description: "High-performance laptop", Price: price, Category: "Electronics", InStock: true,
		}, nil)

		rec, body := serve(t, newTestRouter(svc), http.MethodPut, "/api/products/1", `{"price":1099.99}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, MsgUpdated, body["message"])
		assert.Equal(t, 1099.99, body["data"].(map[string]any)["price"])
		svc.AssertExpectations(t)
	})

	t.Run("Not found", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("Update", mock.Anything, "nope", mock.Anything).Return(nil, model.NewNotFoundError("nope"))

		rec, body := serve(t, newTestRouter(svc), http.MethodPut, "/api/products/nope", `{"price":1}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Product with ID nope not found", errorMessage(t, body))
	})

	t.Run("Invalid field", func(t *testing.T) {
		svc := new(MockProductService)

		rec, body := serve(t, newTestRouter(svc), http.MethodPut, "/api/products/1", `{"inStock":"yes"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []any{validation.MsgInStock}, body["error"].(map[string]any)["errors"])
		svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProductHandler_Delete(t *testing.T) {
	t.Run("Success returns the removed record", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("Delete", mock.Anything, "1").Return(&laptop, nil)

		rec, body := serve(t, newTestRouter(svc), http.MethodDelete, "/api/products/1", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, MsgDeleted, body["message"])
		assert.Equal(t, "1", body["data"].(map[string]any)["id"])
	})

	t.Run("Not found", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("Delete", mock.Anything, "1").Return(nil, model.NewNotFoundError("1"))

		rec, _ := serve(t, newTestRouter(svc), http.MethodDelete, "/api/products/1", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProductHandler_Search(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("Search", mock.Anything, "lap").Return(&model.SearchResult{
			Products: []model.Product{laptop}, Count: 1, Query: "lap",
		}, nil)

		rec, body := serve(t, newTestRouter(svc), http.MethodGet, "/api/products/search?q=lap", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), body["count"])
		assert.Equal(t, "lap", body["query"])
		svc.AssertExpectations(t)
	})

	t.Run("Missing query", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("Search", mock.Anything, "").Return(nil, model.NewValidationError(model.MsgSearchQueryRequired))

		rec, body := serve(t, newTestRouter(svc), http.MethodGet, "/api/products/search", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, `Search query parameter "q" is required`, errorMessage(t, body))
	})
}

func TestProductHandler_Stats(t *testing.T) {
	svc := new(MockProductService)
	svc.On("Stats", mock.Anything).Return(&model.ProductStats{
		TotalProducts: 3,
		InStock:       2,
		OutOfStock:    1,
		ByCategory:    map[string]int{"Electronics": 1, "Appliances": 1, "Furniture": 1},
		AveragePrice:  decimal.RequireFromString("443.32"),
	}, nil)

	rec, _ := serve(t, newTestRouter(svc), http.MethodGet, "/api/products/stats", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"success": true,
		"data": {
			"totalProducts": 3,
			"inStock": 2,
			"outOfStock": 1,
			"byCategory": {"Electronics": 1, "Appliances": 1, "Furniture": 1},
			"averagePrice": "443.32"
		}
	}`, rec.Body.String())
	svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestParseListQuery_PositiveInt(t *testing.T) {
	tests := []struct {
		raw      string
		expected int
	}{
		{raw: "", expected: 7},
		{raw: "3", expected: 3},
		{raw: "0", expected: 7},
		{raw: "-1", expected: 7},
		{raw: "2.5", expected: 7},
		{raw: "abc", expected: 7},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, positiveInt(tt.raw, 7))
		})
	}
}
