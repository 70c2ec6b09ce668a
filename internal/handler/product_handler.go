package handler

import (
	"net/http"

	"catalog-api/internal/response"
	"catalog-api/internal/service"
	"catalog-api/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Success messages for the write endpoints.
const (
	MsgCreated = "Product created successfully"
	MsgUpdated = "Product updated successfully"
	MsgDeleted = "Product deleted successfully"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service   service.ProductService
	validator validation.ProductValidator
	formatter *response.Formatter
	logger    zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(
	service service.ProductService,
	validator validation.ProductValidator,
	formatter *response.Formatter,
	logger zerolog.Logger,
) *ProductHandler {
	return &ProductHandler{
		service:   service,
		validator: validator,
		formatter: formatter,
		logger:    logger.With().Str("handler", "product").Logger(),
	}
}

// Routes mounts the product endpoints on r.
func (h *ProductHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	// Static segments are matched before the {id} pattern.
	r.Get("/stats", h.Stats)
	r.Get("/search", h.Search)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List handles GET /api/products with optional category, inStock, page and limit.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := parseListQuery(r)

	page, err := h.service.List(r.Context(), query)
	if err != nil {
		h.formatter.Error(w, r, err)
		return
	}

	h.formatter.Success(w, http.StatusOK, response.Envelope{
		Data:       page.Products,
		Count:      response.Int(page.Count),
		Total:      response.Int(page.Total),
		Page:       response.Int(page.Page),
		TotalPages: response.Int(page.TotalPages),
	})
}

// GetByID handles GET /api/products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.formatter.Error(w, r, err)
		return
	}

	h.formatter.Success(w, http.StatusOK, response.Envelope{Data: product})
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.formatter.Error(w, r, err)
		return
	}

	req, err := h.validator.ParseCreate(body)
	if err != nil {
		h.formatter.Error(w, r, err)
		return
	}

	product, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.formatter.Error(w, r, err)
		return
	}

	h.logger.Debug().Str("product_id", product.ID).Msg("create request served")
	h.formatter.Success(w, http.StatusCreated, response.Envelope{Data: product, Message: MsgCreated})
}

// Update handles PUT /api/products/{id}. Only the supplied fields are changed.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.formatter.Error(w, r, err)
		return
	}

	req, err := h.validator.ParseUpdate(body)
	if err != nil {
		h.formatter.Error(w, r, err)
		return
	}

	product, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.formatter.Error(w, r, err)
		return
	}

	h.formatter.Success(w, http.StatusOK, response.Envelope{Data: product, Message: MsgUpdated})
}

// Delete handles DELETE /api/products/{id} and returns the removed record.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.formatter.Error(w, r, err)
		return
	}

	h.formatter.Success(w, http.StatusOK, response.Envelope{Data: product, Message: MsgDeleted})
}

// Search handles GET /api/products/search?q=.
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.formatter.Error(w, r, err)
		return
	}

	h.formatter.Success(w, http.StatusOK, response.Envelope{
		Data:  result.Products,
		Count: response.Int(result.Count),
		Query: response.String(result.Query),
	})
}

// Stats handles GET /api/products/stats.
func (h *ProductHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.formatter.Error(w, r, err)
		return
	}

	h.formatter.Success(w, http.StatusOK, response.Envelope{Data: stats})
}
