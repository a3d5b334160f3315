package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-api/internal/product"
	"github.com/vasiliy-maslov/ecommerce-api/internal/review"
)

type ProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Brand       string           `json:"brand" validate:"required"`
	Category    string           `json:"category" validate:"required"`
	Sizes       []string         `json:"sizes" validate:"required,min=1"`
	Colors      []string         `json:"colors" validate:"required,min=1"`
	Images      []string         `json:"images" validate:"omitempty,dive,url"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	TotalQty    *int             `json:"totalQty" validate:"required,gte=0"`
}

func (req ProductRequest) toInput() product.Input {
	return product.Input{
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		Category:    req.Category,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		Images:      req.Images,
		Price:       *req.Price,
		TotalQty:    *req.TotalQty,
	}
}

type ReviewLister interface {
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]review.Review, error)
}

type ProductDetail struct {
	*product.Product
	Reviews []review.Review `json:"reviews"`
}

type ProductHandler struct {
	service  product.Service
	reviews  ReviewLister
	validate *validator.Validate
}

func NewProductHandler(service product.Service, reviews ReviewLister) *ProductHandler {
	return &ProductHandler{service: service, reviews: reviews, validate: newValidator()}
}

func (h *ProductHandler) RegisterRoutes(r, admin chi.Router) {
	r.Get("/products", h.handleList)
	r.Get("/products/{id}", h.handleGet)
	admin.Post("/products", h.handleCreate)
	admin.Put("/products/{id}", h.handleUpdate)
	admin.Delete("/products/{id}", h.handleDelete)
}

func queryInt(r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, ok := queryInt(r, "page")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid page parameter")
		return
	}
	limit, ok := queryInt(r, "limit")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}
	price, err := product.ParsePriceRange(q.Get("price"))
	if err != nil {
		respondWithServiceError(w, err, "Invalid price parameter")
		return
	}

	result, err := h.service.List(r.Context(), product.Filter{
		Name:     q.Get("name"),
		Brand:    q.Get("brand"),
		Category: q.Get("category"),
		Color:    q.Get("color"),
		Size:     q.Get("size"),
		Price:    price,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch products")
		return
	}

	body := envelope("Products fetched successfully", "products", result.Products)
	body["total"] = result.Total
	body["results"] = len(result.Products)
	body["page"] = result.Page
	body["limit"] = result.Limit
	body["pagination"] = result.Pagination
	respondWithJSON(w, http.StatusOK, body)
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithServiceError(w, err, "Invalid id parameter")
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch product")
		return
	}

	reviews, err := h.reviews.ListByProduct(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch product reviews")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope("Product fetched successfully", "product", ProductDetail{Product: p, Reviews: reviews}))
}

func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, capitalize(errUnauthorized.Error()))
		return
	}

	var req ProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), req.toInput(), u.ID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, envelope("Product created successfully", "product", created))
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithServiceError(w, err, "Invalid id parameter")
		return
	}

	var req ProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, req.toInput())
	if err != nil {
		respondWithServiceError(w, err, "Failed to update product")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope("Product updated successfully", "product", updated))
}

func (h *ProductHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithServiceError(w, err, "Invalid id parameter")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete product")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope("Product deleted successfully", "", nil))
}
