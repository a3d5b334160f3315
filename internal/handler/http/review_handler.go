package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/ecommerce-api/internal/review"
)

type ReviewRequest struct {
	Message string `json:"message" validate:"required"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
}

type ReviewHandler struct {
	service  review.Service
	validate *validator.Validate
}

func NewReviewHandler(service review.Service) *ReviewHandler {
	return &ReviewHandler{service: service, validate: newValidator()}
}

// RegisterRoutes expects authed to already require authentication.
func (h *ReviewHandler) RegisterRoutes(authed chi.Router) {
	authed.Post("/reviews/{productID}", h.handleCreate)
}

func (h *ReviewHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, capitalize(errUnauthorized.Error()))
		return
	}

	productID, err := parseIDParam(r, "productID")
	if err != nil {
		respondWithServiceError(w, err, "Invalid product id")
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), productID, u.ID, review.Input{Message: req.Message, Rating: req.Rating})
	if err != nil {
		respondWithServiceError(w, err, "Failed to create review")
		return
	}

	respondWithJSON(w, http.StatusCreated, envelope("Review created successfully", "review", created))
}
