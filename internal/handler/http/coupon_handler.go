package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-api/internal/coupon"
)

type CouponRequest struct {
	Code      string           `json:"code" validate:"required"`
	StartDate *time.Time       `json:"startDate" validate:"required"`
	EndDate   *time.Time       `json:"endDate" validate:"required"`
	Discount  *decimal.Decimal `json:"discount" validate:"required"`
}

func (req CouponRequest) toInput() coupon.Input {
	return coupon.Input{
		Code:      req.Code,
		StartDate: *req.StartDate,
		EndDate:   *req.EndDate,
		Discount:  *req.Discount,
	}
}

// CouponResponse adds the time dependent fields to a stored coupon.
type CouponResponse struct {
	coupon.Coupon
	IsExpired bool `json:"isExpired"`
	DaysLeft  int  `json:"daysLeft"`
}

type CouponHandler struct {
	service  coupon.Service
	validate *validator.Validate
	now      func() time.Time
}

func NewCouponHandler(service coupon.Service) *CouponHandler {
	return &CouponHandler{service: service, validate: newValidator(), now: time.Now}
}

func (h *CouponHandler) toResponse(c coupon.Coupon) CouponResponse {
	now := h.now()
	return CouponResponse{Coupon: c, IsExpired: c.IsExpired(now), DaysLeft: c.DaysLeft(now)}
}

func (h *CouponHandler) RegisterRoutes(r, admin chi.Router) {
	r.Get("/coupons", h.handleList)
	r.Get("/coupons/single", h.handleGetByCode)
	r.Get("/coupons/{id}", h.handleGet)
	admin.Post("/coupons", h.handleCreate)
	admin.Put("/coupons/update/{id}", h.handleUpdate)
	admin.Delete("/coupons/delete/{id}", h.handleDelete)
}

func (h *CouponHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, capitalize(errUnauthorized.Error()))
		return
	}

	var req CouponRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), req.toInput(), u.ID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create coupon")
		return
	}

	respondWithJSON(w, http.StatusCreated, envelope("Coupon created successfully", "coupon", h.toResponse(*created)))
}

func (h *CouponHandler) handleList(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.service.List(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch coupons")
		return
	}

	resp := make([]CouponResponse, 0, len(coupons))
	for _, c := range coupons {
		resp = append(resp, h.toResponse(c))
	}
	respondWithJSON(w, http.StatusOK, envelope("All coupons", "coupons", resp))
}

func (h *CouponHandler) handleGetByCode(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "Code parameter cannot be empty")
		return
	}

	c, err := h.service.GetByCode(r.Context(), code)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch coupon")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope("Coupon fetched", "coupon", h.toResponse(*c)))
}

func (h *CouponHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithServiceError(w, err, "Invalid id parameter")
		return
	}

	c, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch coupon")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope("Coupon fetched", "coupon", h.toResponse(*c)))
}

func (h *CouponHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithServiceError(w, err, "Invalid id parameter")
		return
	}

	var req CouponRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, req.toInput())
	if err != nil {
		respondWithServiceError(w, err, "Failed to update coupon")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope("Coupon updated successfully", "coupon", h.toResponse(*updated)))
}

func (h *CouponHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithServiceError(w, err, "Invalid id parameter")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete coupon")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope("Coupon deleted successfully", "", nil))
}
