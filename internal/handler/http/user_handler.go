package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-api/internal/order"
	"github.com/vasiliy-maslov/ecommerce-api/internal/user"
)

type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ShippingAddressRequest struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Province   string `json:"province" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
}

func (req ShippingAddressRequest) toDomain() user.ShippingAddress {
	return user.ShippingAddress{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Province:   req.Province,
		Country:    req.Country,
		Phone:      req.Phone,
	}
}

type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

type UserOrderLister interface {
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
}

type ProfileResponse struct {
	*user.User
	Orders []order.Order `json:"orders"`
}

type UserHandler struct {
	service  user.Service
	orders   UserOrderLister
	tokens   TokenIssuer
	validate *validator.Validate
}

func NewUserHandler(service user.Service, orders UserOrderLister, tokens TokenIssuer) *UserHandler {
	return &UserHandler{
		service:  service,
		orders:   orders,
		tokens:   tokens,
		validate: newValidator(),
	}
}

// RegisterRoutes mounts the public routes on public and the rest on
// authed, which must already require authentication. limit wraps the
// credential endpoints.
func (h *UserHandler) RegisterRoutes(public, authed chi.Router, limit func(http.Handler) http.Handler) {
	public.With(limit).Post("/users/register", h.handleRegister)
	public.With(limit).Post("/users/login", h.handleLogin)
	authed.Get("/users/profile", h.handleProfile)
	authed.Put("/users/update/shipping", h.handleUpdateShipping)
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.service.Register(r.Context(), user.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to register user")
		return
	}

	respondWithJSON(w, http.StatusCreated, envelope("User registered successfully", "user", created))
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	u, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, err, "Failed to login")
		return
	}

	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("Failed to issue token")
		respondWithError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	body := envelope("User logged in successfully", "user", u)
	body["token"] = token
	respondWithJSON(w, http.StatusOK, body)
}

func (h *UserHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, capitalize(errUnauthorized.Error()))
		return
	}

	orders, err := h.orders.ListOrdersByUser(r.Context(), u.ID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch profile")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope("User profile fetched successfully", "user", ProfileResponse{User: u, Orders: orders}))
}

func (h *UserHandler) handleUpdateShipping(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, capitalize(errUnauthorized.Error()))
		return
	}

	var req ShippingAddressRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	updated, err := h.service.UpdateShippingAddress(r.Context(), u.ID, req.toDomain())
	if err != nil {
		respondWithServiceError(w, err, "Failed to update shipping address")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope("User shipping address updated successfully", "user", updated))
}
