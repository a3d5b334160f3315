package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-api/internal/order"
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest      `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress *ShippingAddressRequest `json:"shippingAddress" validate:"omitempty"`
	// Accepted for client compatibility; the total is always recomputed.
	TotalPrice *decimal.Decimal `json:"totalPrice,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{service: service, validate: newValidator()}
}

func (h *OrderHandler) RegisterRoutes(authed, admin chi.Router) {
	authed.Post("/orders", h.handleCreate)
	authed.Get("/orders/{id}", h.handleGet)
	admin.Get("/orders", h.handleList)
	admin.Get("/orders/sales/sum", h.handleSalesStats)
	admin.Put("/orders/update/{id}", h.handleUpdateStatus)
}

func (h *OrderHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, capitalize(errUnauthorized.Error()))
		return
	}

	var req CreateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	input := order.CreateInput{
		OrderItems: make([]order.ItemInput, 0, len(req.OrderItems)),
		CouponCode: r.URL.Query().Get("coupon"),
	}
	for _, item := range req.OrderItems {
		input.OrderItems = append(input.OrderItems, order.ItemInput{ProductID: item.ProductID, Qty: item.Qty})
	}
	if req.ShippingAddress != nil {
		addr := req.ShippingAddress.toDomain()
		input.ShippingAddress = &addr
	}

	created, err := h.service.CreateOrder(r.Context(), u.ID, input)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create order")
		return
	}

	respondWithJSON(w, http.StatusCreated, envelope("Order created", "order", created))
}

func (h *OrderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch orders")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope("All orders", "orders", orders))
}

// handleGet lets a user see their own orders; admins see any.
func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, capitalize(errUnauthorized.Error()))
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithServiceError(w, err, "Invalid id parameter")
		return
	}

	o, err := h.service.GetOrderByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch order")
		return
	}

	if o.UserID != u.ID && !u.IsAdmin {
		respondWithError(w, http.StatusForbidden, "Access denied")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope("Single order", "order", o))
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithServiceError(w, err, "Invalid id parameter")
		return
	}

	var req UpdateOrderStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	updated, err := h.service.UpdateOrderStatus(r.Context(), id, order.OrderStatus(req.Status))
	if err != nil {
		respondWithServiceError(w, err, "Failed to update order status")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope("Order updated", "updatedOrder", updated))
}

func (h *OrderHandler) handleSalesStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.SalesStats(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to compute sales")
		return
	}

	respondWithJSON(w, http.StatusOK, envelope("Sum of orders", "orders", stats))
}
