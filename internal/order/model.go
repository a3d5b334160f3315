package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-api/internal/user"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
)

const (
	DefaultCurrency      = "usd"
	DefaultPaymentStatus = "Not paid"
	DefaultPaymentMethod = "Not specified"
)

func (os OrderStatus) String() string {
	return string(os)
}

func (os OrderStatus) Valid() bool {
	_, ok := allowedTransitions[os]
	return ok
}

// OrderItem is a line of the order, priced when the order was placed.
type OrderItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

// Customer is the owner summary attached to admin listings.
type Customer struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type Order struct {
	ID              uuid.UUID            `json:"id"`
	OrderNumber     string               `json:"orderNumber"`
	UserID          uuid.UUID            `json:"user"`
	Customer        *Customer            `json:"customer,omitempty"`
	OrderItems      []OrderItem          `json:"orderItems"`
	ShippingAddress user.ShippingAddress `json:"shippingAddress"`
	TotalPrice      decimal.Decimal      `json:"totalPrice"`
	Currency        string               `json:"currency"`
	PaymentStatus   string               `json:"paymentStatus"`
	PaymentMethod   string               `json:"paymentMethod"`
	Status          OrderStatus          `json:"status"`
	CouponCode      *string              `json:"couponCode,omitempty"`
	Discount        decimal.Decimal      `json:"discount"`
	DeliveredAt     *time.Time           `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

type ItemInput struct {
	ProductID uuid.UUID
	Qty       int
}

type CreateInput struct {
	OrderItems      []ItemInput
	ShippingAddress *user.ShippingAddress
	CouponCode      string
}

type SalesStats struct {
	MinimumSale decimal.Decimal `json:"minimumSale"`
	TotalSales  decimal.Decimal `json:"totalSales"`
	MaxSale     decimal.Decimal `json:"maxSale"`
	AvgSale     decimal.Decimal `json:"avgSale"`
	OrderCount  int             `json:"orderCount"`
	SaleToday   decimal.Decimal `json:"saleToday"`
}
