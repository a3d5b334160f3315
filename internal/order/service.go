package order

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-api/internal/coupon"
	"github.com/vasiliy-maslov/ecommerce-api/internal/product"
	"github.com/vasiliy-maslov/ecommerce-api/internal/user"
)

// Statuses only move forward; skipping ahead is allowed.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusProcessing: true,
		StatusShipped:    true,
		StatusDelivered:  true,
	},
	StatusProcessing: {
		StatusShipped:   true,
		StatusDelivered: true,
	},
	StatusShipped: {
		StatusDelivered: true,
	},
	StatusDelivered: {},
}

var (
	ErrProductNotFound         = errors.New("product not found")
	ErrShippingAddressRequired = errors.New("please provide your shipping address")
	ErrNoOrderItems            = errors.New("no order items")
	ErrInvalidQuantity         = errors.New("order item quantity must be greater than zero")
	ErrCouponExpired           = errors.New("coupon has expired")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

const orderNumberAttempts = 3

type UserReader interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type ProductReader interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]product.Product, error)
}

type CouponReader interface {
	GetByCode(ctx context.Context, code string) (*coupon.Coupon, error)
}

type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateInput) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, newStatus OrderStatus) (*Order, error)
	SalesStats(ctx context.Context) (*SalesStats, error)
}

type service struct {
	orderRepo Repository
	users     UserReader
	products  ProductReader
	coupons   CouponReader
	now       func() time.Time
	newNumber func() string
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithOrderNumbers(gen func() string) Option {
	return func(s *service) { s.newNumber = gen }
}

func NewService(orderRepo Repository, users UserReader, products ProductReader, coupons CouponReader, opts ...Option) Service {
	s := &service{
		orderRepo: orderRepo,
		users:     users,
		products:  products,
		coupons:   coupons,
		now:       time.Now,
		newNumber: GenerateOrderNumber,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateOrderNumber returns six upper-case hex characters followed by a
// number in [1000, 91000).
func GenerateOrderNumber() string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for range 6 {
		b.WriteByte(hex[rand.IntN(len(hex))])
	}
	fmt.Fprintf(&b, "%d", 1000+rand.IntN(90000))
	return b.String()
}

func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateInput) (*Order, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			log.Warn().Stringer("user_id", userID).Msg("service: order for unknown user")
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to load user for order: %w", err)
	}

	if !u.HasShippingAddress || u.ShippingAddress == nil {
		log.Warn().Stringer("user_id", userID).Msg("service: order without saved shipping address")
		return nil, ErrShippingAddressRequired
	}
	// A body address overrides the saved one for this order only.
	shipping := u.ShippingAddress
	if input.ShippingAddress != nil {
		shipping = input.ShippingAddress
	}

	if len(input.OrderItems) == 0 {
		log.Warn().Stringer("user_id", userID).Msg("service: attempt to create order with no items")
		return nil, ErrNoOrderItems
	}

	ids := make([]uuid.UUID, 0, len(input.OrderItems))
	seen := make(map[uuid.UUID]bool, len(input.OrderItems))
	for _, item := range input.OrderItems {
		if item.Qty <= 0 {
			return nil, ErrInvalidQuantity
		}
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load products for order: %w", err)
	}
	byID := make(map[uuid.UUID]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]OrderItem, 0, len(input.OrderItems))
	total := decimal.Zero
	for _, in := range input.OrderItems {
		p, ok := byID[in.ProductID]
		if !ok {
			log.Warn().Stringer("product_id", in.ProductID).Msg("service: order references unknown product")
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, in.ProductID)
		}
		items = append(items, OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       in.Qty,
			Price:     p.Price,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(in.Qty))))
	}

	o := &Order{
		UserID:          userID,
		OrderItems:      items,
		ShippingAddress: *shipping,
		TotalPrice:      total.Round(2),
		Currency:        DefaultCurrency,
		PaymentStatus:   DefaultPaymentStatus,
		PaymentMethod:   DefaultPaymentMethod,
		Status:          StatusPending,
		Discount:        decimal.Zero,
	}

	if code := strings.TrimSpace(input.CouponCode); code != "" {
		c, err := s.coupons.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, coupon.ErrNotFound) {
				return nil, coupon.ErrNotFound
			}
			return nil, fmt.Errorf("service: failed to load coupon: %w", err)
		}
		if c.IsExpired(s.now()) {
			log.Warn().Str("code", c.Code).Msg("service: expired coupon used")
			return nil, ErrCouponExpired
		}
		o.TotalPrice = c.Apply(o.TotalPrice)
		o.CouponCode = &c.Code
		o.Discount = c.Discount
	}

	for attempt := 1; ; attempt++ {
		o.ID = uuid.Nil
		o.OrderNumber = s.newNumber()
		err = s.orderRepo.CreateOrder(ctx, o)
		if !errors.Is(err, ErrDuplicateOrderNumber) || attempt == orderNumberAttempts {
			break
		}
	}
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) || errors.Is(err, user.ErrNotFound) {
			return nil, err
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Str("order_number", o.OrderNumber).Stringer("user_id", userID).Msg("service: order created")
	return o, nil
}

func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders in repository")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders in repository")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return orders, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, newStatus OrderStatus) (*Order, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.Status == newStatus {
		return current, nil
	}

	if !allowedTransitions[current.Status][newStatus] {
		log.Warn().
			Stringer("order_id", id).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("%w from %s to %s", ErrInvalidStatusTransition, current.Status, newStatus)
	}

	var deliveredAt *time.Time
	if newStatus == StatusDelivered {
		t := s.now().UTC()
		deliveredAt = &t
	}

	updated, err := s.orderRepo.UpdateOrderStatus(ctx, id, current.Status, newStatus, deliveredAt)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrInvalidStatusTransition) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: failed to update order status in repository")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", id).Stringer("old_status", current.Status).Stringer("new_status", newStatus).Msg("service: order status updated")
	return updated, nil
}

func (s *service) SalesStats(ctx context.Context) (*SalesStats, error) {
	now := s.now()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	stats, err := s.orderRepo.SalesStats(ctx, midnight)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to aggregate sales")
		return nil, fmt.Errorf("service: failed to aggregate sales: %w", err)
	}
	return stats, nil
}
