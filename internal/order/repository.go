package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-api/internal/db"
	"github.com/vasiliy-maslov/ecommerce-api/internal/user"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrInsufficientStock    = errors.New("not enough stock for one or more products")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
)

type Repository interface {
	CreateOrder(ctx context.Context, order *Order) error
	ListOrders(ctx context.Context) ([]Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to OrderStatus, deliveredAt *time.Time) (*Order, error)
	SalesStats(ctx context.Context, since time.Time) (*SalesStats, error)
}

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepository struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &postgresRepository{db: db}
}

const orderColumns = `o.id, o.order_number, o.user_id, o.order_items, o.shipping_address, o.total_price,
	o.currency, o.payment_status, o.payment_method, o.status, o.coupon_code, o.discount,
	o.delivered_at, o.created_at, o.updated_at`

func scanOrder(row pgx.Row, extra ...any) (*Order, error) {
	var o Order
	dest := []any{
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.OrderItems,
		&o.ShippingAddress,
		&o.TotalPrice,
		&o.Currency,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.Status,
		&o.CouponCode,
		&o.Discount,
		&o.DeliveredAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder inserts the order and bumps total_sold for every line in one
// transaction. A line whose product lacks stock aborts the whole order.
func (r *postgresRepository) CreateOrder(ctx context.Context, order *Order) (err error) {
	if order.ID == uuid.Nil {
		id, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order id: %w", genErr)
		}
		order.ID = id
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Stringer("order_id", order.ID).Msg("repository: panic during CreateOrder, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", order.ID).Msg("repository: failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", order.ID).Msg("repository: failed to rollback transaction")
			}
		} else if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	now := time.Now().UTC()
	insertOrder := `
		INSERT INTO orders (id, order_number, user_id, order_items, shipping_address, total_price,
			currency, payment_status, payment_method, status, coupon_code, discount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = tx.Exec(ctx, insertOrder,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.OrderItems,
		order.ShippingAddress,
		order.TotalPrice,
		order.Currency,
		order.PaymentStatus,
		order.PaymentMethod,
		string(order.Status),
		order.CouponCode,
		order.Discount,
		now,
		now,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			err = ErrDuplicateOrderNumber
			return err
		}
		if db.IsForeignKeyViolation(err) {
			err = user.ErrNotFound
			return err
		}
		err = fmt.Errorf("repository: failed to insert order: %w", err)
		return err
	}

	bumpSold := `
		UPDATE products
		SET total_sold = total_sold + $1, updated_at = $2
		WHERE id = $3 AND total_qty - total_sold >= $1
	`
	for _, item := range order.OrderItems {
		var tag pgconn.CommandTag
		tag, err = tx.Exec(ctx, bumpSold, item.Qty, now, item.ProductID)
		if err != nil {
			err = fmt.Errorf("repository: failed to update sold count for product %s: %w", item.ProductID, err)
			return err
		}
		if tag.RowsAffected() == 0 {
			log.Warn().Stringer("product_id", item.ProductID).Int("qty", item.Qty).Msg("repository: insufficient stock")
			err = ErrInsufficientStock
			return err
		}
	}

	order.CreatedAt = now
	order.UpdatedAt = now
	return nil
}

func (r *postgresRepository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *postgresRepository) ListOrders(ctx context.Context) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `, u.full_name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var c Customer
		o, err := scanOrder(rows, &c.FullName, &c.Email)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Customer = &c
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}
	return orders, nil
}

func (r *postgresRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.user_id = $1 ORDER BY o.created_at DESC`

	orders, err := r.queryOrders(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user id %s: %w", userID, err)
	}
	return orders, nil
}

func (r *postgresRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`

	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}
	return o, nil
}

// UpdateOrderStatus moves the order from one status to another and keeps an
// existing delivered_at when deliveredAt is nil. It fails with
// ErrInvalidStatusTransition when the order is no longer in status from.
func (r *postgresRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to OrderStatus, deliveredAt *time.Time) (*Order, error) {
	query := `
		UPDATE orders o
		SET status = $1, delivered_at = COALESCE($2, o.delivered_at), updated_at = $3
		WHERE o.id = $4 AND o.status = $5
		RETURNING ` + orderColumns

	o, err := scanOrder(r.db.QueryRow(ctx, query, string(to), deliveredAt, time.Now().UTC(), id, string(from)))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("repository: failed to update order status %s: %w", id, err)
		}
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("repository: failed to check order %s: %w", id, err)
		}
		if !exists {
			log.Warn().Stringer("order_id", id).Stringer("new_status", to).Msg("repository: order not found for status update")
			return nil, ErrOrderNotFound
		}
		log.Warn().Stringer("order_id", id).Stringer("expected_status", from).Stringer("new_status", to).Msg("repository: order status changed concurrently")
		return nil, fmt.Errorf("%w: order is no longer %s", ErrInvalidStatusTransition, from)
	}
	return o, nil
}

// SalesStats aggregates over every order; SaleToday covers orders created at
// or after since.
func (r *postgresRepository) SalesStats(ctx context.Context, since time.Time) (*SalesStats, error) {
	query := `
		SELECT
			COALESCE(MIN(total_price), 0),
			COALESCE(SUM(total_price), 0),
			COALESCE(MAX(total_price), 0),
			COALESCE(ROUND(AVG(total_price), 2), 0),
			COUNT(*),
			COALESCE(SUM(total_price) FILTER (WHERE created_at >= $1), 0)
		FROM orders
	`
	var s SalesStats
	err := r.db.QueryRow(ctx, query, since).Scan(
		&s.MinimumSale,
		&s.TotalSales,
		&s.MaxSale,
		&s.AvgSale,
		&s.OrderCount,
		&s.SaleToday,
	)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to aggregate sales: %w", err)
	}
	return &s, nil
}
