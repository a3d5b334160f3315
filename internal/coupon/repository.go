package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vasiliy-maslov/ecommerce-api/internal/db"
)

var (
	ErrNotFound   = errors.New("coupon not found")
	ErrCodeExists = errors.New("coupon already exists")
)

type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	List(ctx context.Context) ([]Coupon, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &repository{db: db}
}

const couponColumns = `id, code, start_date, end_date, discount, user_id, created_at, updated_at`

func scanCoupon(row pgx.Row) (*Coupon, error) {
	var (
		c      Coupon
		userID *uuid.UUID
	)
	if err := row.Scan(&c.ID, &c.Code, &c.StartDate, &c.EndDate, &c.Discount, &userID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if userID != nil {
		c.UserID = *userID
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c *Coupon) error {
	if c.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate coupon id: %w", err)
		}
		c.ID = id
	}

	var userID *uuid.UUID
	if c.UserID != uuid.Nil {
		userID = &c.UserID
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.Code, c.StartDate, c.EndDate, c.Discount, userID, now, now)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("repository: failed to insert coupon: %w", err)
	}

	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

func (r *repository) List(ctx context.Context) ([]Coupon, error) {
	rows, err := r.db.Query(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query coupons: %w", err)
	}
	defer rows.Close()

	coupons := make([]Coupon, 0)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating coupons: %w", err)
	}
	return coupons, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error) {
	c, err := scanCoupon(r.db.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select coupon by id %s: %w", id, err)
	}
	return c, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	c, err := scanCoupon(r.db.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select coupon by code %q: %w", code, err)
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, c *Coupon) error {
	query := `
		UPDATE coupons
		SET code = $1, start_date = $2, end_date = $3, discount = $4, updated_at = $5
		WHERE id = $6
		RETURNING ` + couponColumns

	updated, err := scanCoupon(r.db.QueryRow(ctx, query, c.Code, c.StartDate, c.EndDate, c.Discount, time.Now().UTC(), c.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("repository: failed to update coupon %s: %w", c.ID, err)
	}

	*c = *updated
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete coupon %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
