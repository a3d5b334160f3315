package product

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
	ErrNotFound = errors.New("product not found")
	ErrExists   = errors.New("product already exists")
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	List(ctx context.Context, f Filter) ([]Product, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	Update(ctx context.Context, p *Product) error
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

const selectProduct = `
	SELECT p.id, p.name, p.description, p.brand, p.category, p.sizes, p.colors, p.images,
		p.price, p.total_qty, p.total_sold, p.user_id, p.created_at, p.updated_at,
		r.total_reviews, r.average_rating
	FROM products p
	CROSS JOIN LATERAL (
		SELECT COUNT(*) AS total_reviews,
			COALESCE(ROUND(AVG(rating)::numeric, 1), 0)::float8 AS average_rating
		FROM reviews
		WHERE product_id = p.id
	) r`

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p      Product
		userID *uuid.UUID
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Brand,
		&p.Category,
		&p.Sizes,
		&p.Colors,
		&p.Images,
		&p.Price,
		&p.TotalQty,
		&p.TotalSold,
		&userID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.TotalReviews,
		&p.AverageRating,
	)
	if err != nil {
		return nil, err
	}
	if userID != nil {
		p.UserID = *userID
	}
	p.QtyLeft = max(p.TotalQty-p.TotalSold, 0)
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate product id: %w", err)
		}
		p.ID = id
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO products (id, name, description, brand, category, sizes, colors, images, price, total_qty, total_sold, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Brand,
		p.Category,
		p.Sizes,
		p.Colors,
		p.Images,
		p.Price,
		p.TotalQty,
		nullableID(p.UserID),
		now,
		now,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrExists
		}
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	p.TotalSold = 0
	p.QtyLeft = p.TotalQty
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// List returns one page of matches and the number of matches overall.
func (r *repository) List(ctx context.Context, f Filter) ([]Product, int, error) {
	where := buildWhere(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM products p` + where.String()
	if err := r.db.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count products: %w", err)
	}

	limitPos := where.next()
	args := append(where.args, f.Limit, f.offset())
	query := selectProduct + where.String() +
		` ORDER BY p.created_at DESC, p.id LIMIT ` + limitPos + ` OFFSET ` + fmt.Sprintf("$%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0, f.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository: failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository: error iterating products: %w", err)
	}

	return products, total, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, selectProduct+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}
	return p, nil
}

// GetByIDs returns the products that exist among ids, in no particular order.
func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	rows, err := r.db.Query(ctx, selectProduct+` WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products by ids: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products by ids: %w", err)
	}

	return products, nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, brand = $3, category = $4, sizes = $5, colors = $6,
			images = $7, price = $8, total_qty = $9, updated_at = $10
		WHERE id = $11
	`
	cmdTag, err := r.db.Exec(ctx, query,
		p.Name,
		p.Description,
		p.Brand,
		p.Category,
		p.Sizes,
		p.Colors,
		p.Images,
		p.Price,
		p.TotalQty,
		time.Now().UTC(),
		p.ID,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrExists
		}
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
