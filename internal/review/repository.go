package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vasiliy-maslov/ecommerce-api/internal/db"
	"github.com/vasiliy-maslov/ecommerce-api/internal/product"
)

var ErrAlreadyReviewed = errors.New("you have already reviewed this product")

type Repository interface {
	Create(ctx context.Context, r *Review) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error)
}

type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type repository struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rev *Review) error {
	if rev.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate review id: %w", err)
		}
		rev.ID = id
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO reviews (id, product_id, user_id, message, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, rev.ID, rev.ProductID, rev.UserID, rev.Message, rev.Rating, now, now)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAlreadyReviewed
		}
		// The product can be deleted between the service lookup and the insert.
		if db.IsForeignKeyViolation(err) {
			return product.ErrNotFound
		}
		return fmt.Errorf("repository: failed to insert review: %w", err)
	}

	rev.CreatedAt = now
	rev.UpdatedAt = now
	return nil
}

func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error) {
	query := `
		SELECT id, product_id, user_id, message, rating, created_at, updated_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query reviews for product %s: %w", productID, err)
	}
	defer rows.Close()

	reviews := make([]Review, 0)
	for rows.Next() {
		var rev Review
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.Message, &rev.Rating, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan review for product %s: %w", productID, err)
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating reviews for product %s: %w", productID, err)
	}

	return reviews, nil
}
