package catalog

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
	ErrNotFound = errors.New("item not found")
	ErrExists   = errors.New("item already exists")
)

type Repository interface {
	Create(ctx context.Context, item *Item) error
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	GetByName(ctx context.Context, name string) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	db    DB
	table string
}

func NewRepository(db DB, kind Kind) Repository {
	return &repository{db: db, table: kind.table()}
}

// user_id is nullable because ON DELETE SET NULL clears it.
func scanItem(row pgx.Row) (*Item, error) {
	var (
		item   Item
		userID *uuid.UUID
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Image, &userID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if userID != nil {
		item.UserID = *userID
	}
	return &item, nil
}

func (r *repository) Create(ctx context.Context, item *Item) error {
	if item.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate %s id: %w", r.table, err)
		}
		item.ID = id
	}

	now := time.Now().UTC()
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, image, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.table)

	_, err := r.db.Exec(ctx, query, item.ID, item.Name, item.Image, nullableID(item.UserID), now, now)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrExists
		}
		return fmt.Errorf("repository: failed to insert into %s: %w", r.table, err)
	}

	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (r *repository) List(ctx context.Context) ([]Item, error) {
	query := fmt.Sprintf(`SELECT id, name, image, user_id, created_at, updated_at FROM %s ORDER BY name`, r.table)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query %s: %w", r.table, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan %s row: %w", r.table, err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating %s: %w", r.table, err)
	}

	return items, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	query := fmt.Sprintf(`SELECT id, name, image, user_id, created_at, updated_at FROM %s WHERE id = $1`, r.table)

	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select %s by id %s: %w", r.table, id, err)
	}
	return item, nil
}

func (r *repository) GetByName(ctx context.Context, name string) (*Item, error) {
	query := fmt.Sprintf(`SELECT id, name, image, user_id, created_at, updated_at FROM %s WHERE name = $1`, r.table)

	item, err := scanItem(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select %s by name %q: %w", r.table, name, err)
	}
	return item, nil
}

func (r *repository) Update(ctx context.Context, item *Item) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, image = $2, updated_at = $3
		WHERE id = $4
		RETURNING user_id, created_at, updated_at
	`, r.table)

	var userID *uuid.UUID
	err := r.db.QueryRow(ctx, query, item.Name, item.Image, time.Now().UTC(), item.ID).
		Scan(&userID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return ErrExists
		}
		return fmt.Errorf("repository: failed to update %s %s: %w", r.table, item.ID, err)
	}
	if userID != nil {
		item.UserID = *userID
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)

	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete %s %s: %w", r.table, id, err)
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
