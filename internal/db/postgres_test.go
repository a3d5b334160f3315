package db_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/ecommerce-api/internal/config"
	"github.com/vasiliy-maslov/ecommerce-api/internal/db"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}

	assert.True(t, db.IsUniqueViolation(unique))
	assert.True(t, db.IsUniqueViolation(fmt.Errorf("repository: insert: %w", unique)))
	assert.False(t, db.IsUniqueViolation(fk))
	assert.False(t, db.IsUniqueViolation(errors.New("boom")))
	assert.False(t, db.IsUniqueViolation(nil))

	assert.True(t, db.IsForeignKeyViolation(fk))
	assert.False(t, db.IsForeignKeyViolation(unique))
}

func TestConnString(t *testing.T) {
	cfg := config.PostgresConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "123456",
		DBName:   "ecommerce_db",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=123456 dbname=ecommerce_db sslmode=disable",
		db.ConnString(cfg),
	)
}
