package catalog_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/ecommerce-api/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-api/internal/db"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn != "" {
		pg, err := db.NewFromDSN(context.Background(), dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to test database")
		}
		if err := db.Migrate(pg.Pool); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate test database")
		}
		testPool = pg.Pool
	}

	exitCode := m.Run()

	if testPool != nil {
		testPool.Close()
	}
	os.Exit(exitCode)
}

func setupService(t *testing.T, kind catalog.Kind) catalog.Service {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	truncate := func() {
		_, err := testPool.Exec(context.Background(), "TRUNCATE TABLE categories, brands, colors")
		require.NoError(t, err)
	}
	truncate()
	t.Cleanup(truncate)

	return catalog.NewService(kind, catalog.NewRepository(testPool, kind))
}

func TestRepository_NamesAreStoredLowercase(t *testing.T) {
	brands := setupService(t, catalog.KindBrand)
	ctx := context.Background()

	item, err := brands.Create(ctx, catalog.Input{Name: "  Nike "}, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "nike", item.Name)

	var stored string
	require.NoError(t, testPool.QueryRow(ctx, "SELECT name FROM brands WHERE id = $1", item.ID).Scan(&stored))
	assert.Equal(t, "nike", stored)

	_, err = brands.Create(ctx, catalog.Input{Name: "NIKE"}, uuid.Nil)
	require.ErrorIs(t, err, catalog.ErrExists)

	found, err := brands.GetByName(ctx, "NiKe")
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)
	assert.Equal(t, uuid.Nil, found.UserID)

	_, err = brands.GetByName(ctx, "puma")
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestRepository_KindsUseSeparateTables(t *testing.T) {
	brands := setupService(t, catalog.KindBrand)
	colors := catalog.NewService(catalog.KindColor, catalog.NewRepository(testPool, catalog.KindColor))
	ctx := context.Background()

	_, err := brands.Create(ctx, catalog.Input{Name: "orange"}, uuid.Nil)
	require.NoError(t, err)
	_, err = colors.Create(ctx, catalog.Input{Name: "Orange"}, uuid.Nil)
	require.NoError(t, err)

	list, err := colors.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "orange", list[0].Name)

	_, err = catalog.NewService(catalog.KindCategory, catalog.NewRepository(testPool, catalog.KindCategory)).GetByName(ctx, "orange")
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	categories := setupService(t, catalog.KindCategory)
	ctx := context.Background()

	shoes, err := categories.Create(ctx, catalog.Input{Name: "shoes"}, uuid.Nil)
	require.NoError(t, err)
	_, err = categories.Create(ctx, catalog.Input{Name: "hats"}, uuid.Nil)
	require.NoError(t, err)

	updated, err := categories.Update(ctx, shoes.ID, catalog.Input{Name: "Sneakers", Image: "s.png"})
	require.NoError(t, err)
	assert.Equal(t, "sneakers", updated.Name)
	assert.WithinDuration(t, shoes.CreatedAt, updated.CreatedAt, time.Millisecond)

	_, err = categories.Update(ctx, shoes.ID, catalog.Input{Name: "HATS"})
	require.ErrorIs(t, err, catalog.ErrExists)

	missing := uuid.Must(uuid.NewV4())
	_, err = categories.Update(ctx, missing, catalog.Input{Name: "boots"})
	require.ErrorIs(t, err, catalog.ErrNotFound)
	require.ErrorIs(t, categories.Delete(ctx, missing), catalog.ErrNotFound)

	require.NoError(t, categories.Delete(ctx, shoes.ID))
	_, err = categories.GetByID(ctx, shoes.ID)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}
