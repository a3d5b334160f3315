package order_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/ecommerce-api/internal/db"
	"github.com/vasiliy-maslov/ecommerce-api/internal/order"
	"github.com/vasiliy-maslov/ecommerce-api/internal/product"
	"github.com/vasiliy-maslov/ecommerce-api/internal/user"
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

func setupRepository(t *testing.T) order.Repository {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	truncate := func() {
		_, err := testPool.Exec(context.Background(), "TRUNCATE TABLE orders, reviews, products, users CASCADE")
		require.NoError(t, err)
	}
	truncate()
	t.Cleanup(truncate)

	return order.NewRepository(testPool)
}

func seedUser(t *testing.T) *user.User {
	t.Helper()
	u := &user.User{
		FullName:           "Repo Tester",
		Email:              fmt.Sprintf("%s@example.com", uuid.Must(uuid.NewV4())),
		PasswordHash:       "x",
		HasShippingAddress: true,
		ShippingAddress:    &user.ShippingAddress{City: "Springfield"},
	}
	_, err := user.NewRepository(testPool).Create(context.Background(), u)
	require.NoError(t, err)
	return u
}

func seedProduct(t *testing.T, qty int) *product.Product {
	t.Helper()
	p := &product.Product{
		Name:     "product-" + uuid.Must(uuid.NewV4()).String(),
		Brand:    "nike",
		Category: "shoes",
		Sizes:    []string{"M"},
		Colors:   []string{"red"},
		Images:   []string{},
		Price:    decimal.RequireFromString("12.50"),
		TotalQty: qty,
	}
	require.NoError(t, product.NewRepository(testPool).Create(context.Background(), p))
	return p
}

func newOrder(u *user.User, p *product.Product, qty int) *order.Order {
	return &order.Order{
		OrderNumber:     order.GenerateOrderNumber(),
		UserID:          u.ID,
		OrderItems:      []order.OrderItem{{ProductID: p.ID, Name: p.Name, Qty: qty, Price: p.Price}},
		ShippingAddress: *u.ShippingAddress,
		TotalPrice:      p.Price.Mul(decimal.NewFromInt(int64(qty))),
		Currency:        order.DefaultCurrency,
		PaymentStatus:   order.DefaultPaymentStatus,
		PaymentMethod:   order.DefaultPaymentMethod,
		Status:          order.StatusPending,
		Discount:        decimal.Zero,
	}
}

func soldCount(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var sold int
	require.NoError(t, testPool.QueryRow(context.Background(), "SELECT total_sold FROM products WHERE id = $1", id).Scan(&sold))
	return sold
}

func TestPostgresRepository_CreateAndGet(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	u := seedUser(t)
	p := seedProduct(t, 10)

	o := newOrder(u, p, 3)
	require.NoError(t, repo.CreateOrder(ctx, o))
	require.NotEqual(t, uuid.Nil, o.ID)

	got, err := repo.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, got.OrderNumber)
	assert.Equal(t, order.StatusPending, got.Status)
	require.Len(t, got.OrderItems, 1)
	assert.Equal(t, 3, got.OrderItems[0].Qty)
	assert.True(t, decimal.RequireFromString("37.50").Equal(got.TotalPrice))
	assert.Equal(t, "Springfield", got.ShippingAddress.City)
	assert.Equal(t, 3, soldCount(t, p.ID))

	_, err = repo.GetOrderByID(ctx, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestPostgresRepository_InsufficientStockRollsBack(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	u := seedUser(t)
	p := seedProduct(t, 2)

	o := newOrder(u, p, 3)
	require.ErrorIs(t, repo.CreateOrder(ctx, o), order.ErrInsufficientStock)

	orders, err := repo.ListOrdersByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 0, soldCount(t, p.ID))
}

func TestPostgresRepository_ConcurrentOrdersDoNotLoseIncrements(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	u := seedUser(t)
	p := seedProduct(t, 1000)

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.CreateOrder(ctx, newOrder(u, p, 1))
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, n, soldCount(t, p.ID))
}

func TestPostgresRepository_ListAndStatus(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	u := seedUser(t)
	p := seedProduct(t, 10)

	first := newOrder(u, p, 1)
	second := newOrder(u, p, 4)
	require.NoError(t, repo.CreateOrder(ctx, first))
	require.NoError(t, repo.CreateOrder(ctx, second))

	all, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Customer)
	assert.Equal(t, u.Email, all[0].Customer.Email)

	deliveredAt := time.Now().UTC().Truncate(time.Second)
	updated, err := repo.UpdateOrderStatus(ctx, first.ID, order.StatusPending, order.StatusDelivered, &deliveredAt)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, updated.Status)
	require.NotNil(t, updated.DeliveredAt)
	assert.True(t, deliveredAt.Equal(*updated.DeliveredAt))

	_, err = repo.UpdateOrderStatus(ctx, uuid.Must(uuid.NewV4()), order.StatusPending, order.StatusShipped, nil)
	require.ErrorIs(t, err, order.ErrOrderNotFound)

	// Already delivered, so a writer that still expects pending loses.
	_, err = repo.UpdateOrderStatus(ctx, first.ID, order.StatusPending, order.StatusShipped, nil)
	require.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	got, err := repo.GetOrderByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, got.Status)

	stats, err := repo.SalesStats(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.OrderCount)
	assert.True(t, decimal.RequireFromString("12.50").Equal(stats.MinimumSale))
	assert.True(t, decimal.RequireFromString("50").Equal(stats.MaxSale))
	assert.True(t, decimal.RequireFromString("62.50").Equal(stats.TotalSales))
	assert.True(t, stats.TotalSales.Equal(stats.SaleToday))
}

func TestPostgresRepository_CreateOrder_MissingUser(t *testing.T) {
	repo := setupRepository(t)
	p := seedProduct(t, 10)

	o := newOrder(&user.User{ID: uuid.Must(uuid.NewV4()), ShippingAddress: &user.ShippingAddress{City: "Springfield"}}, p, 1)
	err := repo.CreateOrder(context.Background(), o)
	require.ErrorIs(t, err, user.ErrNotFound)
	assert.Zero(t, soldCount(t, p.ID))
}
