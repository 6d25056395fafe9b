package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/customers"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const session = "sess_0123456789"

type serviceFixture struct {
	svc   Service
	store *RedisStore
	conn  *gorm.DB
	mango models.Product
	honey models.Product
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	conn := dbtest.Open(t)
	client, _ := newRedis(t)
	store, err := NewRedisStore(client, time.Hour)
	require.NoError(t, err)

	products := product.NewRepository(conn)
	placer, err := orders.NewService(orders.ServiceParams{
		Repository: orders.NewRepository(conn),
		Tx:         db.NewFromGorm(conn),
		Outbox:     outbox.NewService(outbox.NewRepository(conn), nil),
		Inventory:  product.NewInventory(products),
		Customers:  customers.NewDirectory(customers.NewRepository(conn)),
	})
	require.NoError(t, err)

	svc, err := NewService(store, products, placer, nil)
	require.NoError(t, err)

	f := &serviceFixture{svc: svc, store: store, conn: conn}
	f.mango = seedProduct(t, conn, "Mango", 350, 10)
	f.honey = seedProduct(t, conn, "Honey", 650, 2)
	return f
}

func seedProduct(t *testing.T, conn *gorm.DB, name string, price int64, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Name:          name,
		UnitType:      enums.UnitTypeCount,
		Price:         decimal.NewFromInt(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, conn.Create(&p).Error)
	return p
}

func reason(t *testing.T, err error) string {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	r, _ := details["reason"].(string)
	return r
}

type stubPlacer struct {
	err   error
	input orders.PlaceOrderInput
}

func (s *stubPlacer) PlaceOrder(_ context.Context, input orders.PlaceOrderInput) (*orders.OrderDTO, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderDTO{ID: uuid.New()}, nil
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	client, _ := newRedis(t)
	store, err := NewRedisStore(client, time.Hour)
	require.NoError(t, err)

	_, err = NewService(nil, nil, nil, nil)
	require.Error(t, err)
	_, err = NewService(store, nil, &stubPlacer{}, nil)
	require.Error(t, err)
	_, err = NewService(store, product.NewRepository(dbtest.Open(t)), nil, nil)
	require.Error(t, err)
}

func TestServiceRejectsInvalidSession(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Get(context.Background(), "short")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = f.svc.Add(context.Background(), "bad session id!", f.mango.ID, 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestAddQuoteScenario(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, session, f.mango.ID, 3)
	require.NoError(t, err)
	dto, err := f.svc.Add(ctx, session, f.honey.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, dto.ItemCount)
	assert.True(t, dto.Subtotal.Equal(decimal.NewFromInt(1700)))
	assert.Nil(t, dto.Quote)

	quoted, err := f.svc.Quote(ctx, session, enums.ShippingMethodLocal)
	require.NoError(t, err)
	require.NotNil(t, quoted.Quote)
	assert.True(t, quoted.Quote.ShippingCost.Equal(decimal.NewFromInt(70)))
	assert.True(t, quoted.Quote.Total.Equal(decimal.NewFromInt(1770)))

	unset, err := f.svc.Quote(ctx, session, enums.ShippingMethodUnset)
	require.NoError(t, err)
	assert.Nil(t, unset.Quote)
}

func TestAddMapsStockErrors(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, session, f.honey.ID, 3)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	assert.Equal(t, "stock_exceeded", reason(t, err))

	require.NoError(t, f.conn.Model(&models.Product{}).Where("id = ?", f.mango.ID).Update("stock_quantity", 0).Error)
	_, err = f.svc.Add(ctx, session, f.mango.ID, 1)
	require.Error(t, err)
	assert.Equal(t, "out_of_stock", reason(t, err))

	_, err = f.svc.Add(ctx, session, uuid.New(), 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	require.NoError(t, f.conn.Model(&models.Product{}).Where("id = ?", f.honey.ID).Update("is_active", false).Error)
	_, err = f.svc.Add(ctx, session, f.honey.ID, 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestIncrementDecrementRemove(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, session, f.honey.ID, 1)
	require.NoError(t, err)

	dto, err := f.svc.Increment(ctx, session, f.honey.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, dto.Items[0].Quantity)

	_, err = f.svc.Increment(ctx, session, f.honey.ID)
	assert.Equal(t, "stock_exceeded", reason(t, err))

	_, err = f.svc.Decrement(ctx, session, f.honey.ID)
	require.NoError(t, err)
	_, err = f.svc.Decrement(ctx, session, f.honey.ID)
	assert.Equal(t, "quantity_floor", reason(t, err))

	dto, err = f.svc.Remove(ctx, session, f.honey.ID)
	require.NoError(t, err)
	assert.Empty(t, dto.Items)

	_, err = f.svc.Remove(ctx, session, f.honey.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestConcurrentAddsAreSerializedPerSession(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.Add(ctx, session, f.mango.ID, 1)
		}()
	}
	wg.Wait()

	dto, err := f.svc.Get(ctx, session)
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 8, dto.Items[0].Quantity)
}

func TestCheckoutPlacesOrderAndClearsCart(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, session, f.mango.ID, 3)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, session, f.honey.ID, 1)
	require.NoError(t, err)

	order, err := f.svc.Checkout(ctx, session, CheckoutInput{
		Name:           "Rahim",
		Phone:          "01711000000",
		Address:        "Dhaka",
		ShippingMethod: enums.ShippingMethodLocal,
	})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(1770)))

	dto, err := f.svc.Get(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, dto.Items)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.Checkout(context.Background(), session, CheckoutInput{ShippingMethod: enums.ShippingMethodLocal})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCheckoutPriceDriftKeepsAndRefreshesCart(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, session, f.mango.ID, 2)
	require.NoError(t, err)
	require.NoError(t, f.conn.Model(&models.Product{}).Where("id = ?", f.mango.ID).Update("price", decimal.NewFromInt(400)).Error)

	_, err = f.svc.Checkout(ctx, session, CheckoutInput{
		Name:           "Rahim",
		Phone:          "01711000000",
		Address:        "Dhaka",
		ShippingMethod: enums.ShippingMethodLocal,
	})
	require.Error(t, err)
	assert.Equal(t, orders.ReasonPriceChanged, reason(t, err))

	dto, err := f.svc.Get(ctx, session)
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 2, dto.Items[0].Quantity)
	assert.True(t, dto.Items[0].Price.Equal(decimal.NewFromInt(400)))

	order, err := f.svc.Checkout(ctx, session, CheckoutInput{
		Name:           "Rahim",
		Phone:          "01711000000",
		Address:        "Dhaka",
		ShippingMethod: enums.ShippingMethodLocal,
	})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(870)))
}

func TestCheckoutForwardsSessionAndExpectedTotal(t *testing.T) {
	f := newServiceFixture(t)
	placer := &stubPlacer{}
	svc, err := NewService(f.store, product.NewRepository(f.conn), placer, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Add(ctx, session, f.honey.ID, 1)
	require.NoError(t, err)

	cost := decimal.NewFromInt(150)
	_, err = svc.Checkout(ctx, session, CheckoutInput{Name: "Rahim", Phone: "01711000000", Address: "Sylhet", DeliveryCost: &cost})
	require.NoError(t, err)
	assert.Equal(t, session, placer.input.SessionID)
	require.NotNil(t, placer.input.ExpectedTotal)
	assert.True(t, placer.input.ExpectedTotal.Equal(decimal.NewFromInt(800)))
	require.Len(t, placer.input.Items, 1)
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	f := newServiceFixture(t)
	placer := &stubPlacer{err: pkgerrors.Validation("invalid order", pkgerrors.Field("phone", "phone is required"))}
	svc, err := NewService(f.store, product.NewRepository(f.conn), placer, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Add(ctx, session, f.honey.ID, 1)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, session, CheckoutInput{ShippingMethod: enums.ShippingMethodLocal})
	require.Error(t, err)

	dto, err := svc.Get(ctx, session)
	require.NoError(t, err)
	assert.Len(t, dto.Items, 1)
}

func TestGetSurvivesCancelledCaller(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.Add(context.Background(), session, f.mango.ID, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dto, err := f.svc.Get(ctx, session)
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 2, dto.Items[0].Quantity)
}
