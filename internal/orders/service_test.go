package orders

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/customers"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc   Service
	conn  *gorm.DB
	reg   *prometheus.Registry
	mango models.Product
	honey models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	reg := prometheus.NewRegistry()

	svc, err := NewService(ServiceParams{
		Repository: NewRepository(conn),
		Tx:         db.NewFromGorm(conn),
		Outbox:     outbox.NewService(outbox.NewRepository(conn), nil),
		Inventory:  product.NewInventory(product.NewRepository(conn)),
		Customers:  customers.NewDirectory(customers.NewRepository(conn)),
		Metrics:    metrics.NewOrderMetrics(reg),
	})
	require.NoError(t, err)

	f := &fixture{svc: svc, conn: conn, reg: reg}
	f.mango = seedProduct(t, conn, "Mango", enums.UnitTypeWeight, 350, 10)
	f.honey = seedProduct(t, conn, "Honey", enums.UnitTypeCount, 650, 2)
	return f
}

func seedProduct(t *testing.T, conn *gorm.DB, name string, unit enums.UnitType, price int64, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Name:          name,
		UnitType:      unit,
		Price:         decimal.NewFromInt(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, conn.Create(&p).Error)
	return p
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.conn.First(&p, "id = ?", id).Error)
	return p.StockQuantity
}

func (f *fixture) events(t *testing.T, eventType enums.OutboxEventType) []models.OutboxEvent {
	t.Helper()
	var rows []models.OutboxEvent
	require.NoError(t, f.conn.Where("event_type = ?", eventType).Find(&rows).Error)
	return rows
}

func (f *fixture) place(t *testing.T) *OrderDTO {
	t.Helper()
	order, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []ItemInput{
			{ProductID: f.mango.ID, Quantity: 3},
			{ProductID: f.honey.ID, Quantity: 1},
		},
		Name:           "Rahim",
		Phone:          "+880 1711-000000",
		Address:        "12 Lake Road",
		ShippingMethod: enums.ShippingMethodLocal,
	})
	require.NoError(t, err)
	return order
}

// counter returns the value of the series of name carrying label=value.
func (f *fixture) counter(t *testing.T, name, label, value string) float64 {
	t.Helper()
	families, err := f.reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, pair := range m.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok, "expected map details, got %T", typed.Details())
	reason, _ := details["reason"].(string)
	return reason
}

func fieldNames(err error) []string {
	names := []string{}
	for _, f := range pkgerrors.Fields(err) {
		names = append(names, f.Name)
	}
	return names
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestPlaceOrderLocalScenario(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(1700)))
	assert.True(t, order.ShippingCost.Equal(decimal.NewFromInt(70)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(1770)))
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, "+8801711000000", order.Phone)
	require.Len(t, order.Items, 2)

	assert.Equal(t, 7, f.stock(t, f.mango.ID))
	assert.Equal(t, 1, f.stock(t, f.honey.ID))

	var customer models.Customer
	require.NoError(t, f.conn.First(&customer, "phone = ?", "+8801711000000").Error)
	assert.Equal(t, customer.ID, order.CustomerID)

	rows := f.events(t, enums.EventOrderCreated)
	require.Len(t, rows, 1)
	var env outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &env))
	var data payloads.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, order.ID, data.OrderID)
	assert.True(t, data.Total.Equal(decimal.NewFromInt(1770)))

	assert.Equal(t, 1.0, f.counter(t, "orders_placed_total", "shipping_method", "local"))
}

func TestPlaceOrderResolvesMethodFromDeliveryCost(t *testing.T) {
	f := newFixture(t)
	cost := decimal.NewFromInt(150)

	order, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items:        []ItemInput{{ProductID: f.mango.ID, Quantity: 1}},
		Name:         "Karim",
		Phone:        "01711000001",
		Address:      "Sylhet",
		DeliveryCost: &cost,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ShippingMethodRemote, order.ShippingMethod)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(500)))
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	cost := decimal.NewFromInt(70)

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []ItemInput{
			{ProductID: f.mango.ID, Quantity: 0},
			{ProductID: f.mango.ID, Quantity: 1},
		},
		Name:           " ",
		Phone:          "abc",
		ShippingMethod: enums.ShippingMethodRemote,
		DeliveryCost:   &cost,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.ElementsMatch(t, []string{
		"name", "phone", "address", "items[0].quantity", "items[1].product", "deliveryCost",
	}, fieldNames(err))
}

func TestPlaceOrderRequiresShippingMethod(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items:   []ItemInput{{ProductID: f.mango.ID, Quantity: 1}},
		Name:    "Rahim",
		Phone:   "01711000000",
		Address: "Dhaka",
	})
	require.Error(t, err)
	assert.Equal(t, []string{"shippingMethod"}, fieldNames(err))
}

func TestPlaceOrderRejectsStaleStock(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items:          []ItemInput{{ProductID: f.honey.ID, Quantity: 3}},
		Name:           "Rahim",
		Phone:          "01711000000",
		Address:        "Dhaka",
		ShippingMethod: enums.ShippingMethodLocal,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	assert.Equal(t, ReasonStockExceeded, reasonOf(t, err))

	assert.Equal(t, 2, f.stock(t, f.honey.ID))
	assert.Empty(t, f.events(t, enums.EventOrderCreated))
	assert.Equal(t, 1.0, f.counter(t, "orders_rejected_total", "reason", ReasonStockExceeded))
}

func TestPlaceOrderRollsBackEarlierLines(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.conn.Model(&models.Product{}).Where("id = ?", f.honey.ID).Update("is_active", false).Error)

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []ItemInput{
			{ProductID: f.mango.ID, Quantity: 2},
			{ProductID: f.honey.ID, Quantity: 1},
		},
		Name:           "Rahim",
		Phone:          "01711000000",
		Address:        "Dhaka",
		ShippingMethod: enums.ShippingMethodLocal,
	})
	require.Error(t, err)
	assert.Equal(t, ReasonProductUnavailable, reasonOf(t, err))
	assert.Equal(t, 10, f.stock(t, f.mango.ID))

	var count int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrderPriceChanged(t *testing.T) {
	f := newFixture(t)
	expected := decimal.NewFromInt(1000)

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items:          []ItemInput{{ProductID: f.mango.ID, Quantity: 1}},
		Name:           "Rahim",
		Phone:          "01711000000",
		Address:        "Dhaka",
		ShippingMethod: enums.ShippingMethodLocal,
		ExpectedTotal:  &expected,
	})
	require.Error(t, err)
	assert.Equal(t, ReasonPriceChanged, reasonOf(t, err))
	assert.Equal(t, 10, f.stock(t, f.mango.ID))
}

func TestPlaceOrderReusesCustomerByPhone(t *testing.T) {
	f := newFixture(t)
	first := f.place(t)

	second, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items:          []ItemInput{{ProductID: f.mango.ID, Quantity: 1}},
		Name:           "Rahim Uddin",
		Phone:          "+8801711000000",
		Address:        "New address",
		ShippingMethod: enums.ShippingMethodLocal,
	})
	require.NoError(t, err)
	assert.Equal(t, first.CustomerID, second.CustomerID)

	var customer models.Customer
	require.NoError(t, f.conn.First(&customer, "id = ?", first.CustomerID).Error)
	assert.Equal(t, "Rahim Uddin", customer.Name)
	assert.Equal(t, "New address", customer.Address)
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)
	ctx := context.Background()

	processing := enums.OrderStatusProcessing
	updated, err := f.svc.UpdateStatus(ctx, order.ID, StatusInput{Status: &processing})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)

	delivered := enums.OrderStatusDelivered
	_, err = f.svc.UpdateStatus(ctx, order.ID, StatusInput{Status: &delivered})
	require.Error(t, err)
	assert.Equal(t, ReasonInvalidTransition, reasonOf(t, err))

	paid := enums.PaymentStatusPaid
	updated, err = f.svc.UpdateStatus(ctx, order.ID, StatusInput{PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, updated.PaymentStatus)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)

	assert.Len(t, f.events(t, enums.EventOrderStatusChanged), 2)
	assert.Equal(t, 1.0, f.counter(t, "order_status_transitions_total", "status", "processing"))
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)

	pending := enums.OrderStatusPending
	updated, err := f.svc.UpdateStatus(context.Background(), order.ID, StatusInput{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, updated.Status)
	assert.Empty(t, f.events(t, enums.EventOrderStatusChanged))
}

func TestUpdateStatusCancelRestocks(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)

	cancelled := enums.OrderStatusCancelled
	_, err := f.svc.UpdateStatus(context.Background(), order.ID, StatusInput{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, f.mango.ID))
	assert.Equal(t, 2, f.stock(t, f.honey.ID))
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)

	_, err := f.svc.UpdateStatus(context.Background(), order.ID, StatusInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	bogus := enums.OrderStatus("lost")
	_, err = f.svc.UpdateStatus(context.Background(), order.ID, StatusInput{Status: &bogus})
	require.Error(t, err)
	assert.Equal(t, []string{"status"}, fieldNames(err))

	_, err = f.svc.UpdateStatus(context.Background(), uuid.New(), StatusInput{Status: &bogus})
	require.Error(t, err)
}

func TestAdjustmentPreviewAndApply(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)
	ctx := context.Background()

	discount := pricing.Adjustment{Type: enums.AdjustmentTypeDiscount, Amount: decimal.NewFromInt(200)}
	preview, err := f.svc.PreviewAdjustment(ctx, order.ID, discount)
	require.NoError(t, err)
	assert.True(t, preview.AdjustedTotal.Equal(decimal.NewFromInt(1570)))
	assert.True(t, preview.TotalChanged)

	reloaded, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Total.Equal(decimal.NewFromInt(1770)))

	reason := "  loyal customer "
	applied, err := f.svc.ApplyAdjustment(ctx, order.ID, AdjustmentInput{Adjustment: discount, Reason: &reason})
	require.NoError(t, err)
	assert.True(t, applied.Total.Equal(decimal.NewFromInt(1570)))
	require.Len(t, applied.Adjustments, 1)
	assert.True(t, applied.Adjustments[0].PreviousTotal.Equal(decimal.NewFromInt(1770)))

	refund := pricing.Adjustment{Type: enums.AdjustmentTypeRefund, Amount: decimal.NewFromInt(2000)}
	applied, err = f.svc.ApplyAdjustment(ctx, order.ID, AdjustmentInput{Adjustment: refund})
	require.NoError(t, err)
	assert.True(t, applied.Total.Equal(decimal.NewFromInt(-430)))
	assert.Len(t, applied.Adjustments, 2)
	assert.Len(t, f.events(t, enums.EventOrderAdjusted), 2)
}

func TestAdjustmentValidation(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)

	_, err := f.svc.PreviewAdjustment(context.Background(), order.ID, pricing.Adjustment{Type: "bonus", Amount: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.Equal(t, []string{"type"}, fieldNames(err))

	_, err = f.svc.ApplyAdjustment(context.Background(), order.ID, AdjustmentInput{
		Adjustment: pricing.Adjustment{Type: enums.AdjustmentTypeFee, Amount: decimal.Zero},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"amount"}, fieldNames(err))
}

func TestAdjustmentRejectedOnCancelledOrder(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)
	cancelled := enums.OrderStatusCancelled
	_, err := f.svc.UpdateStatus(context.Background(), order.ID, StatusInput{Status: &cancelled})
	require.NoError(t, err)

	_, err = f.svc.ApplyAdjustment(context.Background(), order.ID, AdjustmentInput{
		Adjustment: pricing.Adjustment{Type: enums.AdjustmentTypeFee, Amount: decimal.NewFromInt(10)},
	})
	require.Error(t, err)
	assert.Equal(t, ReasonNotEditable, reasonOf(t, err))
}

func TestUpdateItemsReconcilesLinesAndStock(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)
	amount := decimal.NewFromInt(1400)

	updated, err := f.svc.UpdateItems(context.Background(), order.ID, UpdateItemsInput{
		Items: []ItemInput{
			{ProductID: f.mango.ID, Quantity: 4},
			{ProductID: f.honey.ID, Quantity: 0},
		},
		NewAmount: &amount,
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 4, updated.Items[0].Quantity)
	assert.True(t, updated.Subtotal.Equal(decimal.NewFromInt(1400)))
	assert.True(t, updated.Total.Equal(decimal.NewFromInt(1470)))

	assert.Equal(t, 6, f.stock(t, f.mango.ID))
	assert.Equal(t, 2, f.stock(t, f.honey.ID))
	assert.Len(t, f.events(t, enums.EventOrderItemsUpdated), 1)
}

func TestUpdateItemsRejectsAmountMismatch(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)
	amount := decimal.NewFromInt(999)

	_, err := f.svc.UpdateItems(context.Background(), order.ID, UpdateItemsInput{
		Items:     []ItemInput{{ProductID: f.mango.ID, Quantity: 1}},
		NewAmount: &amount,
	})
	require.Error(t, err)
	assert.Equal(t, []string{"newAmount"}, fieldNames(err))
	assert.Equal(t, 7, f.stock(t, f.mango.ID))
}

func TestUpdateItemsRejectsForeignProductAndEmptyResult(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)
	other := seedProduct(t, f.conn, "Dates", enums.UnitTypeCount, 100, 5)

	_, err := f.svc.UpdateItems(context.Background(), order.ID, UpdateItemsInput{
		Items: []ItemInput{{ProductID: other.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"items[0].product"}, fieldNames(err))

	_, err = f.svc.UpdateItems(context.Background(), order.ID, UpdateItemsInput{
		Items: []ItemInput{{ProductID: f.mango.ID, Quantity: 0}},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"items"}, fieldNames(err))
}

func TestUpdateItemsRejectsExceedingStock(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)

	_, err := f.svc.UpdateItems(context.Background(), order.ID, UpdateItemsInput{
		Items: []ItemInput{
			{ProductID: f.mango.ID, Quantity: 3},
			{ProductID: f.honey.ID, Quantity: 5},
		},
	})
	require.Error(t, err)
	assert.Equal(t, ReasonStockExceeded, reasonOf(t, err))
	assert.Equal(t, 1, f.stock(t, f.honey.ID))
}

func TestUpdateItemsRequiresEditableOrder(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)
	ctx := context.Background()
	for _, status := range []enums.OrderStatus{enums.OrderStatusProcessing, enums.OrderStatusShipped} {
		next := status
		_, err := f.svc.UpdateStatus(ctx, order.ID, StatusInput{Status: &next})
		require.NoError(t, err)
	}

	_, err := f.svc.UpdateItems(ctx, order.ID, UpdateItemsInput{
		Items: []ItemInput{{ProductID: f.mango.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, ReasonNotEditable, reasonOf(t, err))
}

func TestDeleteRestocksPendingOrder(t *testing.T) {
	f := newFixture(t)
	order := f.place(t)

	require.NoError(t, f.svc.Delete(context.Background(), order.ID))
	assert.Equal(t, 10, f.stock(t, f.mango.ID))
	assert.Equal(t, 2, f.stock(t, f.honey.ID))

	_, err := f.svc.Get(context.Background(), order.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	assert.Len(t, f.events(t, enums.EventOrderDeleted), 1)

	err = f.svc.Delete(context.Background(), order.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	first := f.place(t)

	second, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items:          []ItemInput{{ProductID: f.mango.ID, Quantity: 1}},
		Name:           "Nadia",
		Phone:          "01811000000",
		Address:        "Chittagong",
		ShippingMethod: enums.ShippingMethodRemote,
	})
	require.NoError(t, err)

	ctx := context.Background()
	params := pagination.Params{Page: 1, Limit: 10}

	all, err := f.svc.List(ctx, ListFilters{}, params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Pagination.Total)

	bySearch, err := f.svc.List(ctx, ListFilters{Search: "nadia"}, params)
	require.NoError(t, err)
	require.Len(t, bySearch.Items, 1)
	assert.Equal(t, second.ID, bySearch.Items[0].ID)

	honey := f.honey.ID
	byProduct, err := f.svc.List(ctx, ListFilters{ProductID: &honey}, params)
	require.NoError(t, err)
	require.Len(t, byProduct.Items, 1)
	assert.Equal(t, first.ID, byProduct.Items[0].ID)

	floor := decimal.NewFromInt(1000)
	byAmount, err := f.svc.List(ctx, ListFilters{MinAmount: &floor}, params)
	require.NoError(t, err)
	require.Len(t, byAmount.Items, 1)
	assert.Equal(t, first.ID, byAmount.Items[0].ID)
}
