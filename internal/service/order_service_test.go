package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-service/internal/models"
	"order-service/internal/order"
	"order-service/internal/repository"
	"order-service/internal/shipping"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	store    *fakeStore
	svc      *OrderService
	customer models.Customer
	laptop   models.Product
	mouse    models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newFakeStore()
	customer := store.addCustomer(models.Customer{Name: "John Silva", Email: "john@example.com"})
	laptop := store.addProduct(models.Product{Name: "Laptop", Price: dec("100.00"), Quantity: 10})
	mouse := store.addProduct(models.Product{Name: "Mouse", Price: dec("50.00"), Quantity: 5})

	svc := NewOrderService(fakeOrders{store}, fakeProducts{store}, store, nil)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}

	return &fixture{store: store, svc: svc, customer: customer, laptop: laptop, mouse: mouse}
}

func (f *fixture) createOrder(t *testing.T, items ...CreateOrderItem) *OrderDetail {
	t.Helper()
	detail, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:     f.customer.CustomerID,
		ShippingMethod: "GROUND",
		Items:          items,
	})
	require.NoError(t, err)
	return detail
}

func TestCreateOrderComputesTotalsAndDecrementsStock(t *testing.T) {
	f := newFixture(t)

	detail, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:     f.customer.CustomerID,
		ShippingMethod: "ground",
		Items: []CreateOrderItem{
			{ProductID: f.laptop.ProductID, Quantity: 2},
			{ProductID: f.mouse.ProductID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	// total = 100*2 + 50*3 = 350.00, ground fee = 17.50
	assert.True(t, dec("350.00").Equal(detail.TotalAmount), "total = %s", detail.TotalAmount)
	assert.True(t, dec("17.50").Equal(detail.ShippingAmount), "fee = %s", detail.ShippingAmount)
	assert.Equal(t, "GROUND", detail.ShippingMethod)
	assert.Equal(t, order.StatusAwaitingPayment, detail.Status)
	assert.True(t, strings.HasPrefix(detail.OrderNumber, "ORD-20260831120000-"), detail.OrderNumber)

	require.Len(t, detail.Items, 2)
	assert.Equal(t, "Laptop", detail.Items[0].ProductName)
	assert.True(t, dec("100.00").Equal(detail.Items[0].UnitPrice))
	assert.True(t, dec("200.00").Equal(detail.Items[0].Subtotal))
	assert.True(t, dec("150.00").Equal(detail.Items[1].Subtotal))

	assert.Equal(t, f.customer.CustomerID, detail.Customer.CustomerID)
	assert.Equal(t, "john@example.com", detail.Customer.Email)

	assert.Equal(t, 8, f.store.products[f.laptop.ProductID].Quantity)
	assert.Equal(t, 2, f.store.products[f.mouse.ProductID].Quantity)
}

func TestCreateOrderSnapshotsPriceAtCreation(t *testing.T) {
	f := newFixture(t)

	detail := f.createOrder(t, CreateOrderItem{ProductID: f.laptop.ProductID, Quantity: 1})

	// later price change must not affect the stored snapshot
	p := f.store.products[f.laptop.ProductID]
	p.Price = dec("999.00")
	f.store.products[f.laptop.ProductID] = p

	reread, err := f.svc.GetByID(context.Background(), detail.OrderID)
	require.NoError(t, err)
	assert.True(t, dec("100.00").Equal(reread.Items[0].UnitPrice))
	assert.True(t, dec("100.00").Equal(reread.TotalAmount))
}

func TestCreateOrderAirShipping(t *testing.T) {
	f := newFixture(t)

	detail, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:     f.customer.CustomerID,
		ShippingMethod: "AIR",
		Items:          []CreateOrderItem{{ProductID: f.laptop.ProductID, Quantity: 10}},
	})
	require.NoError(t, err)

	// total = 1000.00, air fee = 100.00
	assert.True(t, dec("1000.00").Equal(detail.TotalAmount))
	assert.True(t, dec("100.00").Equal(detail.ShippingAmount))
}

func TestCreateOrderCustomerNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:     999,
		ShippingMethod: "GROUND",
		Items:          []CreateOrderItem{{ProductID: f.laptop.ProductID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateOrderProductNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:     f.customer.CustomerID,
		ShippingMethod: "GROUND",
		Items:          []CreateOrderItem{{ProductID: 999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateOrderUnsupportedShippingMethod(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:     f.customer.CustomerID,
		ShippingMethod: "SEA",
		Items:          []CreateOrderItem{{ProductID: f.laptop.ProductID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, shipping.ErrUnsupportedMethod)
}

func TestCreateOrderInsufficientStockLeavesStockUntouched(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:     f.customer.CustomerID,
		ShippingMethod: "GROUND",
		Items: []CreateOrderItem{
			{ProductID: f.laptop.ProductID, Quantity: 2},
			{ProductID: f.mouse.ProductID, Quantity: 6}, // only 5 in stock
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Mouse")

	// atomic creation: the first line's stock must not be decremented
	assert.Equal(t, 10, f.store.products[f.laptop.ProductID].Quantity)
	assert.Equal(t, 5, f.store.products[f.mouse.ProductID].Quantity)
	assert.Empty(t, f.store.orders)
}

func TestCreateOrderDuplicateLinesExceedingStock(t *testing.T) {
	f := newFixture(t)

	// 3 + 3 of the same product with only 5 in stock: each line alone
	// fits, the combined quantity does not
	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:     f.customer.CustomerID,
		ShippingMethod: "GROUND",
		Items: []CreateOrderItem{
			{ProductID: f.mouse.ProductID, Quantity: 3},
			{ProductID: f.mouse.ProductID, Quantity: 3},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Mouse")

	assert.Equal(t, 5, f.store.products[f.mouse.ProductID].Quantity)
	assert.Empty(t, f.store.orders)
}

func TestCreateOrderDuplicateLinesExhaustingStock(t *testing.T) {
	f := newFixture(t)

	detail := f.createOrder(t,
		CreateOrderItem{ProductID: f.mouse.ProductID, Quantity: 2},
		CreateOrderItem{ProductID: f.mouse.ProductID, Quantity: 3},
	)

	require.Len(t, detail.Items, 2)
	assert.True(t, dec("250.00").Equal(detail.TotalAmount))
	assert.Equal(t, 0, f.store.products[f.mouse.ProductID].Quantity)
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:     f.customer.CustomerID,
		ShippingMethod: "GROUND",
	})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestCreateOrderRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:     f.customer.CustomerID,
		ShippingMethod: "GROUND",
		Items:          []CreateOrderItem{{ProductID: f.laptop.ProductID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestPayTransition(t *testing.T) {
	f := newFixture(t)
	created := f.createOrder(t, CreateOrderItem{ProductID: f.laptop.ProductID, Quantity: 1})

	paid, err := f.svc.Pay(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, paid.Status)

	// paying again is refused and the status stays PAID
	_, err = f.svc.Pay(context.Background(), created.OrderID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, order.StatusPaid, f.store.orders[created.OrderID].Status)
}

func TestShipRequiresPaid(t *testing.T) {
	f := newFixture(t)
	created := f.createOrder(t, CreateOrderItem{ProductID: f.laptop.ProductID, Quantity: 1})

	_, err := f.svc.Ship(context.Background(), created.OrderID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, order.StatusAwaitingPayment, f.store.orders[created.OrderID].Status)

	_, err = f.svc.Pay(context.Background(), created.OrderID)
	require.NoError(t, err)

	shipped, err := f.svc.Ship(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, shipped.Status)
}

func TestCancelAwaitingPaymentRestoresStock(t *testing.T) {
	f := newFixture(t)
	created := f.createOrder(t,
		CreateOrderItem{ProductID: f.laptop.ProductID, Quantity: 4},
		CreateOrderItem{ProductID: f.mouse.ProductID, Quantity: 2},
	)
	assert.Equal(t, 6, f.store.products[f.laptop.ProductID].Quantity)

	cancelled, err := f.svc.Cancel(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	assert.Equal(t, 10, f.store.products[f.laptop.ProductID].Quantity)
	assert.Equal(t, 5, f.store.products[f.mouse.ProductID].Quantity)
}

func TestCancelPaidRestoresStock(t *testing.T) {
	f := newFixture(t)
	created := f.createOrder(t, CreateOrderItem{ProductID: f.laptop.ProductID, Quantity: 3})

	_, err := f.svc.Pay(context.Background(), created.OrderID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 10, f.store.products[f.laptop.ProductID].Quantity)
}

func TestCancelShippedRefusedAndStockUntouched(t *testing.T) {
	f := newFixture(t)
	created := f.createOrder(t, CreateOrderItem{ProductID: f.laptop.ProductID, Quantity: 2})

	_, err := f.svc.Pay(context.Background(), created.OrderID)
	require.NoError(t, err)
	_, err = f.svc.Ship(context.Background(), created.OrderID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), created.OrderID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, order.StatusShipped, f.store.orders[created.OrderID].Status)
	assert.Equal(t, 8, f.store.products[f.laptop.ProductID].Quantity)
}

func TestTransitionOnUnknownStatusFails(t *testing.T) {
	f := newFixture(t)
	o := f.store.addOrder(models.Order{
		OrderNumber: "ORD-X",
		Status:      order.Status("PROCESSING"),
		CustomerID:  f.customer.CustomerID,
	}, nil)

	_, err := f.svc.Pay(context.Background(), o.OrderID)
	assert.ErrorIs(t, err, order.ErrUnknownStatus)
}

func TestTransitionOrderNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Pay(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStockCacheInvalidation(t *testing.T) {
	f := newFixture(t)
	inv := &recordingInvalidator{}
	f.svc.SetStockCacheInvalidator(inv)

	created := f.createOrder(t, CreateOrderItem{ProductID: f.laptop.ProductID, Quantity: 1})
	assert.Equal(t, []int{f.laptop.ProductID}, inv.productIDs)

	inv.productIDs = nil
	_, err := f.svc.Cancel(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, []int{f.laptop.ProductID}, inv.productIDs)
}

func TestListByCustomer(t *testing.T) {
	f := newFixture(t)
	f.createOrder(t, CreateOrderItem{ProductID: f.laptop.ProductID, Quantity: 1})
	f.createOrder(t, CreateOrderItem{ProductID: f.mouse.ProductID, Quantity: 1})

	orders, err := f.svc.ListByCustomer(context.Background(), f.customer.CustomerID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	_, err = f.svc.ListByCustomer(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
