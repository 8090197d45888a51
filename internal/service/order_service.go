package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"order-service/internal/models"
	"order-service/internal/order"
	"order-service/internal/repository"
	"order-service/internal/shipping"
)

// StockCacheInvalidator drops cached product entries after the order
// workflows change stock outside the product repository.
type StockCacheInvalidator interface {
	Invalidate(ctx context.Context, productIDs ...int)
}

// OrderService orchestrates order creation and lifecycle transitions over
// the store interfaces.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	log       *zap.Logger
	now       func() time.Time
	cacheInv  StockCacheInvalidator
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	log *zap.Logger,
) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		orders:    orders,
		products:  products,
		customers: customers,
		log:       log,
		now:       time.Now,
	}
}

// SetStockCacheInvalidator wires an optional product cache to invalidate
// when stock changes as a side effect of order workflows.
func (s *OrderService) SetStockCacheInvalidator(inv StockCacheInvalidator) {
	s.cacheInv = inv
}

// Create builds and persists a new order in AWAITING_PAYMENT: it resolves
// the customer, validates the shipping method, snapshots each product's
// unit price, computes the totals and hands everything to the repository's
// transactional CreateOrder. Stock is checked and decremented inside that
// transaction, so a failed creation leaves stock untouched.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*OrderDetail, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", repository.ErrInvalidInput)
	}

	customer, err := s.customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("resolve customer %d: %w", in.CustomerID, err)
	}

	strategy, err := shipping.New(in.ShippingMethod)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for product %d", repository.ErrInvalidInput, line.ProductID)
		}
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolve product %d: %w", line.ProductID, err)
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(subtotal)
		items = append(items, models.OrderItem{
			ProductID:   product.ProductID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    subtotal,
		})
	}

	fee, err := strategy.Fee(total)
	if err != nil {
		return nil, err
	}

	now := s.now()
	method := strategy.Code()
	o := &models.Order{
		OrderNumber:    newOrderNumber(now),
		TotalAmount:    total,
		ShippingAmount: decimal.NewNullDecimal(fee),
		ShippingMethod: &method,
		Status:         order.StatusAwaitingPayment,
		CustomerID:     customer.CustomerID,
		CreatedAt:      now,
	}

	if err := s.orders.CreateOrder(ctx, o, items); err != nil {
		return nil, err
	}
	s.invalidateStock(ctx, items)

	s.log.Info("order created",
		zap.Int("order_id", o.OrderID),
		zap.String("order_number", o.OrderNumber),
		zap.Int("customer_id", o.CustomerID),
		zap.String("total_amount", o.TotalAmount.String()),
		zap.String("shipping_method", method),
	)

	return buildDetail(o, items, customer), nil
}

// Pay moves the order from AWAITING_PAYMENT to PAID.
func (s *OrderService) Pay(ctx context.Context, id int) (*OrderDetail, error) {
	return s.transition(ctx, id, order.ActionPay, "payment could not be processed")
}

// Ship moves the order from PAID to SHIPPED.
func (s *OrderService) Ship(ctx context.Context, id int) (*OrderDetail, error) {
	return s.transition(ctx, id, order.ActionShip, "order could not be shipped")
}

// Cancel moves the order to CANCELLED and, when the order had not shipped,
// restores each item's quantity to its product's stock. Status change and
// restock commit in one transaction.
func (s *OrderService) Cancel(ctx context.Context, id int) (*OrderDetail, error) {
	o, items, err := s.orders.GetWithItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve order %d: %w", id, err)
	}

	next, allowed, err := order.Transition(o.Status, order.ActionCancel)
	if err != nil {
		s.log.Error("order has unrecognized status",
			zap.Int("order_id", id), zap.String("status", o.Status.String()))
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("order could not be cancelled: %w: %s does not allow %s",
			ErrInvalidTransition, o.Status, order.ActionCancel)
	}

	var restock []models.OrderItem
	if o.Status != order.StatusShipped {
		restock = items
	}

	if err := s.orders.CancelOrder(ctx, id, o.Status, next, restock); err != nil {
		return nil, err
	}
	s.invalidateStock(ctx, restock)

	s.log.Info("order cancelled",
		zap.Int("order_id", id),
		zap.Int("restocked_items", len(restock)),
	)

	return s.GetByID(ctx, id)
}

func (s *OrderService) transition(ctx context.Context, id int, action order.Action, refusalMsg string) (*OrderDetail, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve order %d: %w", id, err)
	}

	next, allowed, err := order.Transition(o.Status, action)
	if err != nil {
		s.log.Error("order has unrecognized status",
			zap.Int("order_id", id), zap.String("status", o.Status.String()))
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%s: %w: %s does not allow %s", refusalMsg, ErrInvalidTransition, o.Status, action)
	}

	if err := s.orders.UpdateStatus(ctx, id, o.Status, next); err != nil {
		return nil, err
	}

	s.log.Info("order status changed",
		zap.Int("order_id", id),
		zap.String("from", o.Status.String()),
		zap.String("to", next.String()),
	)

	return s.GetByID(ctx, id)
}

// GetByID returns the materialized order with items and customer summary.
func (s *OrderService) GetByID(ctx context.Context, id int) (*OrderDetail, error) {
	o, items, err := s.orders.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByID(ctx, o.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("resolve customer %d for order %d: %w", o.CustomerID, id, err)
	}
	return buildDetail(o, items, customer), nil
}

func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	return s.orders.GetAll(ctx)
}

func (s *OrderService) ListByCustomer(ctx context.Context, customerID int) ([]models.Order, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("resolve customer %d: %w", customerID, err)
	}
	return s.orders.GetByCustomerID(ctx, customerID)
}

func (s *OrderService) invalidateStock(ctx context.Context, items []models.OrderItem) {
	if s.cacheInv == nil || len(items) == 0 {
		return
	}
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	s.cacheInv.Invalidate(ctx, ids...)
}

// newOrderNumber derives a human-traceable order number from the creation
// timestamp, with a random suffix so same-second orders cannot collide.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102150405"), suffix)
}
