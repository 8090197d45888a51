package models

import (
	"time"

	"github.com/shopspring/decimal"

	"order-service/internal/order"
)

type Customer struct {
	CustomerID   int       `json:"customer_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	Address      string    `json:"address"`
	RegisteredAt time.Time `json:"registered_at"`
}

type Product struct {
	ProductID   int             `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Order struct {
	OrderID        int                 `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	ShippingAmount decimal.NullDecimal `json:"shipping_amount"`
	ShippingMethod *string             `json:"shipping_method"`
	Status         order.Status        `json:"status"`
	CustomerID     int                 `json:"customer_id"`
	CreatedAt      time.Time           `json:"created_at"`
}

// OrderItem snapshots the product's unit price at creation time; it does
// not follow later price changes. ProductName is filled from the join when
// reading, it is not a column on order_items.
type OrderItem struct {
	OrderItemID int             `json:"order_item_id"`
	OrderID     int             `json:"order_id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Stock movement types.
const (
	MovementOutgoing = "outgoing"
	MovementIncoming = "incoming"
)

// StockMovement is an audit record of a product quantity change, written in
// the same transaction as the change itself.
type StockMovement struct {
	MovementID   int       `json:"movement_id"`
	ProductID    int       `json:"product_id"`
	OrderID      int       `json:"order_id"`
	MovementType string    `json:"movement_type"`
	ChangeQuant  int       `json:"change_quant"`
	CreatedAt    time.Time `json:"created_at"`
}
