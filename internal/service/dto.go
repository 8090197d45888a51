package service

import (
	"time"

	"github.com/shopspring/decimal"

	"order-service/internal/models"
	"order-service/internal/order"
)

type CreateOrderInput struct {
	CustomerID     int
	ShippingMethod string
	Items          []CreateOrderItem
}

type CreateOrderItem struct {
	ProductID int
	Quantity  int
}

type CustomerSummary struct {
	CustomerID int    `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

type OrderItemDetail struct {
	OrderItemID int             `json:"order_item_id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderDetail is the fully materialized order returned by the workflows:
// the order row plus its customer summary and item snapshots.
type OrderDetail struct {
	OrderID        int               `json:"order_id"`
	OrderNumber    string            `json:"order_number"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	ShippingAmount decimal.Decimal   `json:"shipping_amount"`
	ShippingMethod string            `json:"shipping_method"`
	Status         order.Status      `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	Customer       CustomerSummary   `json:"customer"`
	Items          []OrderItemDetail `json:"items"`
}

func buildDetail(o *models.Order, items []models.OrderItem, customer *models.Customer) *OrderDetail {
	detail := &OrderDetail{
		OrderID:     o.OrderID,
		OrderNumber: o.OrderNumber,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		Customer: CustomerSummary{
			CustomerID: customer.CustomerID,
			Name:       customer.Name,
			Email:      customer.Email,
		},
		Items: make([]OrderItemDetail, 0, len(items)),
	}
	if o.ShippingAmount.Valid {
		detail.ShippingAmount = o.ShippingAmount.Decimal
	}
	if o.ShippingMethod != nil {
		detail.ShippingMethod = *o.ShippingMethod
	}
	for _, item := range items {
		detail.Items = append(detail.Items, OrderItemDetail{
			OrderItemID: item.OrderItemID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	return detail
}
