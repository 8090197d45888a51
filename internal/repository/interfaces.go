package repository

import (
	"context"

	"order-service/internal/models"
	"order-service/internal/order"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id int) (*models.Customer, error)
	GetAll(ctx context.Context) ([]models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id int) (*models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	UpdateQuantity(ctx context.Context, id int, change int) error
}

type OrderRepository interface {
	// CreateOrder persists the order, its items, the stock decrements and
	// the outgoing stock movements in one transaction. Product rows are
	// locked and stock re-verified inside the transaction; on any failure
	// nothing is written.
	CreateOrder(ctx context.Context, o *models.Order, items []models.OrderItem) error
	GetByID(ctx context.Context, id int) (*models.Order, error)
	GetWithItems(ctx context.Context, id int) (*models.Order, []models.OrderItem, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByCustomerID(ctx context.Context, customerID int) ([]models.Order, error)
	// UpdateStatus moves the order from the expected status to the new one,
	// failing with ErrStatusConflict if the row no longer holds the
	// expected status.
	UpdateStatus(ctx context.Context, id int, from, to order.Status) error
	// CancelOrder updates the status and, when restock is non-empty,
	// returns each item's quantity to its product's stock in the same
	// transaction, recording incoming stock movements.
	CancelOrder(ctx context.Context, id int, from, to order.Status, restock []models.OrderItem) error
}

type StockMovementRepository interface {
	GetByProductID(ctx context.Context, productID int) ([]models.StockMovement, error)
	GetByOrderID(ctx context.Context, orderID int) ([]models.StockMovement, error)
}
