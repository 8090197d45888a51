package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"order-service/internal/models"
	"order-service/internal/order"
)

type orderRepo struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `
		order_id,
		order_number,
		total_amount,
		shipping_amount,
		shipping_method,
		status,
		customer_id,
		created_at`

func scanOrder(row pgx.Row, o *models.Order) error {
	return row.Scan(
		&o.OrderID,
		&o.OrderNumber,
		&o.TotalAmount,
		&o.ShippingAmount,
		&o.ShippingMethod,
		&o.Status,
		&o.CustomerID,
		&o.CreatedAt,
	)
}

// CreateOrder writes the order, its items, the stock decrements and the
// outgoing stock movements in a single transaction. Product rows are locked
// with SELECT ... FOR UPDATE in product-id order and stock re-verified under
// the lock, so two concurrent orders for the same product cannot both pass
// the check and overlapping orders cannot deadlock. On any failure the
// transaction rolls back and no stock is touched.
func (r *orderRepo) CreateOrder(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	if o == nil {
		return fmt.Errorf("%w: order cannot be nil", ErrInvalidInput)
	}
	if o.CustomerID <= 0 {
		return fmt.Errorf("%w: customer ID must be positive", ErrInvalidInput)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrInvalidInput)
	}
	for _, item := range items {
		if item.ProductID <= 0 {
			return fmt.Errorf("%w: product ID must be positive", ErrInvalidInput)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var customerID int
	err = tx.QueryRow(ctx,
		`SELECT customer_id FROM customers WHERE customer_id = $1`,
		o.CustomerID,
	).Scan(&customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("customer %d: %w", o.CustomerID, ErrNotFound)
		}
		return fmt.Errorf("failed to get customer by id: %w", err)
	}

	productIDs := make([]int, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	rows, err := tx.Query(ctx, `
		SELECT
			product_id,
			name,
			quantity
		FROM products
		WHERE product_id = ANY($1::int[])
		ORDER BY product_id
		FOR UPDATE
	`, productIDs)
	if err != nil {
		return fmt.Errorf("failed to lock product rows: %w", err)
	}

	type stockRow struct {
		name     string
		quantity int
	}
	stock := make(map[int]stockRow)

	for rows.Next() {
		var id int
		var s stockRow
		if err := rows.Scan(&id, &s.name, &s.quantity); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan product stock: %w", err)
		}
		stock[id] = s
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to complete row iteration: %w", err)
	}

	// Deplete the snapshot line by line so several lines for the same
	// product are checked against what the earlier lines left over.
	remaining := make(map[int]int, len(stock))
	for id, s := range stock {
		remaining[id] = s.quantity
	}
	for _, item := range items {
		s, ok := stock[item.ProductID]
		if !ok {
			return fmt.Errorf("product %d: %w", item.ProductID, ErrNotFound)
		}
		if remaining[item.ProductID] < item.Quantity {
			return fmt.Errorf("%w for product %q: have %d, need %d",
				ErrInsufficientStock, s.name, remaining[item.ProductID], item.Quantity)
		}
		remaining[item.ProductID] -= item.Quantity
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (
			order_number,
			total_amount,
			shipping_amount,
			shipping_method,
			status,
			customer_id,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING order_id
	`,
		o.OrderNumber,
		o.TotalAmount,
		o.ShippingAmount,
		o.ShippingMethod,
		o.Status,
		o.CustomerID,
		o.CreatedAt,
	).Scan(&o.OrderID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		item := &items[i]
		item.OrderID = o.OrderID
		item.ProductName = stock[item.ProductID].name

		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (
				order_id,
				product_id,
				quantity,
				unit_price,
				subtotal
			) VALUES ($1, $2, $3, $4, $5)
			RETURNING order_item_id
		`,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
		).Scan(&item.OrderItemID)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE products
			SET quantity = quantity - $1,
				updated_at = now()
			WHERE product_id = $2
		`, item.Quantity, item.ProductID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock for product %d: %w", item.ProductID, err)
		}

		if err := insertStockMovement(ctx, tx, item.ProductID, o.OrderID, models.MovementOutgoing, -item.Quantity); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int) (*models.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT` + orderColumns + `
		FROM orders
		WHERE order_id = $1
	`

	var o models.Order
	if err := scanOrder(r.db.QueryRow(ctx, sql, id), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}

	return &o, nil
}

func (r *orderRepo) GetWithItems(ctx context.Context, id int) (*models.Order, []models.OrderItem, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT
			oi.order_item_id,
			oi.order_id,
			oi.product_id,
			p.name,
			oi.quantity,
			oi.unit_price,
			oi.subtotal
		FROM order_items oi
		JOIN products p ON p.product_id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.order_item_id
	`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get items for order %d: %w", id, err)
	}
	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.OrderItemID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return o, items, nil
}

func (r *orderRepo) GetAll(ctx context.Context) ([]models.Order, error) {
	sql := `SELECT` + orderColumns + `
		FROM orders
		ORDER BY order_id
	`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *orderRepo) GetByCustomerID(ctx context.Context, customerID int) ([]models.Order, error) {
	if customerID <= 0 {
		return nil, fmt.Errorf("%w: customer ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY order_id
	`

	rows, err := r.db.Query(ctx, sql, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for customer %d: %w", customerID, err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}
	return orders, nil
}

// UpdateStatus is guarded by the expected current status so a concurrent
// transition cannot be silently overwritten.
func (r *orderRepo) UpdateStatus(ctx context.Context, id int, from, to order.Status) error {
	if id <= 0 {
		return fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}

	result, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $1
		WHERE order_id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update status of order %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: order %d is no longer %s", ErrStatusConflict, id, from)
	}

	return nil
}

// CancelOrder writes the status change and the stock restoration in one
// transaction, with the same expected-status guard as UpdateStatus.
func (r *orderRepo) CancelOrder(ctx context.Context, id int, from, to order.Status, restock []models.OrderItem) error {
	if id <= 0 {
		return fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $1
		WHERE order_id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update status of order %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: order %d is no longer %s", ErrStatusConflict, id, from)
	}

	for _, item := range restock {
		_, err := tx.Exec(ctx, `
			UPDATE products
			SET quantity = quantity + $1,
				updated_at = now()
			WHERE product_id = $2
		`, item.Quantity, item.ProductID)
		if err != nil {
			return fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, err)
		}

		if err := insertStockMovement(ctx, tx, item.ProductID, id, models.MovementIncoming, item.Quantity); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertStockMovement(ctx context.Context, tx pgx.Tx, productID, orderID int, movementType string, change int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_movements (
			product_id,
			order_id,
			movement_type,
			change_quant,
			created_at
		) VALUES ($1, $2, $3, $4, now())
	`, productID, orderID, movementType, change)
	if err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}
