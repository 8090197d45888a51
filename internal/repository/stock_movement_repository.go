package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"order-service/internal/models"
)

type stockMovementRepo struct {
	db *pgxpool.Pool
}

func NewStockMovementRepository(db *pgxpool.Pool) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

const movementColumns = `
		movement_id,
		product_id,
		order_id,
		movement_type,
		change_quant,
		created_at`

func (r *stockMovementRepo) GetByProductID(ctx context.Context, productID int) ([]models.StockMovement, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: product ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY movement_id
	`

	rows, err := r.db.Query(ctx, sql, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get movements for product %d: %w", productID, err)
	}
	defer rows.Close()

	return collectMovements(rows)
}

func (r *stockMovementRepo) GetByOrderID(ctx context.Context, orderID int) ([]models.StockMovement, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT` + movementColumns + `
		FROM stock_movements
		WHERE order_id = $1
		ORDER BY movement_id
	`

	rows, err := r.db.Query(ctx, sql, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get movements for order %d: %w", orderID, err)
	}
	defer rows.Close()

	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	for rows.Next() {
		var m models.StockMovement
		err := rows.Scan(
			&m.MovementID,
			&m.ProductID,
			&m.OrderID,
			&m.MovementType,
			&m.ChangeQuant,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}
	return movements, nil
}
