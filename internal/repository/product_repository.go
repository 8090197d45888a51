package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"order-service/internal/models"
)

type productRepo struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name required", ErrInvalidInput)
	}
	if p.Price.Sign() <= 0 {
		return fmt.Errorf("%w: product price must be positive", ErrInvalidInput)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: product quantity cannot be negative", ErrInvalidInput)
	}

	sql := `
		INSERT INTO products (
			name,
			description,
			price,
			quantity,
			created_at,
			updated_at
	) VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING product_id
	`

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	err := r.db.QueryRow(ctx, sql,
		p.Name,
		p.Description,
		p.Price,
		p.Quantity,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ProductID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: product ID must be positive", ErrInvalidInput)
	}

	sql := `
		SELECT
			product_id,
			name,
			description,
			price,
			quantity,
			created_at,
			updated_at
		FROM products WHERE product_id = $1
		`

	var p models.Product

	err := r.db.QueryRow(ctx, sql, id).Scan(
		&p.ProductID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Quantity,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by id %d: %w", id, err)
	}

	return &p, nil
}

func (r *productRepo) GetAll(ctx context.Context) ([]models.Product, error) {
	sql := `
		SELECT
			product_id,
			name,
			description,
			price,
			quantity,
			created_at,
			updated_at
		FROM products
		ORDER BY product_id
	`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	defer rows.Close()

	var products []models.Product

	for rows.Next() {
		var p models.Product

		err := rows.Scan(
			&p.ProductID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.Quantity,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return products, nil
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	if p.ProductID <= 0 {
		return fmt.Errorf("%w: product ID must be positive", ErrInvalidInput)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: product name required", ErrInvalidInput)
	}
	if p.Price.Sign() <= 0 {
		return fmt.Errorf("%w: product price must be positive", ErrInvalidInput)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: product quantity cannot be negative", ErrInvalidInput)
	}

	sql := `
		UPDATE products
		SET name = $1,
			description = $2,
			price = $3,
			quantity = $4,
			updated_at = $5
		WHERE product_id = $6
	`

	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, sql,
		p.Name,
		p.Description,
		p.Price,
		p.Quantity,
		p.UpdatedAt,
		p.ProductID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ProductID, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateQuantity applies a relative stock change. The quantity >= 0 check
// runs in the database so concurrent changes cannot drive stock negative.
func (r *productRepo) UpdateQuantity(ctx context.Context, id int, change int) error {
	if id <= 0 {
		return fmt.Errorf("%w: product ID must be positive", ErrInvalidInput)
	}

	sql := `
		UPDATE products
		SET quantity = quantity + $1,
			updated_at = now()
		WHERE product_id = $2 AND quantity + $1 >= 0
	`

	result, err := r.db.Exec(ctx, sql, change, id)
	if err != nil {
		return fmt.Errorf("failed to update quantity for product %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		// Either the product does not exist or the change would make
		// stock negative; distinguish for the caller.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: product %d", ErrInsufficientStock, id)
	}

	return nil
}
