package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"order-service/internal/models"
)

type customerRepo struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	if c.Name == "" {
		return fmt.Errorf("%w: customer name required", ErrInvalidInput)
	}
	if !strings.Contains(c.Email, "@") {
		return fmt.Errorf("%w: customer email required", ErrInvalidInput)
	}

	sql := `
		INSERT INTO customers (
			name,
			email,
			phone_number,
			address,
			registered_at
	) VALUES ($1, $2, $3, $4, $5)
	RETURNING customer_id
	`

	c.RegisteredAt = time.Now()

	err := r.db.QueryRow(ctx, sql,
		c.Name,
		c.Email,
		c.PhoneNumber,
		c.Address,
		c.RegisteredAt,
	).Scan(&c.CustomerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: email %s", ErrDuplicate, c.Email)
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: customer ID must be positive", ErrInvalidInput)
	}

	sql := `
		SELECT
			customer_id,
			name,
			email,
			phone_number,
			address,
			registered_at
		FROM customers WHERE customer_id = $1
		`

	var c models.Customer

	err := r.db.QueryRow(ctx, sql, id).Scan(
		&c.CustomerID,
		&c.Name,
		&c.Email,
		&c.PhoneNumber,
		&c.Address,
		&c.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer by id %d: %w", id, err)
	}

	return &c, nil
}

func (r *customerRepo) GetAll(ctx context.Context) ([]models.Customer, error) {
	sql := `
		SELECT
			customer_id,
			name,
			email,
			phone_number,
			address,
			registered_at
		FROM customers
		ORDER BY customer_id
	`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to get all customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer

	for rows.Next() {
		var c models.Customer

		err := rows.Scan(
			&c.CustomerID,
			&c.Name,
			&c.Email,
			&c.PhoneNumber,
			&c.Address,
			&c.RegisteredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return customers, nil
}

func (r *customerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", ErrInvalidInput)
	}

	sql := `
		SELECT
			customer_id,
			name,
			email,
			phone_number,
			address,
			registered_at
		FROM customers WHERE email = $1
		`

	var c models.Customer

	err := r.db.QueryRow(ctx, sql, email).Scan(
		&c.CustomerID,
		&c.Name,
		&c.Email,
		&c.PhoneNumber,
		&c.Address,
		&c.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}

	return &c, nil
}
