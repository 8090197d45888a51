// Seeds the database with sample customers and products for local
// development. Existing data is left untouched.
package main

import (
	"context"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"order-service/internal/database"
	"order-service/internal/logging"
	"order-service/internal/models"
	"order-service/internal/repository"
)

func main() {
	log, err := logging.NewLogger()
	if err != nil {
		os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := database.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	if err := database.Migrate(cfg); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	defer pool.Close()

	ctx := context.Background()

	var customerCount int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&customerCount); err != nil {
		log.Fatal("failed to count customers", zap.Error(err))
	}

	customerRepo := repository.NewCustomerRepository(pool)
	if customerCount == 0 {
		customers := []models.Customer{
			{Name: "John Silva", Email: "john@example.com", PhoneNumber: "(11) 99999-9999", Address: "123 Elm Street"},
			{Name: "Maria Santos", Email: "maria@example.com", PhoneNumber: "(11) 88888-8888", Address: "456 Oak Avenue"},
			{Name: "Peter Oliveira", Email: "peter@example.com", PhoneNumber: "(11) 77777-7777", Address: "789 Pine Road"},
		}
		for i := range customers {
			if err := customerRepo.Create(ctx, &customers[i]); err != nil {
				log.Fatal("failed to seed customer", zap.String("email", customers[i].Email), zap.Error(err))
			}
		}
		log.Info("seeded customers", zap.Int("count", len(customers)))
	}

	var productCount int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&productCount); err != nil {
		log.Fatal("failed to count products", zap.Error(err))
	}

	productRepo := repository.NewProductRepository(pool)
	if productCount == 0 {
		products := []models.Product{
			{Name: "Dell Notebook", Description: "Dell Inspiron 15 notebook", Price: decimal.RequireFromString("2500.00"), Quantity: 10},
			{Name: "Logitech Mouse", Description: "Logitech MX Master wireless mouse", Price: decimal.RequireFromString("350.00"), Quantity: 25},
			{Name: "Mechanical Keyboard", Description: "RGB mechanical keyboard", Price: decimal.RequireFromString("450.00"), Quantity: 15},
			{Name: "24\" Monitor", Description: "24 inch Full HD LED monitor", Price: decimal.RequireFromString("800.00"), Quantity: 8},
			{Name: "Samsung Smartphone", Description: "Samsung Galaxy S23", Price: decimal.RequireFromString("3200.00"), Quantity: 12},
		}
		for i := range products {
			if err := productRepo.Create(ctx, &products[i]); err != nil {
				log.Fatal("failed to seed product", zap.String("name", products[i].Name), zap.Error(err))
			}
		}
		log.Info("seeded products", zap.Int("count", len(products)))
	}

	log.Info("seeding complete")
}
