package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"order-service/internal/models"
	"order-service/internal/repository"
)

const (
	productKeyPrefix = "product:"
	productsAllKey   = "products:all"
	notFoundMarker   = "notfound"
)

// CachedProductRepository decorates a ProductRepository with a Redis
// read-through cache. Cache failures are logged and fall back to the
// database; they never fail the request.
type CachedProductRepository struct {
	realRepo repository.ProductRepository
	redis    *redis.Client
	log      *zap.Logger
	ttl      time.Duration
}

func NewCachedProductRepository(realRepo repository.ProductRepository, rdb *redis.Client, log *zap.Logger) *CachedProductRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    rdb,
		log:      log,
		ttl:      5 * time.Minute,
	}
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	key := fmt.Sprintf("%s%d", productKeyPrefix, id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, repository.ErrNotFound
		}
		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			c.log.Warn("failed to unmarshal cached product, falling back to db",
				zap.Int("product_id", id), zap.Error(err))
			break
		}
		return &product, nil

	case errors.Is(err, redis.Nil):

	default:
		c.log.Warn("redis error, falling back to db", zap.Error(err))
	}

	product, err := c.realRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, 1*time.Minute).Err(); setErr != nil {
				c.log.Warn("failed to cache notfound marker", zap.Error(setErr))
			}
		}
		return nil, err
	}

	jsonData, err := json.Marshal(product)
	if err != nil {
		c.log.Warn("failed to marshal product for cache", zap.Error(err))
		return product, nil
	}

	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		c.log.Warn("failed to cache product", zap.Error(err))
	}

	return product, nil
}

func (c *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	data, err := c.redis.Get(ctx, productsAllKey).Bytes()
	if err == nil {
		var products []models.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		c.log.Warn("failed to unmarshal cached product list, falling back to db", zap.Error(err))
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("redis error, falling back to db", zap.Error(err))
	}

	products, err := c.realRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(products)
	if err != nil {
		c.log.Warn("failed to marshal product list for cache", zap.Error(err))
		return products, nil
	}
	if err := c.redis.Set(ctx, productsAllKey, jsonData, c.ttl).Err(); err != nil {
		c.log.Warn("failed to cache product list", zap.Error(err))
	}

	return products, nil
}

func (c *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	c.invalidateList(ctx)
	return c.realRepo.Create(ctx, product)
}

func (c *CachedProductRepository) Update(ctx context.Context, product *models.Product) error {
	c.invalidate(ctx, product.ProductID)
	return c.realRepo.Update(ctx, product)
}

func (c *CachedProductRepository) UpdateQuantity(ctx context.Context, id int, change int) error {
	c.invalidate(ctx, id)
	return c.realRepo.UpdateQuantity(ctx, id, change)
}

// Invalidate drops cached entries for a product whose stock was changed
// outside this repository, e.g. by the order workflows.
func (c *CachedProductRepository) Invalidate(ctx context.Context, productIDs ...int) {
	for _, id := range productIDs {
		c.invalidate(ctx, id)
	}
}

func (c *CachedProductRepository) invalidate(ctx context.Context, productID int) {
	key := fmt.Sprintf("%s%d", productKeyPrefix, productID)
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		c.log.Warn("failed to delete product cache entry", zap.String("key", key), zap.Error(err))
	}
	c.invalidateList(ctx)
}

func (c *CachedProductRepository) invalidateList(ctx context.Context) {
	if err := c.redis.Del(ctx, productsAllKey).Err(); err != nil {
		c.log.Warn("failed to delete product list cache entry", zap.Error(err))
	}
}
