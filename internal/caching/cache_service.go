package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"retailops/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheService holds catalog reference data in Redis. Ordering rules are
// never cached here; rule lookups always hit the database so that a rule
// edit takes effect on the next validation.
type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, prodNo int64) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, prodNo int64) error

	// Category caching
	GetCategory(ctx context.Context, cateNo string) (*models.Category, error)
	SetCategory(ctx context.Context, category *models.Category, ttl time.Duration) error
	DeleteCategory(ctx context.Context, cateNo string) error

	// Manufacturer caching
	GetManufacturer(ctx context.Context, mfrID int64) (*models.Manufacturer, error)
	SetManufacturer(ctx context.Context, mfr *models.Manufacturer, ttl time.Duration) error
	DeleteManufacturer(ctx context.Context, mfrID int64) error

	// Cache invalidation
	InvalidateCatalog(ctx context.Context) error

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisCacheService(addr, password string, db int, logger *zap.Logger) CacheService {
	// Accept redis://host:port and rediss://host:port forms as well.
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logger.Warn("redis ping failed on initialization",
			zap.String("addr", parsedAddr), zap.Error(pingErr))
	}

	return &redisCacheService{client: client, logger: logger}
}

func (r *redisCacheService) GetProduct(ctx context.Context, prodNo int64) (*models.Product, error) {
	key := fmt.Sprintf("retailops:product:%d", prodNo)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	key := fmt.Sprintf("retailops:product:%d", product.ProdNo)
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, prodNo int64) error {
	key := fmt.Sprintf("retailops:product:%d", prodNo)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetCategory(ctx context.Context, cateNo string) (*models.Category, error) {
	key := fmt.Sprintf("retailops:category:%s", cateNo)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var category models.Category
	if err := json.Unmarshal(data, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *redisCacheService) SetCategory(ctx context.Context, category *models.Category, ttl time.Duration) error {
	key := fmt.Sprintf("retailops:category:%s", category.CateNo)
	data, err := json.Marshal(category)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteCategory(ctx context.Context, cateNo string) error {
	key := fmt.Sprintf("retailops:category:%s", cateNo)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetManufacturer(ctx context.Context, mfrID int64) (*models.Manufacturer, error) {
	key := fmt.Sprintf("retailops:manufacturer:%d", mfrID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var mfr models.Manufacturer
	if err := json.Unmarshal(data, &mfr); err != nil {
		return nil, err
	}
	return &mfr, nil
}

func (r *redisCacheService) SetManufacturer(ctx context.Context, mfr *models.Manufacturer, ttl time.Duration) error {
	key := fmt.Sprintf("retailops:manufacturer:%d", mfr.ID)
	data, err := json.Marshal(mfr)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteManufacturer(ctx context.Context, mfrID int64) error {
	key := fmt.Sprintf("retailops:manufacturer:%d", mfrID)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) InvalidateCatalog(ctx context.Context) error {
	pattern := "retailops:*"
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
