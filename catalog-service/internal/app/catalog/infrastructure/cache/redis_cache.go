package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	serviceName        = "catalog-service"
	categoriesCacheKey = "categories:all"
	categoriesPrefix   = "categories"
)

type RedisCategoryCache struct {
	client *redis.Client
}

// NewRedisClient подключается к Redis и проверяет соединение
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func NewRedisCategoryCache(client *redis.Client) *RedisCategoryCache {
	return &RedisCategoryCache{client: client}
}

func (c *RedisCategoryCache) SetCategories(ctx context.Context, categories []entity.CategoryWithCount, ttl time.Duration) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	err = c.client.Set(ctx, categoriesCacheKey, data, ttl).Err()
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to set categories in cache: %w", err)
	}

	return nil
}

// GetCategories возвращает (nil, nil) при промахе
func (c *RedisCategoryCache) GetCategories(ctx context.Context) ([]entity.CategoryWithCount, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	data, err := c.client.Get(ctx, categoriesCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			timer.Done(nil)
			metrics.RecordCacheMiss(serviceName, categoriesPrefix)
			return nil, nil
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to get categories from cache: %w", err)
	}
	timer.Done(nil)

	var categories []entity.CategoryWithCount
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}

	metrics.RecordCacheHit(serviceName, categoriesPrefix)
	return categories, nil
}

func (c *RedisCategoryCache) DeleteCategories(ctx context.Context) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	err := c.client.Del(ctx, categoriesCacheKey).Err()
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to delete categories from cache: %w", err)
	}
	return nil
}

func (c *RedisCategoryCache) Close() error {
	return c.client.Close()
}
