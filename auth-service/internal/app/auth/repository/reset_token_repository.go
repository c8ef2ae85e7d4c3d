package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopcatalog/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const resetTokenPrefix = "password_reset"

type redisResetTokenRepository struct {
	client *redis.Client
}

// NewResetTokenRepository хранит токены сброса пароля в Redis с TTL
func NewResetTokenRepository(client *redis.Client) ResetTokenRepository {
	return &redisResetTokenRepository{client: client}
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

func resetTokenKey(tokenHash string) string {
	return fmt.Sprintf("%s:%s", resetTokenPrefix, tokenHash)
}

func (r *redisResetTokenRepository) Save(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	err := r.client.Set(ctx, resetTokenKey(tokenHash), userID.String(), ttl).Err()
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}
	return nil
}

func (r *redisResetTokenRepository) Consume(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGetDel)
	value, err := r.client.GetDel(ctx, resetTokenKey(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		timer.Done(nil)
		return uuid.Nil, ErrNotFound
	}
	timer.Done(err)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupted reset token value: %w", err)
	}
	return userID, nil
}
