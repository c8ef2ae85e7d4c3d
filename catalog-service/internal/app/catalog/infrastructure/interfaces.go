package infrastructure

import (
	"context"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
)

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// CategoryCache - кеш списка категорий. Промах возвращает (nil, nil)
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]entity.CategoryWithCount, error)
	SetCategories(ctx context.Context, categories []entity.CategoryWithCount, ttl time.Duration) error
	DeleteCategories(ctx context.Context) error
	Close() error
}
