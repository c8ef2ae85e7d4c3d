package repository

import (
	"context"
	"errors"
	"time"

	"shopcatalog/auth-service/internal/app/auth/entity"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository - пользователи в PostgreSQL
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Update сохраняет имя и хеш пароля
	Update(ctx context.Context, user *entity.User) error
}

// ResetTokenRepository - одноразовые токены сброса пароля.
// Хранится только SHA-256 хеш токена
type ResetTokenRepository interface {
	Save(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	// Consume атомарно читает и удаляет токен, второй вызов вернет ErrNotFound
	Consume(ctx context.Context, tokenHash string) (uuid.UUID, error)
}
