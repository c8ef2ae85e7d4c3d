package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopcatalog/auth-service/internal/app/auth/entity"
	"shopcatalog/pkg/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	serviceName     = "auth-service"
	usersTable      = "users"
	uniqueViolation  = "23505"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository создает репозиторий пользователей поверх gorm
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, usersTable)
	err := r.db.WithContext(ctx).Create(user).Error
	if isUniqueViolation(err) {
		timer.Done(nil)
		return ErrDuplicateEmail
	}
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, usersTable)

	var user entity.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		timer.Done(nil)
		return nil, ErrNotFound
	}
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now().UTC()

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, usersTable)
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":          user.Name,
			"password_hash": user.PasswordHash,
			"updated_at":    user.UpdatedAt,
		})
	timer.Done(result.Error)

	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
