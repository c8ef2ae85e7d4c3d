package service

import (
	"context"

	"shopcatalog/auth-service/internal/app/auth/entity"

	"github.com/google/uuid"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.AuthResponse, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *entity.UpdateProfileRequest) (*entity.User, error)
	ForgotPassword(ctx context.Context, req *entity.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, token string, req *entity.ResetPasswordRequest) (*entity.AuthResponse, error)
}

// Mailer отправляет письмо со ссылкой на сброс пароля
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, link string) error
}
