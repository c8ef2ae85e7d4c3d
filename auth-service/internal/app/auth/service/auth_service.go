package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopcatalog/auth-service/internal/app/auth/entity"
	"shopcatalog/auth-service/internal/app/auth/repository"
	"shopcatalog/auth-service/internal/app/auth/util"
	"shopcatalog/pkg/logger"
	"shopcatalog/pkg/metrics"

	"github.com/google/uuid"
)

// AuthService обрабатывает бизнес-логику аутентификации
type AuthService struct {
	userRepo      repository.UserRepository
	resetRepo     repository.ResetTokenRepository
	jwtManager    *util.JWTManager
	mailer        Mailer
	resetTokenTTL time.Duration
	frontendURL   string
}

type AuthServiceOptions struct {
	ResetTokenTTL time.Duration
	FrontendURL   string
}

func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.ResetTokenRepository,
	jwtManager *util.JWTManager,
	mailer Mailer,
	opts AuthServiceOptions,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		resetRepo:     resetRepo,
		jwtManager:    jwtManager,
		mailer:        mailer,
		resetTokenTTL: opts.ResetTokenTTL,
		frontendURL:   strings.TrimRight(opts.FrontendURL, "/"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает пользователя с ролью user и сразу выдает токен
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         entity.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// гонка двух регистраций с одним email
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.AuthRegistrations.Inc()
	logger.Info().Str("user_id", user.ID.String()).Msg("User registered")

	return s.authResponse(user)
}

func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		metrics.AuthLogins.WithLabelValues("failed").Inc()
		return nil, ErrInvalidCredentials
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	return s.authResponse(user)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.getUser(ctx, userID)
}

// UpdateProfile меняет имя и, если передан, пароль
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *entity.UpdateProfileRequest) (*entity.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.Password != "" {
		passwordHash, err := util.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = passwordHash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// ForgotPassword отправляет ссылку сброса. Для неизвестного email ничего
// не делает и не сообщает об этом клиенту
func (s *AuthService) ForgotPassword(ctx context.Context, req *entity.ForgotPasswordRequest) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Debug().Msg("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, tokenHash, err := util.GenerateResetToken()
	if err != nil {
		return err
	}

	if err := s.resetRepo.Save(ctx, tokenHash, user.ID, s.resetTokenTTL); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, link); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	metrics.AuthPasswordResets.WithLabelValues("requested").Inc()
	return nil
}

// ResetPassword устанавливает новый пароль по одноразовому токену
func (s *AuthService) ResetPassword(ctx context.Context, token string, req *entity.ResetPasswordRequest) (*entity.AuthResponse, error) {
	if token == "" {
		metrics.AuthPasswordResets.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidResetToken
	}

	userID, err := s.resetRepo.Consume(ctx, util.HashResetToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.AuthPasswordResets.WithLabelValues("rejected").Inc()
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			metrics.AuthPasswordResets.WithLabelValues("rejected").Inc()
			return nil, ErrInvalidResetToken
		}
		return nil, err
	}

	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = passwordHash

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	metrics.AuthPasswordResets.WithLabelValues("completed").Inc()
	logger.Info().Str("user_id", user.ID.String()).Msg("Password reset completed")

	return s.authResponse(user)
}

func (s *AuthService) getUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) authResponse(user *entity.User) (*entity.AuthResponse, error) {
	token, err := s.jwtManager.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	metrics.AuthTokensIssued.Inc()

	return &entity.AuthResponse{Token: token, User: *user}, nil
}
