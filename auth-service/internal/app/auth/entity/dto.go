package entity

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest - пустой пароль не меняется
type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"omitempty,min=2,max=50"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse - токен и профиль после регистрации, входа или сброса пароля
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
