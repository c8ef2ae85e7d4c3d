package entity

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей. Catalog Service пускает в админские маршруты только RoleAdmin
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User - пользователь магазина. Email уникален
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"size:50;not null"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Role         string    `json:"role" gorm:"size:20;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
