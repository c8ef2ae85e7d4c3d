package handler

import (
	"net/http"
	"reflect"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

// Ключи gin.Context с данными пользователя из токена
const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxName   = "name"
	ctxRole   = "role"
)

// JWTClaims - claims токена, который выпускает auth-service
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate проверяет Bearer токен и кладет данные пользователя в контекст
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondFail(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondFail(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(m.jwtSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			respondFail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(*JWTClaims)
		if !ok || claims.UserID == "" {
			respondFail(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxName, claims.Name)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// RequireRole пропускает только пользователей с одной из ролей. Ставится после Authenticate
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		if role == "" {
			respondFail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if !slices.Contains(roles, role) {
			respondFail(c, http.StatusForbidden, "Insufficient permissions")
			return
		}

		c.Next()
	}
}

// currentUserID - id пользователя, положенный Authenticate
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ctxUserID)
	if userID == "" {
		respondFail(c, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return userID, true
}

// newValidator - validator, который называет поля по json тегам
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
