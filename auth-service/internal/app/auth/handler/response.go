package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"shopcatalog/auth-service/internal/app/auth/service"
	"shopcatalog/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
	})
}

func respondFail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserExists):
		respondFail(c, http.StatusConflict, "User with this email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondFail(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrUserNotFound):
		respondFail(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrInvalidResetToken):
		respondFail(c, http.StatusBadRequest, "Reset token is invalid or has expired")
	default:
		logger.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")

		message := "Internal server error"
		if gin.Mode() == gin.DebugMode {
			message = err.Error()
		}
		respondFail(c, http.StatusInternalServerError, message)
	}
}

func bindJSON(c *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := v.Struct(req); err != nil {
		respondFail(c, http.StatusBadRequest, formatValidationError(err))
		return false
	}
	return true
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		if fe.Param() != "" {
			return fe.Field() + " failed on '" + fe.Tag() + "=" + fe.Param() + "'"
		}
		return fe.Field() + " failed on '" + fe.Tag() + "'"
	}
	return "Validation failed"
}

// newValidator называет поля по json тегам
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
