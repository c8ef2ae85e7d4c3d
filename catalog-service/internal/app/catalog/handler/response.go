package handler

import (
	"errors"
	"net/http"

	"shopcatalog/catalog-service/internal/app/catalog/service"
	"shopcatalog/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondSuccess - {"success": true, "data": ...}
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

// respondFail - {"success": false, "message": ...}
func respondFail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// respondError переводит ошибки service слоя в HTTP статусы.
// Текст внутренних ошибок отдается клиенту только в debug режиме gin (APP_ENV=development)
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrWishlistNotFound),
		errors.Is(err, service.ErrViewedNotFound):
		respondFail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrReviewExists),
		errors.Is(err, service.ErrAlreadyInWishlist),
		errors.Is(err, service.ErrCategoryExists),
		errors.Is(err, service.ErrCategoryInUse):
		respondFail(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrForbidden):
		respondFail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCategory):
		respondFail(c, http.StatusBadRequest, err.Error())
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

// bindJSON разбирает и валидирует тело запроса, при ошибке сам отвечает 400
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

// formatValidationError - сообщение по первому непрошедшему полю
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
