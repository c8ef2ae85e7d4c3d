package handler

import (
	"net/http"

	"shopcatalog/catalog-service/internal/app/catalog/entity"

	"github.com/gin-gonic/gin"
)

// === CATEGORIES HANDLERS ===

// ListCategories обрабатывает GET /categories (с кешированием)
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, categories)
}

// GetCategory обрабатывает GET /categories/:slug
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, err := h.catalogService.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, category)
}

// CreateCategory обрабатывает POST /categories (admin)
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req entity.CreateCategoryRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, category)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req entity.UpdateCategoryRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalogService.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Category deleted")
}
