package handler

import (
	"net/http"
	"strconv"

	"shopcatalog/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
)

// ShopperHandler - списки пользователя: wishlist и история просмотров
type ShopperHandler struct {
	wishlistService WishlistServiceInterface
	viewedService   ViewedProductServiceInterface
}

func NewShopperHandler(wishlistService WishlistServiceInterface, viewedService ViewedProductServiceInterface) *ShopperHandler {
	return &ShopperHandler{
		wishlistService: wishlistService,
		viewedService:   viewedService,
	}
}

// === WISHLIST ===

// GetWishlist обрабатывает GET /wishlist
func (h *ShopperHandler) GetWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	wishlist, err := h.wishlistService.GetWishlist(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, wishlist)
}

// AddToWishlist обрабатывает POST /wishlist/:productId
func (h *ShopperHandler) AddToWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	wishlist, err := h.wishlistService.AddToWishlist(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, wishlist)
}

// RemoveFromWishlist обрабатывает DELETE /wishlist/:productId
func (h *ShopperHandler) RemoveFromWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	wishlist, err := h.wishlistService.RemoveFromWishlist(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, wishlist)
}

// ClearWishlist обрабатывает DELETE /wishlist
func (h *ShopperHandler) ClearWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.wishlistService.ClearWishlist(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Wishlist cleared")
}

// CheckWishlist обрабатывает GET /wishlist/check/:productId
func (h *ShopperHandler) CheckWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	found, err := h.wishlistService.IsInWishlist(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"isInWishlist": found})
}

// === VIEWED PRODUCTS ===

// RecordView обрабатывает POST /viewed-products/:productId
func (h *ShopperHandler) RecordView(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.viewedService.RecordView(c.Request.Context(), userID, c.Param("productId")); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "View recorded")
}

// ListViewed обрабатывает GET /viewed-products?limit=20
func (h *ShopperHandler) ListViewed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit := service.DefaultViewedLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respondFail(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	entries, err := h.viewedService.ListViewed(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, entries)
}

// RemoveViewed обрабатывает DELETE /viewed-products/:productId
func (h *ShopperHandler) RemoveViewed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.viewedService.RemoveViewed(c.Request.Context(), userID, c.Param("productId")); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Product removed from view history")
}

// ClearViewed обрабатывает DELETE /viewed-products
func (h *ShopperHandler) ClearViewed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	deleted, err := h.viewedService.ClearViewed(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": deleted})
}
