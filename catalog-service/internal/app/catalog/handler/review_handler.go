package handler

import (
	"net/http"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/service"
	"shopcatalog/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const defaultReviewsLimit = 10

// ReviewHandler - /reviews. Параметр :id означает товар для GET/POST и отзыв для PUT/DELETE/like
type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     newValidator(),
	}
}

// GetProductReviews обрабатывает GET /reviews/:id
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	page := pagination.FromQuery(c.Request.URL.Query(), defaultReviewsLimit)

	result, err := h.reviewService.GetProductReviews(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Reviews,
		"pagination": result.Pagination,
		"stats":      result.Stats,
	})
}

// CreateReview обрабатывает POST /reviews/:id
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.CreateReviewRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	author := service.Author{ID: userID, Name: c.GetString(ctxName)}
	review, err := h.reviewService.CreateReview(c.Request.Context(), c.Param("id"), author, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, review)
}

// UpdateReview обрабатывает PUT /reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.UpdateReviewRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, review)
}

// DeleteReview обрабатывает DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Review deleted")
}

// ToggleLike обрабатывает POST /reviews/:id/like
func (h *ReviewHandler) ToggleLike(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.reviewService.ToggleLike(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, result)
}
