package service

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrReviewNotFound    = errors.New("review not found")
	ErrWishlistNotFound  = errors.New("wishlist not found")
	ErrViewedNotFound    = errors.New("product is not in view history")
	ErrReviewExists      = errors.New("you have already reviewed this product")
	ErrForbidden         = errors.New("only the author can modify this review")
	ErrAlreadyInWishlist = errors.New("product is already in wishlist")
	ErrCategoryExists    = errors.New("category with this name already exists")
	ErrCategoryInUse     = errors.New("category still has products")
	ErrInvalidCategory   = errors.New("category does not exist")
	ErrAggregateWrite    = errors.New("failed to update product rating")
)

// parseID разбирает hex ObjectID. Некорректный id не может указывать
// на существующий документ, поэтому это та же ошибка notFound
func parseID(hex string, notFound error) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return id, nil
}
