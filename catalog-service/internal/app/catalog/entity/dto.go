package entity

import (
	"time"

	"shopcatalog/pkg/pagination"
)

// === REVIEWS ===

type CreateReviewRequest struct {
	Rating  int      `json:"rating" validate:"required,min=1,max=5"`
	Comment string   `json:"comment" validate:"required,max=1000"`
	Images  []string `json:"images" validate:"omitempty,max=10,dive,url"`
}

// UpdateReviewRequest - пустые поля не меняют отзыв
type UpdateReviewRequest struct {
	Rating  int      `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment string   `json:"comment" validate:"omitempty,max=1000"`
	Images  []string `json:"images" validate:"omitempty,max=10,dive,url"`
}

// ProductReviews - страница отзывов товара со статистикой
type ProductReviews struct {
	Reviews    []Review        `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
	Stats      RatingStats     `json:"stats"`
}

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// === PRODUCTS ===

type CreateProductRequest struct {
	Name          string   `json:"name" validate:"required,min=2,max=200"`
	Description   string   `json:"description" validate:"required,max=5000"`
	Price         float64  `json:"price" validate:"gte=0"`
	OriginalPrice float64  `json:"originalPrice" validate:"omitempty,gte=0"`
	Discount      float64  `json:"discount" validate:"gte=0,lte=100"`
	CategoryID    string   `json:"categoryId" validate:"required,len=24,hexadecimal"`
	Images        []string `json:"images" validate:"omitempty,dive,url"`
	MainImage     string   `json:"mainImage" validate:"omitempty,url"`
	Stock         int      `json:"stock" validate:"gte=0"`
	Featured      bool     `json:"featured"`
}

// UpdateProductRequest - nil поля не меняются
type UpdateProductRequest struct {
	Name          *string   `json:"name" validate:"omitempty,min=2,max=200"`
	Description   *string   `json:"description" validate:"omitempty,max=5000"`
	Price         *float64  `json:"price" validate:"omitempty,gte=0"`
	OriginalPrice *float64  `json:"originalPrice" validate:"omitempty,gte=0"`
	Discount      *float64  `json:"discount" validate:"omitempty,gte=0,lte=100"`
	CategoryID    *string   `json:"categoryId" validate:"omitempty,len=24,hexadecimal"`
	Images        *[]string `json:"images" validate:"omitempty,dive,url"`
	MainImage     *string   `json:"mainImage" validate:"omitempty,url"`
	Stock         *int      `json:"stock" validate:"omitempty,gte=0"`
	Featured      *bool     `json:"featured"`
	IsActive      *bool     `json:"isActive"`
}

// Сортировки списка товаров
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortPopular   = "popular"
)

// ProductQuery - параметры GET /products
type ProductQuery struct {
	CategorySlug string
	Search       string
	MinPrice     *float64
	MaxPrice     *float64
	Featured     *bool
	Sort         string
	Page         pagination.Params
}

// CategoryRef - краткая информация о категории внутри товара
type CategoryRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// ProductView - товар с категорией и ценой после скидки
type ProductView struct {
	Product
	CategoryInfo *CategoryRef `json:"category,omitempty"`
	FinalPrice   float64      `json:"finalPrice"`
}

type ProductList struct {
	Products   []ProductView   `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
}

// ProductDetail - ответ GET /products/:id
type ProductDetail struct {
	ProductView
	BuyersCount  int           `json:"buyersCount"`
	ReviewsCount int64         `json:"reviewsCount"`
	RatingStats  RatingSummary `json:"ratingStats"`
}

type RatingSummary struct {
	AvgRating    float64 `json:"avgRating"`
	TotalReviews int     `json:"totalReviews"`
}

// ProductStats - ответ GET /products/:id/stats
type ProductStats struct {
	ProductID    string       `json:"productId"`
	BuyersCount  int          `json:"buyersCount"`
	ReviewsCount int64        `json:"reviewsCount"`
	AvgRating    float64      `json:"avgRating"`
	RatingCounts RatingCounts `json:"ratingCounts"`
}

// === CATEGORIES ===

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Image       string `json:"image" validate:"omitempty,url"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Image       *string `json:"image" validate:"omitempty,url"`
	IsActive    *bool   `json:"isActive"`
}

// === WISHLIST / VIEWED ===

type WishlistEntry struct {
	Product ProductView `json:"product"`
	AddedAt time.Time   `json:"addedAt"`
}

type WishlistView struct {
	ID       string          `json:"id"`
	User     string          `json:"userId"`
	Products []WishlistEntry `json:"products"`
}

type ViewedEntry struct {
	Product   ProductView `json:"product"`
	ViewedAt  time.Time   `json:"viewedAt"`
	ViewCount int         `json:"viewCount"`
}
