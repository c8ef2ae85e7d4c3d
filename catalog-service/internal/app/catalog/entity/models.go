package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category - категория товаров. Slug уникален
type Category struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Slug        string             `json:"slug" bson:"slug"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"`
	IsActive    bool               `json:"isActive" bson:"is_active"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
}

// CategoryWithCount - категория с количеством активных товаров (GET /categories)
type CategoryWithCount struct {
	Category     `bson:",inline"`
	ProductCount int64 `json:"productCount" bson:"product_count"`
}

// Product - товар каталога.
// Rating и NumReviews производные: их пишет только RatingAggregator
type Product struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Slug          string             `json:"slug" bson:"slug"`
	Description   string             `json:"description" bson:"description"`
	Price         float64            `json:"price" bson:"price"`
	OriginalPrice float64            `json:"originalPrice,omitempty" bson:"original_price,omitempty"`
	Discount      float64            `json:"discount" bson:"discount"`
	Category      primitive.ObjectID `json:"categoryId" bson:"category"`
	Images        []string           `json:"images" bson:"images"`
	MainImage     string             `json:"mainImage" bson:"main_image"`
	Stock         int                `json:"stock" bson:"stock"`
	Sold          int                `json:"sold" bson:"sold"`
	Rating        float64            `json:"rating" bson:"rating"`
	NumReviews    int                `json:"numReviews" bson:"num_reviews"`
	Featured      bool               `json:"featured" bson:"featured"`
	IsActive      bool               `json:"isActive" bson:"is_active"`
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updated_at"`
}

// FinalPrice - цена с учетом скидки
func (p *Product) FinalPrice() float64 {
	if p.Discount > 0 {
		return p.Price - p.Price*p.Discount/100
	}
	return p.Price
}

// Review - отзыв пользователя о товаре. Одна пара (product, user) - один отзыв
type Review struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Product  primitive.ObjectID `json:"productId" bson:"product"`
	User     string             `json:"userId" bson:"user"` // UUID пользователя из Auth Service
	UserName string             `json:"userName,omitempty" bson:"user_name,omitempty"`
	Rating   int                `json:"rating" bson:"rating"`
	Comment  string             `json:"comment" bson:"comment"`
	Images   []string           `json:"images" bson:"images"`
	// Likes - множество id пользователей, каждый добавляет или убирает только себя
	Likes     []string  `json:"likes" bson:"likes"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// WishlistItem - товар в списке желаний
type WishlistItem struct {
	Product primitive.ObjectID `json:"productId" bson:"product"`
	AddedAt time.Time          `json:"addedAt" bson:"added_at"`
}

// Wishlist - один документ на пользователя, новые товары в начале
type Wishlist struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	User      string             `json:"userId" bson:"user"`
	Products  []WishlistItem     `json:"products" bson:"products"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// ViewedProduct - запись истории просмотров, одна на пару (user, product)
type ViewedProduct struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	User      string             `json:"userId" bson:"user"`
	Product   primitive.ObjectID `json:"productId" bson:"product"`
	ViewedAt  time.Time          `json:"viewedAt" bson:"viewed_at"`
	ViewCount int                `json:"viewCount" bson:"view_count"`
}

// Типы событий в топике review_events
const (
	EventReviewCreated            = "REVIEW_CREATED"
	EventReviewUpdated            = "REVIEW_UPDATED"
	EventReviewDeleted            = "REVIEW_DELETED"
	EventRatingRecomputeRequested = "RATING_RECOMPUTE_REQUESTED"
)

// Типы событий в топике product_events
const (
	EventProductCreated = "PRODUCT_CREATED"
	EventProductUpdated = "PRODUCT_UPDATED"
	EventProductDeleted = "PRODUCT_DELETED"
)

// ReviewEvent - сообщение в review_events, ключ = ProductID
type ReviewEvent struct {
	EventType string    `json:"event_type"`
	ReviewID  string    `json:"review_id,omitempty"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id,omitempty"`
	Rating    int       `json:"rating,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductEvent - сообщение в product_events
type ProductEvent struct {
	EventType  string    `json:"event_type"`
	ProductID  string    `json:"product_id"`
	CategoryID string    `json:"category_id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Price      float64   `json:"price,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
