package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/repository"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Хелперы для создания тестовых данных

func newTestProduct() *entity.Product {
	return &entity.Product{
		ID:          primitive.NewObjectID(),
		Name:        "Эфиопия Иргачефф",
		Slug:        "efiopiya-irgacheff-1700000000000",
		Description: "Зерновой кофе светлой обжарки",
		Price:       1000,
		Discount:    10,
		Category:    primitive.NewObjectID(),
		Images:      []string{},
		Stock:       10,
		Sold:        3,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
}

func newTestReview(productID primitive.ObjectID, userID string, rating int) *entity.Review {
	return &entity.Review{
		ID:        primitive.NewObjectID(),
		Product:   productID,
		User:      userID,
		Rating:    rating,
		Comment:   "Отличный товар",
		Images:    []string{},
		Likes:     []string{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func decodeReviewEvent(data []byte) entity.ReviewEvent {
	var event entity.ReviewEvent
	_ = json.Unmarshal(data, &event)
	return event
}

func eventTypes(messages [][]byte) []string {
	types := make([]string, 0, len(messages))
	for _, m := range messages {
		types = append(types, decodeReviewEvent(m).EventType)
	}
	return types
}

// MockRatingAggregator мок для RatingAggregator
type MockRatingAggregator struct {
	mock.Mock
}

func (m *MockRatingAggregator) Recompute(ctx context.Context, productID primitive.ObjectID) (entity.RatingAggregate, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(entity.RatingAggregate), args.Error(1)
}

// MockStatsReader мок для StatsReader
type MockStatsReader struct {
	mock.Mock
}

func (m *MockStatsReader) ComputeStats(ctx context.Context, productID primitive.ObjectID) (entity.RatingStats, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(entity.RatingStats), args.Error(1)
}

// memReviewRepo - отзывы в памяти с уникальностью (product, user), как индекс в MongoDB
type memReviewRepo struct {
	mu      sync.Mutex
	reviews map[primitive.ObjectID]entity.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: make(map[primitive.ObjectID]entity.Review)}
}

func (r *memReviewRepo) Create(_ context.Context, review *entity.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reviews {
		if existing.Product == review.Product && existing.User == review.User {
			return repository.ErrDuplicateReview
		}
	}
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	r.reviews[review.ID] = *review
	return nil
}

func (r *memReviewRepo) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	review.Likes = append([]string{}, review.Likes...)
	return &review, nil
}

func (r *memReviewRepo) FindOne(_ context.Context, productID primitive.ObjectID, userID string) (*entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, review := range r.reviews {
		if review.Product == productID && review.User == userID {
			return &review, nil
		}
	}
	return nil, repository.ErrReviewNotFound
}

func (r *memReviewRepo) FindByProduct(_ context.Context, productID primitive.ObjectID, skip, limit int) ([]entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []entity.Review
	for _, review := range r.reviews {
		if review.Product == productID {
			result = append(result, review)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })

	if skip >= len(result) {
		return []entity.Review{}, nil
	}
	result = result[skip:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r *memReviewRepo) CountByProduct(_ context.Context, productID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, review := range r.reviews {
		if review.Product == productID {
			n++
		}
	}
	return n, nil
}

func (r *memReviewRepo) Update(_ context.Context, review *entity.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[review.ID]; !ok {
		return repository.ErrReviewNotFound
	}
	review.UpdatedAt = time.Now()
	r.reviews[review.ID] = *review
	return nil
}

func (r *memReviewRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[id]; !ok {
		return repository.ErrReviewNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *memReviewRepo) DeleteByProduct(_ context.Context, productID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, review := range r.reviews {
		if review.Product == productID {
			delete(r.reviews, id)
			n++
		}
	}
	return n, nil
}

func (r *memReviewRepo) RatingDistribution(_ context.Context, productID primitive.ObjectID) (entity.RatingCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := entity.NewRatingCounts()
	for _, review := range r.reviews {
		if review.Product == productID {
			counts.Add(review.Rating, 1)
		}
	}
	return counts, nil
}

func (r *memReviewRepo) AddLike(_ context.Context, reviewID primitive.ObjectID, userID string) (*entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews[reviewID]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	for _, u := range review.Likes {
		if u == userID {
			return &review, nil
		}
	}
	review.Likes = append(append([]string{}, review.Likes...), userID)
	r.reviews[reviewID] = review
	return &review, nil
}

func (r *memReviewRepo) RemoveLike(_ context.Context, reviewID primitive.ObjectID, userID string) (*entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews[reviewID]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	likes := make([]string, 0, len(review.Likes))
	for _, u := range review.Likes {
		if u != userID {
			likes = append(likes, u)
		}
	}
	review.Likes = likes
	r.reviews[reviewID] = review
	return &review, nil
}

// memProductRepo - товары в памяти. Реализованы только методы,
// которые нужны отзывам и агрегатору, остальные паникуют через nil интерфейс
type memProductRepo struct {
	repository.ProductRepository

	mu       sync.Mutex
	products map[primitive.ObjectID]entity.Product
}

func newMemProductRepo(products ...*entity.Product) *memProductRepo {
	r := &memProductRepo{products: make(map[primitive.ObjectID]entity.Product)}
	for _, p := range products {
		r.products[p.ID] = *p
	}
	return r
}

func (r *memProductRepo) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (r *memProductRepo) UpdateAggregateFields(_ context.Context, id primitive.ObjectID, agg entity.RatingAggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Rating = agg.Rating
	p.NumReviews = agg.NumReviews
	r.products[id] = p
	return nil
}

func (r *memProductRepo) ListRatingSnapshots(_ context.Context) ([]repository.RatingSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshots := make([]repository.RatingSnapshot, 0, len(r.products))
	for _, p := range r.products {
		snapshots = append(snapshots, repository.RatingSnapshot{
			ProductID:  p.ID,
			Rating:     p.Rating,
			NumReviews: p.NumReviews,
		})
	}
	return snapshots, nil
}

// setAggregate портит сохраненный агрегат, имитируя потерянную запись
func (r *memProductRepo) setAggregate(id primitive.ObjectID, rating float64, numReviews int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.products[id]
	p.Rating = rating
	p.NumReviews = numReviews
	r.products[id] = p
}
