package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/repository"
	"shopcatalog/catalog-service/internal/app/catalog/repository/mocks"
	"shopcatalog/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testCacheTTL = time.Hour

type catalogDeps struct {
	categoryRepo *mocks.MockCategoryRepository
	productRepo  *mocks.MockProductRepository
	reviewRepo   *mocks.MockReviewRepository
	stats        *MockStatsReader
	cache        *mocks.MockCategoryCache
	publisher    *mocks.MockMessagePublisher
}

func newCatalogDeps() *catalogDeps {
	return &catalogDeps{
		categoryRepo: new(mocks.MockCategoryRepository),
		productRepo:  new(mocks.MockProductRepository),
		reviewRepo:   new(mocks.MockReviewRepository),
		stats:        new(MockStatsReader),
		cache:        new(mocks.MockCategoryCache),
		publisher:    new(mocks.MockMessagePublisher),
	}
}

func (d *catalogDeps) service() *CatalogService {
	return NewCatalogService(d.categoryRepo, d.productRepo, d.reviewRepo, d.stats, d.cache, d.publisher, testCacheTTL)
}

func newTestCategory() *entity.Category {
	return &entity.Category{
		ID:        primitive.NewObjectID(),
		Name:      "Кофе",
		Slug:      "kofe",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

func decodeProductEvent(t *testing.T, data []byte) entity.ProductEvent {
	t.Helper()
	var event entity.ProductEvent
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

// ==================== Products: чтение ====================

func TestCatalogService_ListProducts_WithCategoryFilter(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newCatalogDeps()
	category := newTestCategory()
	product := newTestProduct()
	product.Category = category.ID
	page := pagination.Params{Page: 1, Limit: 12}
	minPrice := 500.0

	d.categoryRepo.On("GetBySlug", ctx, "kofe").Return(category, nil)
	expectedFilter := repository.ProductFilter{
		CategoryID: &category.ID,
		Search:     "эфиопия",
		MinPrice:   &minPrice,
		OnlyActive: true,
		Sort:       entity.SortPriceAsc,
		Limit:      12,
	}
	d.productRepo.On("Find", ctx, expectedFilter).Return([]entity.Product{*product}, nil)
	d.productRepo.On("Count", ctx, expectedFilter).Return(int64(13), nil)
	d.categoryRepo.On("GetByIDs", ctx, []primitive.ObjectID{category.ID}).Return([]entity.Category{*category}, nil)

	svc := d.service()

	// Act
	result, err := svc.ListProducts(ctx, entity.ProductQuery{
		CategorySlug: "kofe",
		Search:       "эфиопия",
		MinPrice:     &minPrice,
		Sort:         entity.SortPriceAsc,
		Page:         page,
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "kofe", result.Products[0].CategoryInfo.Slug)
	assert.Equal(t, 900.0, result.Products[0].FinalPrice)
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 12, Total: 13, Pages: 2}, result.Pagination)
	d.productRepo.AssertExpectations(t)
}

func TestCatalogService_ListProducts_UnknownCategoryIsEmpty(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.categoryRepo.On("GetBySlug", ctx, "nope").Return(nil, repository.ErrCategoryNotFound)

	svc := d.service()

	result, err := svc.ListProducts(ctx, entity.ProductQuery{CategorySlug: "nope", Page: pagination.Params{Page: 1, Limit: 12}})

	require.NoError(t, err)
	assert.Empty(t, result.Products)
	assert.Equal(t, int64(0), result.Pagination.Total)
	d.productRepo.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}

func TestCatalogService_GetProductsByCategory_NotFound(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.categoryRepo.On("GetBySlug", ctx, "nope").Return(nil, repository.ErrCategoryNotFound)

	_, err := d.service().GetProductsByCategory(ctx, "nope", pagination.Params{Page: 1, Limit: 12})

	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCatalogService_GetFeaturedProducts(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()
	product := newTestProduct()
	product.Featured = true

	d.productRepo.On("Find", ctx, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.Featured != nil && *f.Featured && f.OnlyActive && f.Sort == entity.SortRating && f.Limit == 10
	})).Return([]entity.Product{*product}, nil)
	d.categoryRepo.On("GetByIDs", ctx, []primitive.ObjectID{product.Category}).Return([]entity.Category{}, nil)

	products, err := d.service().GetFeaturedProducts(ctx)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Nil(t, products[0].CategoryInfo)
}

func TestCatalogService_GetProduct_WithStats(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newCatalogDeps()
	category := newTestCategory()
	product := newTestProduct()
	product.Category = category.ID
	product.Sold = 42

	d.productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	d.categoryRepo.On("GetByID", ctx, category.ID).Return(category, nil)
	d.reviewRepo.On("CountByProduct", ctx, product.ID).Return(int64(2), nil)
	d.stats.On("ComputeStats", ctx, product.ID).Return(entity.StatsFromCounts(entity.RatingCounts{3: 1, 5: 1}), nil)

	// Act
	detail, err := d.service().GetProduct(ctx, product.ID.Hex())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 42, detail.BuyersCount)
	assert.Equal(t, int64(2), detail.ReviewsCount)
	assert.Equal(t, entity.RatingSummary{AvgRating: 4, TotalReviews: 2}, detail.RatingStats)
	assert.Equal(t, "Кофе", detail.CategoryInfo.Name)
}

func TestCatalogService_GetProduct_InvalidID(t *testing.T) {
	d := newCatalogDeps()

	_, err := d.service().GetProduct(context.Background(), "123")

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogService_GetProductStats(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()
	product := newTestProduct()

	d.productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	d.reviewRepo.On("CountByProduct", ctx, product.ID).Return(int64(3), nil)
	d.stats.On("ComputeStats", ctx, product.ID).Return(entity.StatsFromCounts(entity.RatingCounts{5: 3}), nil)

	stats, err := d.service().GetProductStats(ctx, product.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, product.ID.Hex(), stats.ProductID)
	assert.Equal(t, 3, stats.BuyersCount)
	assert.Equal(t, 5.0, stats.AvgRating)
	assert.Equal(t, 3, stats.RatingCounts[5])
	assert.Equal(t, 0, stats.RatingCounts[1])
}

func TestCatalogService_GetSimilarProducts_TopsUpFromCategory(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newCatalogDeps()
	product := newTestProduct()
	close1 := newTestProduct()
	close1.Category = product.Category
	extra := newTestProduct()
	extra.Category = product.Category
	extra.Price = 5000

	d.productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	d.productRepo.On("Find", ctx, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.MinPrice != nil && math.Abs(*f.MinPrice-700) < 1e-6 && math.Abs(*f.MaxPrice-1300) < 1e-6 && f.Limit == 3
	})).Return([]entity.Product{*close1}, nil).Once()
	d.productRepo.On("Find", ctx, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.MinPrice == nil && f.Limit == 2 && len(f.ExcludeIDs) == 2 &&
			f.ExcludeIDs[0] == product.ID && f.ExcludeIDs[1] == close1.ID
	})).Return([]entity.Product{*extra}, nil).Once()
	d.categoryRepo.On("GetByIDs", ctx, []primitive.ObjectID{product.Category}).Return([]entity.Category{}, nil)

	// Act
	similar, err := d.service().GetSimilarProducts(ctx, product.ID.Hex(), 3)

	// Assert
	require.NoError(t, err)
	require.Len(t, similar, 2)
	assert.Equal(t, close1.ID, similar[0].ID)
	assert.Equal(t, extra.ID, similar[1].ID)
	d.productRepo.AssertExpectations(t)
}

// ==================== Products: запись ====================

func TestCatalogService_CreateProduct_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newCatalogDeps()
	category := newTestCategory()

	d.categoryRepo.On("GetByID", ctx, category.ID).Return(category, nil)
	d.productRepo.On("Create", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)
	d.cache.On("DeleteCategories", ctx).Return(nil)
	d.publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	req := &entity.CreateProductRequest{
		Name:        "Кения АА",
		Description: "Яркая кислотность",
		Price:       1200,
		Discount:    25,
		CategoryID:  category.ID.Hex(),
	}

	// Act
	view, err := d.service().CreateProduct(ctx, req)

	// Assert
	require.NoError(t, err)
	assert.True(t, view.IsActive)
	assert.True(t, strings.HasPrefix(view.Slug, "keniya-aa-"), view.Slug)
	assert.Equal(t, 900.0, view.FinalPrice)
	assert.Equal(t, 0.0, view.Rating)
	assert.Equal(t, 0, view.NumReviews)
	assert.Equal(t, category.ID, view.Category)

	require.Len(t, d.publisher.Messages, 1)
	assert.Equal(t, entity.EventProductCreated, decodeProductEvent(t, d.publisher.Messages[0]).EventType)
	d.cache.AssertExpectations(t)
}

func TestCatalogService_CreateProduct_UnknownCategory(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()
	categoryID := primitive.NewObjectID()

	d.categoryRepo.On("GetByID", ctx, categoryID).Return(nil, repository.ErrCategoryNotFound)

	_, err := d.service().CreateProduct(ctx, &entity.CreateProductRequest{Name: "X", CategoryID: categoryID.Hex()})

	assert.ErrorIs(t, err, ErrInvalidCategory)
	d.productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogService_UpdateProduct_KeepsAggregate(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newCatalogDeps()
	product := newTestProduct()
	product.Rating = 4.5
	product.NumReviews = 8
	newPrice := 1500.0
	inactive := false

	d.productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	d.categoryRepo.On("GetByID", ctx, product.Category).Return(nil, repository.ErrCategoryNotFound)
	d.productRepo.On("Update", ctx, mock.MatchedBy(func(p *entity.Product) bool {
		return p.Price == 1500 && !p.IsActive && p.Rating == 4.5 && p.NumReviews == 8
	})).Return(nil)
	d.cache.On("DeleteCategories", ctx).Return(nil)
	d.publisher.On("PublishMessage", ctx, product.ID.Hex(), mock.Anything).Return(nil)

	// Act
	view, err := d.service().UpdateProduct(ctx, product.ID.Hex(), &entity.UpdateProductRequest{
		Price:    &newPrice,
		IsActive: &inactive,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1500.0, view.Price)
	assert.Equal(t, "efiopiya-irgacheff-1700000000000", view.Slug)
	assert.Nil(t, view.CategoryInfo)
	d.productRepo.AssertExpectations(t)
}

func TestCatalogService_DeleteProduct_RemovesReviews(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newCatalogDeps()
	product := newTestProduct()

	d.productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	d.productRepo.On("Delete", ctx, product.ID).Return(nil)
	d.reviewRepo.On("DeleteByProduct", ctx, product.ID).Return(int64(4), nil)
	d.cache.On("DeleteCategories", ctx).Return(nil)
	d.publisher.On("PublishMessage", ctx, product.ID.Hex(), mock.Anything).Return(nil)

	// Act
	err := d.service().DeleteProduct(ctx, product.ID.Hex())

	// Assert
	require.NoError(t, err)
	d.reviewRepo.AssertExpectations(t)
	assert.Equal(t, entity.EventProductDeleted, decodeProductEvent(t, d.publisher.Messages[0]).EventType)
}

func TestCatalogService_DeleteProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()
	id := primitive.NewObjectID()

	d.productRepo.On("GetByID", ctx, id).Return(nil, repository.ErrProductNotFound)

	err := d.service().DeleteProduct(ctx, id.Hex())

	assert.ErrorIs(t, err, ErrProductNotFound)
	d.reviewRepo.AssertNotCalled(t, "DeleteByProduct", mock.Anything, mock.Anything)
}

// ==================== Categories ====================

func TestCatalogService_ListCategories_FromCache(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()
	cached := []entity.CategoryWithCount{{Category: *newTestCategory(), ProductCount: 5}}

	d.cache.On("GetCategories", ctx).Return(cached, nil)

	result, err := d.service().ListCategories(ctx)

	require.NoError(t, err)
	assert.Equal(t, cached, result)
	d.categoryRepo.AssertNotCalled(t, "ListActive", mock.Anything)
}

func TestCatalogService_ListCategories_CacheMiss(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newCatalogDeps()
	category := newTestCategory()

	d.cache.On("GetCategories", ctx).Return(nil, nil)
	d.categoryRepo.On("ListActive", ctx).Return([]entity.Category{*category}, nil)
	d.productRepo.On("CountActiveByCategory", ctx, category.ID).Return(int64(7), nil)
	d.cache.On("SetCategories", ctx, mock.Anything, testCacheTTL).Return(nil)

	// Act
	result, err := d.service().ListCategories(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, int64(7), result[0].ProductCount)
	d.cache.AssertExpectations(t)
}

func TestCatalogService_ListCategories_CacheErrorFallsBackToDB(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.cache.On("GetCategories", ctx).Return(nil, errors.New("redis down"))
	d.categoryRepo.On("ListActive", ctx).Return([]entity.Category{}, nil)
	d.cache.On("SetCategories", ctx, mock.Anything, testCacheTTL).Return(errors.New("redis down"))

	result, err := d.service().ListCategories(ctx)

	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestCatalogService_GetCategoryBySlug_Inactive(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()
	category := newTestCategory()
	category.IsActive = false

	d.categoryRepo.On("GetBySlug", ctx, "kofe").Return(category, nil)

	_, err := d.service().GetCategoryBySlug(ctx, "kofe")

	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCatalogService_CreateCategory_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newCatalogDeps()

	d.categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).Return(nil)
	d.cache.On("DeleteCategories", ctx).Return(nil)

	// Act
	category, err := d.service().CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "Чайные смеси"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "chaynye-smesi", category.Slug)
	assert.True(t, category.IsActive)
	d.cache.AssertExpectations(t)
}

func TestCatalogService_CreateCategory_Duplicate(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).Return(repository.ErrDuplicateSlug)

	_, err := d.service().CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "Кофе"})

	assert.ErrorIs(t, err, ErrCategoryExists)
	d.cache.AssertNotCalled(t, "DeleteCategories", mock.Anything)
}

func TestCatalogService_CreateCategory_CacheErrorIgnored(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).Return(nil)
	d.cache.On("DeleteCategories", ctx).Return(errors.New("redis error"))

	category, err := d.service().CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "Кофе"})

	require.NoError(t, err)
	assert.NotNil(t, category)
}

func TestCatalogService_DeleteCategory_InUse(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()
	id := primitive.NewObjectID()

	d.productRepo.On("Count", ctx, repository.ProductFilter{CategoryID: &id}).Return(int64(2), nil)

	err := d.service().DeleteCategory(ctx, id.Hex())

	assert.ErrorIs(t, err, ErrCategoryInUse)
	d.categoryRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCatalogService_DeleteCategory_Success(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()
	id := primitive.NewObjectID()

	d.productRepo.On("Count", ctx, repository.ProductFilter{CategoryID: &id}).Return(int64(0), nil)
	d.categoryRepo.On("Delete", ctx, id).Return(nil)
	d.cache.On("DeleteCategories", ctx).Return(nil)

	err := d.service().DeleteCategory(ctx, id.Hex())

	require.NoError(t, err)
	d.categoryRepo.AssertExpectations(t)
}
