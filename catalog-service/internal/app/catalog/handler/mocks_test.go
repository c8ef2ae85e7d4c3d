package handler

import (
	"context"
	"testing"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/service"
	"shopcatalog/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func init() {
	gin.SetMode(gin.TestMode)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) GetProductReviews(ctx context.Context, productID string, page pagination.Params) (*entity.ProductReviews, error) {
	args := m.Called(ctx, productID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductReviews), args.Error(1)
}

func (m *MockReviewService) CreateReview(ctx context.Context, productID string, author service.Author, req *entity.CreateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, productID, author, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) UpdateReview(ctx context.Context, reviewID, userID string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, reviewID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) DeleteReview(ctx context.Context, reviewID, userID string) error {
	args := m.Called(ctx, reviewID, userID)
	return args.Error(0)
}

func (m *MockReviewService) ToggleLike(ctx context.Context, reviewID, userID string) (*entity.LikeResult, error) {
	args := m.Called(ctx, reviewID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LikeResult), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListProducts(ctx context.Context, q entity.ProductQuery) (*entity.ProductList, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductList), args.Error(1)
}

func (m *MockCatalogService) GetFeaturedProducts(ctx context.Context) ([]entity.ProductView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProductView), args.Error(1)
}

func (m *MockCatalogService) GetProductsByCategory(ctx context.Context, slug string, page pagination.Params) (*entity.ProductList, error) {
	args := m.Called(ctx, slug, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductList), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id string) (*entity.ProductDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductDetail), args.Error(1)
}

func (m *MockCatalogService) GetProductStats(ctx context.Context, id string) (*entity.ProductStats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductStats), args.Error(1)
}

func (m *MockCatalogService) GetSimilarProducts(ctx context.Context, id string, limit int) ([]entity.ProductView, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProductView), args.Error(1)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.ProductView, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductView), args.Error(1)
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, id string, req *entity.UpdateProductRequest) (*entity.ProductView, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductView), args.Error(1)
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]entity.CategoryWithCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CategoryWithCount), args.Error(1)
}

func (m *MockCatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*entity.CategoryWithCount, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CategoryWithCount), args.Error(1)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCatalogService) UpdateCategory(ctx context.Context, id string, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockWishlistService struct {
	mock.Mock
}

func (m *MockWishlistService) GetWishlist(ctx context.Context, userID string) (*entity.WishlistView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.WishlistView), args.Error(1)
}

func (m *MockWishlistService) AddToWishlist(ctx context.Context, userID, productID string) (*entity.WishlistView, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.WishlistView), args.Error(1)
}

func (m *MockWishlistService) RemoveFromWishlist(ctx context.Context, userID, productID string) (*entity.WishlistView, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.WishlistView), args.Error(1)
}

func (m *MockWishlistService) ClearWishlist(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockWishlistService) IsInWishlist(ctx context.Context, userID, productID string) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

type MockViewedService struct {
	mock.Mock
}

func (m *MockViewedService) RecordView(ctx context.Context, userID, productID string) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *MockViewedService) ListViewed(ctx context.Context, userID string, limit int) ([]entity.ViewedEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ViewedEntry), args.Error(1)
}

func (m *MockViewedService) RemoveViewed(ctx context.Context, userID, productID string) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *MockViewedService) ClearViewed(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// testApp - роутер со всеми обработчиками поверх моков
type testApp struct {
	router   *gin.Engine
	reviews  *MockReviewService
	catalog  *MockCatalogService
	wishlist *MockWishlistService
	viewed   *MockViewedService
}

func newTestApp() *testApp {
	app := &testApp{
		reviews:  new(MockReviewService),
		catalog:  new(MockCatalogService),
		wishlist: new(MockWishlistService),
		viewed:   new(MockViewedService),
	}
	app.router = SetupRoutes(Handlers{
		Reviews: NewReviewHandler(app.reviews),
		Catalog: NewCatalogHandler(app.catalog),
		Shopper: NewShopperHandler(app.wishlist, app.viewed),
	}, NewAuthMiddleware(testSecret), []string{"http://localhost:3000"})
	return app
}

func signToken(t *testing.T, secret, userID, name, role string, ttl time.Duration) string {
	t.Helper()

	claims := JWTClaims{
		UserID: userID,
		Email:  userID + "@example.com",
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func userToken(t *testing.T, userID string) string {
	return signToken(t, testSecret, userID, "Анна", "user", time.Hour)
}

func adminToken(t *testing.T) string {
	return signToken(t, testSecret, "admin-1", "Admin", "admin", time.Hour)
}
