package handler

import (
	"net/http"
	"testing"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/service"
	"shopcatalog/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCatalogHandler_ListProducts_ParsesQuery(t *testing.T) {
	// Arrange
	app := newTestApp()
	page := pagination.Params{Page: 1, Limit: 12}

	app.catalog.On("ListProducts", mock.Anything, mock.MatchedBy(func(q entity.ProductQuery) bool {
		return q.CategorySlug == "kofe" &&
			q.Search == "кения" &&
			q.MinPrice != nil && *q.MinPrice == 100 &&
			q.MaxPrice == nil &&
			q.Featured != nil && *q.Featured &&
			q.Sort == entity.SortPriceDesc &&
			q.Page == page
	})).Return(&entity.ProductList{
		Products:   []entity.ProductView{},
		Pagination: pagination.NewMeta(0, page),
	}, nil)

	// Act
	rec := doRequest(app, http.MethodGet, "/products?category=kofe&q=%D0%BA%D0%B5%D0%BD%D0%B8%D1%8F&minPrice=100&featured=true&sort=price_desc", "", nil)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["pagination"])
	app.catalog.AssertExpectations(t)
}

func TestCatalogHandler_ListProducts_UnknownSortFallsBack(t *testing.T) {
	app := newTestApp()

	app.catalog.On("ListProducts", mock.Anything, mock.MatchedBy(func(q entity.ProductQuery) bool {
		return q.Sort == entity.SortNewest && q.Page.Limit == 100
	})).Return(&entity.ProductList{Products: []entity.ProductView{}}, nil)

	rec := doRequest(app, http.MethodGet, "/products?sort=drop_table&limit=100", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogHandler_ListProducts_BadPrice(t *testing.T) {
	app := newTestApp()

	rec := doRequest(app, http.MethodGet, "/products?minPrice=abc", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	app.catalog.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestCatalogHandler_GetFeaturedProducts_StaticRouteWins(t *testing.T) {
	app := newTestApp()

	app.catalog.On("GetFeaturedProducts", mock.Anything).Return([]entity.ProductView{}, nil)

	rec := doRequest(app, http.MethodGet, "/products/featured", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	app.catalog.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
}

func TestCatalogHandler_GetProductsByCategory_NotFound(t *testing.T) {
	app := newTestApp()

	app.catalog.On("GetProductsByCategory", mock.Anything, "nope", mock.Anything).Return(nil, service.ErrCategoryNotFound)

	rec := doRequest(app, http.MethodGet, "/products/category/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogHandler_GetProduct(t *testing.T) {
	// Arrange
	app := newTestApp()
	id := primitive.NewObjectID()

	app.catalog.On("GetProduct", mock.Anything, id.Hex()).Return(&entity.ProductDetail{
		ProductView: entity.ProductView{
			Product:    entity.Product{ID: id, Name: "Кения АА", Price: 1000, Discount: 10, Rating: 4.5, NumReviews: 2},
			FinalPrice: 900,
			CategoryInfo: &entity.CategoryRef{
				ID: primitive.NewObjectID().Hex(), Name: "Кофе", Slug: "kofe",
			},
		},
		BuyersCount:  7,
		ReviewsCount: 2,
		RatingStats:  entity.RatingSummary{AvgRating: 4.5, TotalReviews: 2},
	}, nil)

	// Act
	rec := doRequest(app, http.MethodGet, "/products/"+id.Hex(), "", nil)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "Кения АА", data["name"])
	assert.Equal(t, float64(900), data["finalPrice"])
	assert.Equal(t, float64(7), data["buyersCount"])
	assert.Equal(t, float64(2), data["reviewsCount"])
	assert.Equal(t, "kofe", data["category"].(map[string]interface{})["slug"])
	assert.Equal(t, 4.5, data["ratingStats"].(map[string]interface{})["avgRating"])
}

func TestCatalogHandler_GetProductStats(t *testing.T) {
	app := newTestApp()
	id := primitive.NewObjectID().Hex()

	app.catalog.On("GetProductStats", mock.Anything, id).Return(&entity.ProductStats{
		ProductID:    id,
		RatingCounts: entity.NewRatingCounts(),
	}, nil)

	rec := doRequest(app, http.MethodGet, "/products/"+id+"/stats", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, id, data["productId"])
	assert.Len(t, data["ratingCounts"], 5)
}

func TestCatalogHandler_GetSimilarProducts_DefaultLimit(t *testing.T) {
	app := newTestApp()
	id := primitive.NewObjectID().Hex()

	app.catalog.On("GetSimilarProducts", mock.Anything, id, service.DefaultSimilarLimit).Return([]entity.ProductView{}, nil)

	rec := doRequest(app, http.MethodGet, "/products/"+id+"/similar", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	app.catalog.AssertExpectations(t)
}

func TestCatalogHandler_CreateProduct_RequiresAdmin(t *testing.T) {
	app := newTestApp()
	req := entity.CreateProductRequest{Name: "Кения", Description: "d", Price: 10, CategoryID: primitive.NewObjectID().Hex()}

	rec := doRequest(app, http.MethodPost, "/products", userToken(t, "user-1"), req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	app.catalog.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestCatalogHandler_CreateProduct_Success(t *testing.T) {
	// Arrange
	app := newTestApp()
	req := entity.CreateProductRequest{Name: "Кения", Description: "d", Price: 10, CategoryID: primitive.NewObjectID().Hex()}

	app.catalog.On("CreateProduct", mock.Anything, &req).Return(&entity.ProductView{
		Product: entity.Product{ID: primitive.NewObjectID(), Name: "Кения", IsActive: true},
	}, nil)

	// Act
	rec := doRequest(app, http.MethodPost, "/products", adminToken(t), req)

	// Assert
	assert.Equal(t, http.StatusCreated, rec.Code)
	app.catalog.AssertExpectations(t)
}

func TestCatalogHandler_CreateProduct_BadCategoryID(t *testing.T) {
	app := newTestApp()
	req := entity.CreateProductRequest{Name: "Кения", Description: "d", Price: 10, CategoryID: "electronics"}

	rec := doRequest(app, http.MethodPost, "/products", adminToken(t), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "categoryId failed on 'len=24'", decodeBody(t, rec)["message"])
}

func TestCatalogHandler_CreateProduct_UnknownCategory(t *testing.T) {
	app := newTestApp()
	req := entity.CreateProductRequest{Name: "Кения", Description: "d", Price: 10, CategoryID: primitive.NewObjectID().Hex()}

	app.catalog.On("CreateProduct", mock.Anything, &req).Return(nil, service.ErrInvalidCategory)

	rec := doRequest(app, http.MethodPost, "/products", adminToken(t), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogHandler_DeleteProduct(t *testing.T) {
	app := newTestApp()
	id := primitive.NewObjectID().Hex()

	app.catalog.On("DeleteProduct", mock.Anything, id).Return(nil)

	rec := doRequest(app, http.MethodDelete, "/products/"+id, adminToken(t), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ==================== Categories ====================

func TestCatalogHandler_ListCategories(t *testing.T) {
	app := newTestApp()

	app.catalog.On("ListCategories", mock.Anything).Return([]entity.CategoryWithCount{
		{Category: entity.Category{Name: "Кофе", Slug: "kofe", IsActive: true}, ProductCount: 4},
	}, nil)

	rec := doRequest(app, http.MethodGet, "/categories", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, float64(4), data[0].(map[string]interface{})["productCount"])
	assert.Equal(t, "kofe", data[0].(map[string]interface{})["slug"])
}

func TestCatalogHandler_GetCategory_NotFound(t *testing.T) {
	app := newTestApp()

	app.catalog.On("GetCategoryBySlug", mock.Anything, "nope").Return(nil, service.ErrCategoryNotFound)

	rec := doRequest(app, http.MethodGet, "/categories/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogHandler_CreateCategory_Duplicate(t *testing.T) {
	app := newTestApp()
	req := entity.CreateCategoryRequest{Name: "Кофе"}

	app.catalog.On("CreateCategory", mock.Anything, &req).Return(nil, service.ErrCategoryExists)

	rec := doRequest(app, http.MethodPost, "/categories", adminToken(t), req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCatalogHandler_DeleteCategory_InUse(t *testing.T) {
	app := newTestApp()
	id := primitive.NewObjectID().Hex()

	app.catalog.On("DeleteCategory", mock.Anything, id).Return(service.ErrCategoryInUse)

	rec := doRequest(app, http.MethodDelete, "/categories/"+id, adminToken(t), nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
