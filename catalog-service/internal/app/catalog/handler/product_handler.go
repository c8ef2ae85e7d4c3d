package handler

import (
	"net/http"
	"strconv"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/service"
	"shopcatalog/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const defaultProductsLimit = 12

var productSorts = map[string]bool{
	entity.SortNewest:    true,
	entity.SortPriceAsc:  true,
	entity.SortPriceDesc: true,
	entity.SortRating:    true,
	entity.SortPopular:   true,
}

// CatalogHandler - товары и категории
type CatalogHandler struct {
	catalogService CatalogServiceInterface
	validator      *validator.Validate
}

func NewCatalogHandler(catalogService CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      newValidator(),
	}
}

// === PRODUCTS HANDLERS ===

// ListProducts обрабатывает GET /products
// ?category=slug&q=&minPrice=&maxPrice=&featured=&sort=&page=&limit=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	query := entity.ProductQuery{
		CategorySlug: c.Query("category"),
		Search:       c.Query("q"),
		Sort:         c.Query("sort"),
		Page:         pagination.FromQuery(c.Request.URL.Query(), defaultProductsLimit),
	}
	if query.Search == "" {
		query.Search = c.Query("search")
	}
	if !productSorts[query.Sort] {
		query.Sort = entity.SortNewest
	}

	var ok bool
	if query.MinPrice, ok = floatQuery(c, "minPrice"); !ok {
		return
	}
	if query.MaxPrice, ok = floatQuery(c, "maxPrice"); !ok {
		return
	}
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			respondFail(c, http.StatusBadRequest, "featured must be a boolean")
			return
		}
		query.Featured = &featured
	}

	result, err := h.catalogService.ListProducts(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Products,
		"pagination": result.Pagination,
	})
}

// GetFeaturedProducts обрабатывает GET /products/featured
func (h *CatalogHandler) GetFeaturedProducts(c *gin.Context) {
	products, err := h.catalogService.GetFeaturedProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, products)
}

// GetProductsByCategory обрабатывает GET /products/category/:slug
func (h *CatalogHandler) GetProductsByCategory(c *gin.Context) {
	page := pagination.FromQuery(c.Request.URL.Query(), defaultProductsLimit)

	result, err := h.catalogService.GetProductsByCategory(c.Request.Context(), c.Param("slug"), page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Products,
		"pagination": result.Pagination,
	})
}

// GetProduct обрабатывает GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, product)
}

// GetProductStats обрабатывает GET /products/:id/stats
func (h *CatalogHandler) GetProductStats(c *gin.Context) {
	stats, err := h.catalogService.GetProductStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, stats)
}

// GetSimilarProducts обрабатывает GET /products/:id/similar?limit=8
func (h *CatalogHandler) GetSimilarProducts(c *gin.Context) {
	limit := service.DefaultSimilarLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respondFail(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	products, err := h.catalogService.GetSimilarProducts(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, products)
}

// CreateProduct обрабатывает POST /products (admin)
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, product)
}

// UpdateProduct обрабатывает PUT /products/:id (admin)
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req entity.UpdateProductRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, product)
}

// DeleteProduct обрабатывает DELETE /products/:id (admin)
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalogService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Product deleted")
}

// floatQuery - необязательный числовой параметр, false если ответ уже отправлен
func floatQuery(c *gin.Context, name string) (*float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		respondFail(c, http.StatusBadRequest, name+" must be a non-negative number")
		return nil, false
	}
	return &v, true
}
