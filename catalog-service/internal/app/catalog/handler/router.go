package handler

import (
	"net/http"
	"slices"

	"shopcatalog/pkg/logger"
	"shopcatalog/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "catalog-service"

// Handlers - все обработчики Catalog Service
type Handlers struct {
	Reviews *ReviewHandler
	Catalog *CatalogHandler
	Shopper *ShopperHandler
}

// SetupRoutes настраивает маршруты Catalog Service.
// Чтение каталога и отзывов публичное, изменения требуют JWT, каталог меняет только admin
func SetupRoutes(h Handlers, authMiddleware *AuthMiddleware, corsOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))
	router.Use(cors.New(corsConfig(corsOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := authMiddleware.Authenticate()
	admin := authMiddleware.RequireRole("admin")

	// gin требует одно имя параметра на сегмент: :id - товар для GET/POST, отзыв для PUT/DELETE/like
	reviews := router.Group("/reviews")
	{
		reviews.GET("/:id", h.Reviews.GetProductReviews)
		reviews.POST("/:id", auth, h.Reviews.CreateReview)
		reviews.PUT("/:id", auth, h.Reviews.UpdateReview)
		reviews.DELETE("/:id", auth, h.Reviews.DeleteReview)
		reviews.POST("/:id/like", auth, h.Reviews.ToggleLike)
	}

	products := router.Group("/products")
	{
		products.GET("", h.Catalog.ListProducts)
		products.GET("/featured", h.Catalog.GetFeaturedProducts)
		products.GET("/category/:slug", h.Catalog.GetProductsByCategory)
		products.GET("/:id", h.Catalog.GetProduct)
		products.GET("/:id/stats", h.Catalog.GetProductStats)
		products.GET("/:id/similar", h.Catalog.GetSimilarProducts)

		products.POST("", auth, admin, h.Catalog.CreateProduct)
		products.PUT("/:id", auth, admin, h.Catalog.UpdateProduct)
		products.DELETE("/:id", auth, admin, h.Catalog.DeleteProduct)
	}

	categories := router.Group("/categories")
	{
		categories.GET("", h.Catalog.ListCategories)
		categories.GET("/:slug", h.Catalog.GetCategory)

		categories.POST("", auth, admin, h.Catalog.CreateCategory)
		categories.PUT("/:id", auth, admin, h.Catalog.UpdateCategory)
		categories.DELETE("/:id", auth, admin, h.Catalog.DeleteCategory)
	}

	wishlist := router.Group("/wishlist")
	wishlist.Use(auth)
	{
		wishlist.GET("", h.Shopper.GetWishlist)
		wishlist.DELETE("", h.Shopper.ClearWishlist)
		wishlist.GET("/check/:productId", h.Shopper.CheckWishlist)
		wishlist.POST("/:productId", h.Shopper.AddToWishlist)
		wishlist.DELETE("/:productId", h.Shopper.RemoveFromWishlist)
	}

	viewed := router.Group("/viewed-products")
	viewed.Use(auth)
	{
		viewed.GET("", h.Shopper.ListViewed)
		viewed.DELETE("", h.Shopper.ClearViewed)
		viewed.POST("/:productId", h.Shopper.RecordView)
		viewed.DELETE("/:productId", h.Shopper.RemoveViewed)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
