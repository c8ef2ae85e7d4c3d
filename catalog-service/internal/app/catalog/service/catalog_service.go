package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/infrastructure"
	"shopcatalog/catalog-service/internal/app/catalog/repository"
	"shopcatalog/pkg/logger"
	"shopcatalog/pkg/pagination"
	"shopcatalog/pkg/slug"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	featuredLimit       = 10
	DefaultSimilarLimit = 8
	maxSimilarLimit     = 50
	similarPriceSpread  = 0.3
)

// CatalogService обрабатывает бизнес-логику каталога товаров
// Координирует работу репозиториев, Redis кеша и Kafka producer
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	reviewRepo   repository.ReviewRepository
	stats        StatsReader
	cache        infrastructure.CategoryCache
	publisher    infrastructure.MessagePublisher
	cacheTTL     time.Duration
	views        productViewBuilder
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	stats StatsReader,
	cache infrastructure.CategoryCache,
	publisher infrastructure.MessagePublisher,
	cacheTTL time.Duration,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		reviewRepo:   reviewRepo,
		stats:        stats,
		cache:        cache,
		publisher:    publisher,
		cacheTTL:     cacheTTL,
		views:        productViewBuilder{categoryRepo: categoryRepo},
	}
}

// === PRODUCTS ===

// ListProducts - активные товары с фильтрами, сортировкой и пагинацией.
// Неизвестный slug категории дает пустой список
func (s *CatalogService) ListProducts(ctx context.Context, q entity.ProductQuery) (*entity.ProductList, error) {
	filter := repository.ProductFilter{
		Search:     q.Search,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		Featured:   q.Featured,
		OnlyActive: true,
		Sort:       q.Sort,
		Skip:       q.Page.Skip,
		Limit:      q.Page.Limit,
	}

	if q.CategorySlug != "" {
		category, err := s.categoryRepo.GetBySlug(ctx, q.CategorySlug)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return &entity.ProductList{
					Products:   []entity.ProductView{},
					Pagination: pagination.NewMeta(0, q.Page),
				}, nil
			}
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		filter.CategoryID = &category.ID
	}

	return s.listProducts(ctx, filter, q.Page)
}

// GetProductsByCategory - товары категории по slug, ErrCategoryNotFound для неизвестной
func (s *CatalogService) GetProductsByCategory(ctx context.Context, categorySlug string, page pagination.Params) (*entity.ProductList, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	filter := repository.ProductFilter{
		CategoryID: &category.ID,
		OnlyActive: true,
		Sort:       entity.SortNewest,
		Skip:       page.Skip,
		Limit:      page.Limit,
	}

	return s.listProducts(ctx, filter, page)
}

func (s *CatalogService) listProducts(ctx context.Context, filter repository.ProductFilter, page pagination.Params) (*entity.ProductList, error) {
	products, err := s.productRepo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	views, err := s.views.build(ctx, products)
	if err != nil {
		return nil, err
	}

	return &entity.ProductList{
		Products:   views,
		Pagination: pagination.NewMeta(total, page),
	}, nil
}

// GetFeaturedProducts - до 10 рекомендуемых товаров, лучшие по рейтингу первыми
func (s *CatalogService) GetFeaturedProducts(ctx context.Context) ([]entity.ProductView, error) {
	featured := true
	products, err := s.productRepo.Find(ctx, repository.ProductFilter{
		Featured:   &featured,
		OnlyActive: true,
		Sort:       entity.SortRating,
		Limit:      featuredLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get featured products: %w", err)
	}

	return s.views.build(ctx, products)
}

// GetProduct - карточка товара со статистикой отзывов
func (s *CatalogService) GetProduct(ctx context.Context, idHex string) (*entity.ProductDetail, error) {
	product, err := s.getProduct(ctx, idHex)
	if err != nil {
		return nil, err
	}

	var category *entity.CategoryRef
	if c, err := s.categoryRepo.GetByID(ctx, product.Category); err == nil {
		category = categoryRef(c)
	} else if !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	reviewsCount, err := s.reviewRepo.CountByProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	stats, err := s.stats.ComputeStats(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	return &entity.ProductDetail{
		ProductView:  newProductView(*product, category),
		BuyersCount:  product.Sold,
		ReviewsCount: reviewsCount,
		RatingStats: entity.RatingSummary{
			AvgRating:    stats.AvgRating,
			TotalReviews: stats.TotalReviews,
		},
	}, nil
}

// GetProductStats - покупатели, отзывы и гистограмма оценок
func (s *CatalogService) GetProductStats(ctx context.Context, idHex string) (*entity.ProductStats, error) {
	product, err := s.getProduct(ctx, idHex)
	if err != nil {
		return nil, err
	}

	reviewsCount, err := s.reviewRepo.CountByProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	stats, err := s.stats.ComputeStats(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	return &entity.ProductStats{
		ProductID:    product.ID.Hex(),
		BuyersCount:  product.Sold,
		ReviewsCount: reviewsCount,
		AvgRating:    stats.AvgRating,
		RatingCounts: stats.RatingCounts,
	}, nil
}

// GetSimilarProducts - товары той же категории в пределах ±30% цены,
// при нехватке добиваются любыми активными товарами категории
func (s *CatalogService) GetSimilarProducts(ctx context.Context, idHex string, limit int) ([]entity.ProductView, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	if limit > maxSimilarLimit {
		limit = maxSimilarLimit
	}

	product, err := s.getProduct(ctx, idHex)
	if err != nil {
		return nil, err
	}

	minPrice := product.Price * (1 - similarPriceSpread)
	maxPrice := product.Price * (1 + similarPriceSpread)

	similar, err := s.productRepo.Find(ctx, repository.ProductFilter{
		CategoryID: &product.Category,
		MinPrice:   &minPrice,
		MaxPrice:   &maxPrice,
		OnlyActive: true,
		ExcludeIDs: []primitive.ObjectID{product.ID},
		Sort:       entity.SortRating,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find similar products: %w", err)
	}

	if len(similar) < limit {
		exclude := make([]primitive.ObjectID, 0, len(similar)+1)
		exclude = append(exclude, product.ID)
		for _, p := range similar {
			exclude = append(exclude, p.ID)
		}

		additional, err := s.productRepo.Find(ctx, repository.ProductFilter{
			CategoryID: &product.Category,
			OnlyActive: true,
			ExcludeIDs: exclude,
			Sort:       entity.SortRating,
			Limit:      limit - len(similar),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to find additional products: %w", err)
		}
		similar = append(similar, additional...)
	}

	return s.views.build(ctx, similar)
}

// CreateProduct создает товар. Slug = имя + unix millis
func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.ProductView, error) {
	category, err := s.requireCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:          req.Name,
		Slug:          slug.WithTimestamp(req.Name, time.Now()),
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Discount:      req.Discount,
		Category:      category.ID,
		Images:        req.Images,
		MainImage:     req.MainImage,
		Stock:         req.Stock,
		Featured:      req.Featured,
		IsActive:      true,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateCategories(ctx)
	s.publishProductEvent(ctx, entity.EventProductCreated, product)

	view := newProductView(*product, categoryRef(category))
	return &view, nil
}

// UpdateProduct применяет только переданные поля. rating/numReviews не меняются
func (s *CatalogService) UpdateProduct(ctx context.Context, idHex string, req *entity.UpdateProductRequest) (*entity.ProductView, error) {
	product, err := s.getProduct(ctx, idHex)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != product.Name {
		product.Name = *req.Name
		product.Slug = slug.WithTimestamp(product.Name, time.Now())
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.OriginalPrice != nil {
		product.OriginalPrice = *req.OriginalPrice
	}
	if req.Discount != nil {
		product.Discount = *req.Discount
	}
	if req.Images != nil {
		product.Images = *req.Images
	}
	if req.MainImage != nil {
		product.MainImage = *req.MainImage
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	var category *entity.Category
	if req.CategoryID != nil {
		category, err = s.requireCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		product.Category = category.ID
	} else if category, err = s.categoryRepo.GetByID(ctx, product.Category); err != nil {
		if !errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		category = nil
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidateCategories(ctx)
	s.publishProductEvent(ctx, entity.EventProductUpdated, product)

	view := newProductView(*product, categoryRef(category))
	return &view, nil
}

// DeleteProduct удаляет товар вместе с его отзывами
func (s *CatalogService) DeleteProduct(ctx context.Context, idHex string) error {
	product, err := s.getProduct(ctx, idHex)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, product.ID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	deleted, err := s.reviewRepo.DeleteByProduct(ctx, product.ID)
	if err != nil {
		// товара уже нет, осиротевшие отзывы ни на что не влияют
		logger.Error().Err(err).Str("product_id", product.ID.Hex()).Msg("Failed to delete product reviews")
	} else if deleted > 0 {
		logger.Info().Str("product_id", product.ID.Hex()).Int64("reviews", deleted).Msg("Product reviews deleted")
	}

	s.invalidateCategories(ctx)
	s.publishProductEvent(ctx, entity.EventProductDeleted, product)

	return nil
}

func (s *CatalogService) getProduct(ctx context.Context, idHex string) (*entity.Product, error) {
	id, err := parseID(idHex, ErrProductNotFound)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

func (s *CatalogService) requireCategory(ctx context.Context, idHex string) (*entity.Category, error) {
	id, err := parseID(idHex, ErrInvalidCategory)
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrInvalidCategory
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// === CATEGORIES ===

// ListCategories - активные категории с количеством товаров, кешируется в Redis
func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.CategoryWithCount, error) {
	cached, err := s.cache.GetCategories(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read categories cache")
	} else if cached != nil {
		return cached, nil
	}

	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	result := make([]entity.CategoryWithCount, 0, len(categories))
	for _, c := range categories {
		count, err := s.productRepo.CountActiveByCategory(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count category products: %w", err)
		}
		result = append(result, entity.CategoryWithCount{Category: c, ProductCount: count})
	}

	if err := s.cache.SetCategories(ctx, result, s.cacheTTL); err != nil {
		// данные получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("Failed to cache categories")
	}

	return result, nil
}

// GetCategoryBySlug - активная категория с количеством товаров
func (s *CatalogService) GetCategoryBySlug(ctx context.Context, categorySlug string) (*entity.CategoryWithCount, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if !category.IsActive {
		return nil, ErrCategoryNotFound
	}

	count, err := s.productRepo.CountActiveByCategory(ctx, category.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count category products: %w", err)
	}

	return &entity.CategoryWithCount{Category: *category, ProductCount: count}, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	category := &entity.Category{
		Name:        req.Name,
		Slug:        slug.Generate(req.Name),
		Description: req.Description,
		Image:       req.Image,
		IsActive:    true,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategories(ctx)
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, idHex string, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	id, err := parseID(idHex, ErrCategoryNotFound)
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if req.Name != nil {
		category.Name = *req.Name
		category.Slug = slug.Generate(*req.Name)
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Image != nil {
		category.Image = *req.Image
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, ErrCategoryExists
		}
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCategories(ctx)
	return category, nil
}

// DeleteCategory не удаляет категорию, в которой остались товары
func (s *CatalogService) DeleteCategory(ctx context.Context, idHex string) error {
	id, err := parseID(idHex, ErrCategoryNotFound)
	if err != nil {
		return err
	}

	count, err := s.productRepo.Count(ctx, repository.ProductFilter{CategoryID: &id})
	if err != nil {
		return fmt.Errorf("failed to count category products: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidateCategories(ctx)
	return nil
}

// invalidateCategories - в кеше лежат и счетчики товаров, поэтому сбрасываем
// его и при изменениях товаров
func (s *CatalogService) invalidateCategories(ctx context.Context) {
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}
}

// publishProductEvent отправляет событие в product_events с ключом = ProductID
func (s *CatalogService) publishProductEvent(ctx context.Context, eventType string, product *entity.Product) {
	event := entity.ProductEvent{
		EventType:  eventType,
		ProductID:  product.ID.Hex(),
		CategoryID: product.Category.Hex(),
		Name:       product.Name,
		Price:      product.Price,
		Timestamp:  time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to marshal product event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, event.ProductID, data); err != nil {
		logger.Error().
			Err(err).
			Str("event_type", eventType).
			Str("product_id", event.ProductID).
			Msg("Failed to publish product event")
	}
}
