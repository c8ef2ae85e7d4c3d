package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/repository"
	"shopcatalog/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultViewedLimit = 20
	maxViewedLimit     = 100
)

// ViewedProductService - история просмотров товаров
type ViewedProductService struct {
	viewedRepo  repository.ViewedProductRepository
	productRepo repository.ProductRepository
	views       productViewBuilder
	now         func() time.Time
}

func NewViewedProductService(
	viewedRepo repository.ViewedProductRepository,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) *ViewedProductService {
	return &ViewedProductService{
		viewedRepo:  viewedRepo,
		productRepo: productRepo,
		views:       productViewBuilder{categoryRepo: categoryRepo},
		now:         time.Now,
	}
}

// RecordView фиксирует просмотр активного товара одним upsert
func (s *ViewedProductService) RecordView(ctx context.Context, userID, productIDHex string) error {
	productID, err := parseID(productIDHex, ErrProductNotFound)
	if err != nil {
		return err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}
	if !product.IsActive {
		return ErrProductNotFound
	}

	if err := s.viewedRepo.RecordView(ctx, userID, productID, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	metrics.ProductViews.Inc()

	return nil
}

// ListViewed - последние просмотренные товары, новые первыми
func (s *ViewedProductService) ListViewed(ctx context.Context, userID string, limit int) ([]entity.ViewedEntry, error) {
	if limit <= 0 {
		limit = DefaultViewedLimit
	}
	if limit > maxViewedLimit {
		limit = maxViewedLimit
	}

	viewed, err := s.viewedRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list viewed products: %w", err)
	}

	entries := []entity.ViewedEntry{}
	if len(viewed) == 0 {
		return entries, nil
	}

	ids := make([]primitive.ObjectID, 0, len(viewed))
	byProduct := make(map[primitive.ObjectID]entity.ViewedProduct, len(viewed))
	for _, v := range viewed {
		ids = append(ids, v.Product)
		byProduct[v.Product] = v
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewed products: %w", err)
	}

	productViews, err := s.views.build(ctx, activeInOrder(ids, products))
	if err != nil {
		return nil, err
	}

	for _, pv := range productViews {
		v := byProduct[pv.ID]
		entries = append(entries, entity.ViewedEntry{
			Product:   pv,
			ViewedAt:  v.ViewedAt,
			ViewCount: v.ViewCount,
		})
	}

	return entries, nil
}

func (s *ViewedProductService) RemoveViewed(ctx context.Context, userID, productIDHex string) error {
	productID, err := parseID(productIDHex, ErrViewedNotFound)
	if err != nil {
		return err
	}

	if err := s.viewedRepo.Delete(ctx, userID, productID); err != nil {
		if errors.Is(err, repository.ErrViewedNotFound) {
			return ErrViewedNotFound
		}
		return fmt.Errorf("failed to remove viewed product: %w", err)
	}
	return nil
}

// ClearViewed возвращает количество удаленных записей
func (s *ViewedProductService) ClearViewed(ctx context.Context, userID string) (int64, error) {
	deleted, err := s.viewedRepo.Clear(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear viewed products: %w", err)
	}
	return deleted, nil
}
