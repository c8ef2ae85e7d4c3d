package service

import (
	"context"
	"errors"
	"fmt"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/repository"
	"shopcatalog/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WishlistService - список желаний пользователя
type WishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
	views        productViewBuilder
}

func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		views:        productViewBuilder{categoryRepo: categoryRepo},
	}
}

// GetWishlist возвращает список, создавая пустой при первом обращении.
// Неактивные и удаленные товары в ответ не попадают
func (s *WishlistService) GetWishlist(ctx context.Context, userID string) (*entity.WishlistView, error) {
	wishlist, err := s.wishlistRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	return s.populate(ctx, wishlist)
}

// AddToWishlist добавляет активный товар в начало списка
func (s *WishlistService) AddToWishlist(ctx context.Context, userID, productIDHex string) (*entity.WishlistView, error) {
	productID, err := s.requireActiveProduct(ctx, productIDHex)
	if err != nil {
		return nil, err
	}

	if err := s.wishlistRepo.AddProduct(ctx, userID, productID); err != nil {
		if errors.Is(err, repository.ErrAlreadyInWishlist) {
			return nil, ErrAlreadyInWishlist
		}
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}
	metrics.WishlistOperations.WithLabelValues("add").Inc()

	return s.GetWishlist(ctx, userID)
}

func (s *WishlistService) RemoveFromWishlist(ctx context.Context, userID, productIDHex string) (*entity.WishlistView, error) {
	productID, err := parseID(productIDHex, ErrProductNotFound)
	if err != nil {
		return nil, err
	}

	if err := s.wishlistRepo.RemoveProduct(ctx, userID, productID); err != nil {
		if errors.Is(err, repository.ErrWishlistNotFound) {
			return nil, ErrWishlistNotFound
		}
		return nil, fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	metrics.WishlistOperations.WithLabelValues("remove").Inc()

	return s.GetWishlist(ctx, userID)
}

// ClearWishlist очищает существующий список, ErrWishlistNotFound если его нет
func (s *WishlistService) ClearWishlist(ctx context.Context, userID string) error {
	if err := s.wishlistRepo.Clear(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrWishlistNotFound) {
			return ErrWishlistNotFound
		}
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}
	metrics.WishlistOperations.WithLabelValues("clear").Inc()

	return nil
}

func (s *WishlistService) IsInWishlist(ctx context.Context, userID, productIDHex string) (bool, error) {
	productID, err := primitive.ObjectIDFromHex(productIDHex)
	if err != nil {
		return false, nil
	}

	found, err := s.wishlistRepo.Contains(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}
	return found, nil
}

func (s *WishlistService) requireActiveProduct(ctx context.Context, productIDHex string) (primitive.ObjectID, error) {
	productID, err := parseID(productIDHex, ErrProductNotFound)
	if err != nil {
		return primitive.NilObjectID, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return primitive.NilObjectID, ErrProductNotFound
		}
		return primitive.NilObjectID, fmt.Errorf("failed to get product: %w", err)
	}
	if !product.IsActive {
		return primitive.NilObjectID, ErrProductNotFound
	}

	return productID, nil
}

func (s *WishlistService) populate(ctx context.Context, wishlist *entity.Wishlist) (*entity.WishlistView, error) {
	view := &entity.WishlistView{
		ID:       wishlist.ID.Hex(),
		User:     wishlist.User,
		Products: []entity.WishlistEntry{},
	}
	if len(wishlist.Products) == 0 {
		return view, nil
	}

	ids := make([]primitive.ObjectID, 0, len(wishlist.Products))
	addedAt := make(map[primitive.ObjectID]entity.WishlistItem, len(wishlist.Products))
	for _, item := range wishlist.Products {
		ids = append(ids, item.Product)
		addedAt[item.Product] = item
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist products: %w", err)
	}

	productViews, err := s.views.build(ctx, activeInOrder(ids, products))
	if err != nil {
		return nil, err
	}

	for _, pv := range productViews {
		view.Products = append(view.Products, entity.WishlistEntry{
			Product: pv,
			AddedAt: addedAt[pv.ID].AddedAt,
		})
	}

	return view, nil
}
