package service

import (
	"context"
	"fmt"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// productViewBuilder подставляет категории в товары одним запросом на пачку
type productViewBuilder struct {
	categoryRepo repository.CategoryRepository
}

func (b productViewBuilder) build(ctx context.Context, products []entity.Product) ([]entity.ProductView, error) {
	ids := make([]primitive.ObjectID, 0, len(products))
	seen := make(map[primitive.ObjectID]struct{}, len(products))
	for _, p := range products {
		if _, ok := seen[p.Category]; ok || p.Category.IsZero() {
			continue
		}
		seen[p.Category] = struct{}{}
		ids = append(ids, p.Category)
	}

	refs := make(map[primitive.ObjectID]*entity.CategoryRef, len(ids))
	if len(ids) > 0 {
		categories, err := b.categoryRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load categories: %w", err)
		}
		for i := range categories {
			refs[categories[i].ID] = categoryRef(&categories[i])
		}
	}

	views := make([]entity.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p, refs[p.Category]))
	}

	return views, nil
}

func newProductView(p entity.Product, category *entity.CategoryRef) entity.ProductView {
	return entity.ProductView{
		Product:      p,
		CategoryInfo: category,
		FinalPrice:   p.FinalPrice(),
	}
}

func categoryRef(c *entity.Category) *entity.CategoryRef {
	if c == nil {
		return nil
	}
	return &entity.CategoryRef{
		ID:          c.ID.Hex(),
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
	}
}

// activeInOrder возвращает активные товары в порядке ids, пропуская удаленные
func activeInOrder(ids []primitive.ObjectID, products []entity.Product) []entity.Product {
	byID := make(map[primitive.ObjectID]entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	ordered := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok && p.IsActive {
			ordered = append(ordered, p)
		}
	}
	return ordered
}
