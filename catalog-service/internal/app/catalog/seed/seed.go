package seed

import (
	"context"
	"errors"
	"fmt"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/repository"
	"shopcatalog/pkg/logger"
	"shopcatalog/pkg/slug"
)

// CategorySeed - категория демо-каталога вместе с ее товарами
type CategorySeed struct {
	Name        string
	Description string
	Image       string
	Products    []ProductSeed
}

type ProductSeed struct {
	Name        string
	Description string
	Price       float64
}

// Result - итог запуска
type Result struct {
	Skipped    bool
	Categories int
	Products   int
}

// Seeder наполняет пустой каталог демо-данными.
// Если товары уже есть, ничего не пишет
type Seeder struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	data       []CategorySeed
}

func NewSeeder(categories repository.CategoryRepository, products repository.ProductRepository, data []CategorySeed) *Seeder {
	return &Seeder{categories: categories, products: products, data: data}
}

// Run проверяет каталог и при необходимости заполняет его.
// Существующие категории с тем же slug переиспользуются
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	total, err := s.products.Count(ctx, repository.ProductFilter{})
	if err != nil {
		return Result{}, fmt.Errorf("count products: %w", err)
	}
	if total > 0 {
		logger.Info().Int64("products", total).Msg("Catalog already has data, seed skipped")
		return Result{Skipped: true}, nil
	}

	var res Result
	for _, c := range s.data {
		category, created, err := s.ensureCategory(ctx, c)
		if err != nil {
			return res, err
		}
		if created {
			res.Categories++
		}

		for i, p := range c.Products {
			product := buildProduct(category, p, i)
			if err := s.products.Create(ctx, product); err != nil {
				return res, fmt.Errorf("create product %q: %w", p.Name, err)
			}
			res.Products++
		}

		logger.Info().
			Str("category", category.Name).
			Str("category_id", category.ID.Hex()).
			Int("products", len(c.Products)).
			Msg("Category seeded")
	}

	return res, nil
}

func (s *Seeder) ensureCategory(ctx context.Context, c CategorySeed) (*entity.Category, bool, error) {
	categorySlug := slug.Generate(c.Name)

	existing, err := s.categories.GetBySlug(ctx, categorySlug)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, false, fmt.Errorf("get category %q: %w", categorySlug, err)
	}

	category := &entity.Category{
		Name:        c.Name,
		Slug:        categorySlug,
		Description: c.Description,
		Image:       c.Image,
		IsActive:    true,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, false, fmt.Errorf("create category %q: %w", c.Name, err)
	}
	return category, true, nil
}

// buildProduct заполняет производные поля детерминированно от позиции товара,
// повторный запуск на пустой базе дает тот же каталог
func buildProduct(category *entity.Category, p ProductSeed, index int) *entity.Product {
	productSlug := slug.Generate(p.Name)
	return &entity.Product{
		Name:          p.Name,
		Slug:          productSlug,
		Description:   p.Description + ". Официальная гарантия 12 месяцев, доставка по всей стране.",
		Price:         p.Price,
		OriginalPrice: p.Price + 3000,
		Discount:      float64(5 + index*3),
		Category:      category.ID,
		MainImage:     "https://picsum.photos/seed/" + productSlug + "/400/400",
		Images: []string{
			"https://picsum.photos/seed/" + productSlug + "-1/400/400",
			"https://picsum.photos/seed/" + productSlug + "-2/400/400",
		},
		Stock:    20 + index*15,
		Featured: index == 0,
		IsActive: true,
	}
}
