package service

import (
	"context"
	"errors"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/internal/app/repository"
	"github.com/asthar/asthar-backend/internal/cache"
	"github.com/asthar/asthar-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryDetail struct {
	Category *model.Category `json:"category"`
	Products []model.Product `json:"products"`
}

type CategoryService interface {
	ListCategories(ctx context.Context) ([]model.CategoryWithCount, error)
	GetCategory(ctx context.Context, slug string) (*CategoryDetail, error)
	InvalidateCategories(ctx context.Context) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        *cache.Cache
}

func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	c *cache.Cache,
) CategoryService {
	if c == nil {
		c = cache.Disabled()
	}
	return &categoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        c,
	}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.CategoryWithCount, error) {
	categories, err := cache.GetOrSet(ctx, s.cache, cache.CategoriesKey, cache.CategoriesTTL,
		func(context.Context) ([]model.CategoryWithCount, error) {
			return s.categoryRepo.FindAllWithCounts()
		})
	if err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}
	return categories, nil
}

func (s *categoryService) GetCategory(ctx context.Context, slug string) (*CategoryDetail, error) {
	logger.Debug("Fetching category", map[string]interface{}{
		"slug": slug,
	})

	category, err := cache.GetOrSet(ctx, s.cache, cache.CategoryKey(slug), s.cache.TTL(),
		func(context.Context) (*model.Category, error) {
			return s.categoryRepo.FindBySlug(slug)
		})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Category not found", map[string]interface{}{
				"slug": slug,
			})
			return nil, ErrCategoryNotFound
		}
		logger.Error("Failed to fetch category", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}

	products, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		CategoryID: &category.ID,
		SortBy:     repository.ProductSortNewest,
	})
	if err != nil {
		logger.Error("Failed to fetch category products", err, map[string]interface{}{
			"category_id": category.ID,
		})
		return nil, err
	}

	return &CategoryDetail{Category: category, Products: products}, nil
}

func (s *categoryService) InvalidateCategories(ctx context.Context) error {
	if err := s.cache.Delete(ctx, cache.CategoriesKey); err != nil {
		return err
	}
	_, err := s.cache.DeletePattern(ctx, cache.CategoryKey("*"))
	return err
}
