package repository

import (
	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(category *model.Category) error
	FindAllWithCounts() ([]model.CategoryWithCount, error)
	FindBySlug(slug string) (*model.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *model.Category) error {
	logger.Debug("Creating category in database", map[string]interface{}{
		"slug": category.Slug,
	})

	if err := r.db.Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"slug": category.Slug,
		})
		return err
	}

	logger.Debug("Category created in database", map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	return nil
}

// FindAllWithCounts lists every category by name with its product count
func (r *categoryRepository) FindAllWithCounts() ([]model.CategoryWithCount, error) {
	logger.Debug("Finding categories with product counts")

	var categories []model.CategoryWithCount
	err := r.db.Model(&model.Category{}).
		Select("categories.*, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id").
		Order("categories.name ASC").
		Scan(&categories).Error
	if err != nil {
		logger.Error("Failed to find categories with product counts", err)
		return nil, err
	}

	logger.Debug("Categories found", map[string]interface{}{
		"count": len(categories),
	})
	return categories, nil
}

func (r *categoryRepository) FindBySlug(slug string) (*model.Category, error) {
	logger.Debug("Finding category by slug in database", map[string]interface{}{
		"slug": slug,
	})

	var category model.Category
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		logger.Error("Failed to find category by slug in database", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}

	return &category, nil
}
