package repository

import (
	"strings"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortPriceAsc  ProductSort = "price-asc"
	ProductSortPriceDesc ProductSort = "price-desc"
	ProductSortNewest    ProductSort = "newest"
	ProductSortPopular   ProductSort = "popular"
)

func (s ProductSort) Valid() bool {
	switch s {
	case ProductSortPriceAsc, ProductSortPriceDesc, ProductSortNewest, ProductSortPopular:
		return true
	}
	return false
}

type ProductFilter struct {
	CategorySlug  string
	CategoryID    *uuid.UUID
	ExcludeID     *uuid.UUID
	Search        string
	InStockOnly   bool
	FlashSaleOnly bool
	SortBy        ProductSort
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	Count(filter ProductFilter) (int64, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	Update(product *model.Product) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"title":       product.Title,
		"slug":        product.Slug,
		"category_id": product.CategoryID,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"slug": product.Slug,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return nil
}

// escapeLike makes s match literally inside a LIKE pattern using \ as escape
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *productRepository) filtered(filter ProductFilter) *gorm.DB {
	query := r.db.Model(&model.Product{})

	if filter.CategorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.ExcludeID != nil {
		query = query.Where("products.id <> ?", *filter.ExcludeID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(
			`LOWER(products.title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(products.description, '')) LIKE ? ESCAPE '\'`,
			like, like,
		)
	}
	if filter.InStockOnly {
		query = query.Where("products.stock_status = ?", model.StockInStock)
	}
	if filter.FlashSaleOnly {
		query = query.Where("products.is_flash_sale = ?", true)
	}
	return query
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category":   filter.CategorySlug,
		"search":     filter.Search,
		"in_stock":   filter.InStockOnly,
		"flash_sale": filter.FlashSaleOnly,
		"sort_by":    filter.SortBy,
		"limit":      filter.Limit,
		"offset":     filter.Offset,
	})

	query := r.filtered(filter).Preload("Category").Select("products.*")

	switch filter.SortBy {
	case ProductSortPriceAsc:
		query = query.Order("products.price ASC").Order("products.created_at DESC")
	case ProductSortPriceDesc:
		query = query.Order("products.price DESC").Order("products.created_at DESC")
	case ProductSortPopular:
		sales := r.db.Table("order_items").
			Select("order_items.product_id, SUM(order_items.quantity) AS units").
			Group("order_items.product_id")
		query = query.
			Joins("LEFT JOIN (?) AS sales ON sales.product_id = products.id", sales).
			Order("COALESCE(sales.units, 0) DESC").
			Order("products.created_at DESC")
	case ProductSortNewest:
		fallthrough
	default:
		query = query.Order("products.created_at DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"category": filter.CategorySlug,
			"search":   filter.Search,
		})
		return nil, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) Count(filter ProductFilter) (int64, error) {
	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err, map[string]interface{}{
			"category": filter.CategorySlug,
			"search":   filter.Search,
		})
		return 0, err
	}
	return total, nil
}

func (r *productRepository) FindByID(id uuid.UUID) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.Preload("Category").Where("id = ?", id).First(&product).Error; err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	logger.Debug("Finding product by slug in database", map[string]interface{}{
		"slug": slug,
	})

	var product model.Product
	if err := r.db.Preload("Category").Where("slug = ?", slug).First(&product).Error; err != nil {
		logger.Error("Failed to find product by slug in database", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}

	logger.Debug("Product found by slug in database", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return &product, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := r.db.Omit("Category").Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}
