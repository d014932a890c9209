package service

import (
	"context"
	"errors"
	"strings"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/internal/app/repository"
	"github.com/asthar/asthar-backend/internal/cache"
	"github.com/asthar/asthar-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductOutOfStock = errors.New("product out of stock")
)

const (
	DefaultPage         = 1
	DefaultProductLimit = 12
	MaxProductLimit     = 50
	RelatedProductLimit = 4
)

// ProductQuery is a product listing request; zero values take the defaults
type ProductQuery struct {
	Category  string
	Search    string
	InStock   bool
	FlashSale bool
	SortBy    repository.ProductSort
	Page      int
	Limit     int
}

func (q ProductQuery) normalize() ProductQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultProductLimit
	}
	if q.Limit > MaxProductLimit {
		q.Limit = MaxProductLimit
	}
	if !q.SortBy.Valid() {
		q.SortBy = repository.ProductSortNewest
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

type ProductPage struct {
	Products   []model.Product `json:"products"`
	Pagination Pagination      `json:"pagination"`
}

type ProductDetail struct {
	Product *model.Product  `json:"product"`
	Related []model.Product `json:"relatedProducts"`
}

type ProductService interface {
	ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error)
	GetProductDetail(ctx context.Context, slug string) (*ProductDetail, error)
	GetFlashSaleProducts(ctx context.Context, limit int) ([]model.Product, error)
	GetNewestProducts(limit int) ([]model.Product, error)
	InvalidateProducts(ctx context.Context) error
}

type productService struct {
	productRepo repository.ProductRepository
	cache       *cache.Cache
}

func NewProductService(productRepo repository.ProductRepository, c *cache.Cache) ProductService {
	if c == nil {
		c = cache.Disabled()
	}
	return &productService{
		productRepo: productRepo,
		cache:       c,
	}
}

func (s *productService) ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error) {
	query = query.normalize()

	logger.Debug("Listing products", map[string]interface{}{
		"category":   query.Category,
		"search":     query.Search,
		"in_stock":   query.InStock,
		"flash_sale": query.FlashSale,
		"sort_by":    query.SortBy,
		"page":       query.Page,
		"limit":      query.Limit,
	})

	filter := repository.ProductFilter{
		CategorySlug:  query.Category,
		Search:        query.Search,
		InStockOnly:   query.InStock,
		FlashSaleOnly: query.FlashSale,
		SortBy:        query.SortBy,
		Limit:         query.Limit,
		Offset:        (query.Page - 1) * query.Limit,
	}

	products, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"category": query.Category,
			"search":   query.Search,
		})
		return nil, err
	}

	total, err := s.productRepo.Count(filter)
	if err != nil {
		logger.Error("Failed to count products", err, map[string]interface{}{
			"category": query.Category,
			"search":   query.Search,
		})
		return nil, err
	}

	return &ProductPage{
		Products:   products,
		Pagination: NewPagination(query.Page, query.Limit, total),
	}, nil
}

func (s *productService) GetProductDetail(ctx context.Context, slug string) (*ProductDetail, error) {
	logger.Debug("Fetching product detail", map[string]interface{}{
		"slug": slug,
	})

	product, err := cache.GetOrSet(ctx, s.cache, cache.ProductKey(slug), s.cache.TTL(),
		func(context.Context) (*model.Product, error) {
			return s.productRepo.FindBySlug(slug)
		})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"slug": slug,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}

	related, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		CategoryID: &product.CategoryID,
		ExcludeID:  &product.ID,
		SortBy:     repository.ProductSortNewest,
		Limit:      RelatedProductLimit,
	})
	if err != nil {
		logger.Error("Failed to fetch related products", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return nil, err
	}

	return &ProductDetail{Product: product, Related: related}, nil
}

// GetFlashSaleProducts returns up to limit flash sale products, cached as one list
func (s *productService) GetFlashSaleProducts(ctx context.Context, limit int) ([]model.Product, error) {
	return cache.GetOrSet(ctx, s.cache, cache.FlashSaleKey, s.cache.TTL(),
		func(context.Context) ([]model.Product, error) {
			return s.productRepo.FindWithFilter(repository.ProductFilter{
				FlashSaleOnly: true,
				SortBy:        repository.ProductSortNewest,
				Limit:         limit,
			})
		})
}

func (s *productService) GetNewestProducts(limit int) ([]model.Product, error) {
	return s.productRepo.FindWithFilter(repository.ProductFilter{
		SortBy: repository.ProductSortNewest,
		Limit:  limit,
	})
}

// InvalidateProducts drops every cached product document and the flash sale list
func (s *productService) InvalidateProducts(ctx context.Context) error {
	if err := s.cache.Delete(ctx, cache.FlashSaleKey); err != nil {
		return err
	}
	removed, err := s.cache.DeletePattern(ctx, cache.ProductKey("*"))
	if err != nil {
		return err
	}

	logger.Info("Product cache invalidated", map[string]interface{}{
		"product_keys": removed,
	})
	return nil
}
