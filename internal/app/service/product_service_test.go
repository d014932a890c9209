package service

import (
	"context"
	"testing"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/internal/app/repository"
	"github.com/asthar/asthar-backend/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductServiceTest(t *testing.T) (ProductService, *memoryRedis, *gorm.DB) {
	testDB := setupTestDB(t)
	seedDefaultCatalog(t, testDB)

	redisClient := newMemoryRedis()
	productService := NewProductService(repository.NewProductRepository(testDB), newTestCache(redisClient))
	return productService, redisClient, testDB
}

func TestProductService_ListProducts_Pagination(t *testing.T) {
	productService, _, _ := setupProductServiceTest(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		query      ProductQuery
		count      int
		page       int
		limit      int
		totalPages int
		hasMore    bool
	}{
		{"defaults", ProductQuery{}, 12, 1, 12, 2, true},
		{"last page", ProductQuery{Page: 2}, 1, 2, 12, 2, false},
		{"past the end", ProductQuery{Page: 5}, 0, 5, 12, 2, false},
		{"limit capped", ProductQuery{Limit: 500}, 13, 1, 50, 1, false},
		{"small pages", ProductQuery{Limit: 5, Page: 2}, 5, 2, 5, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := productService.ListProducts(ctx, tt.query)
			require.NoError(t, err)

			assert.Len(t, page.Products, tt.count)
			assert.Equal(t, int64(13), page.Pagination.Total)
			assert.Equal(t, tt.page, page.Pagination.Page)
			assert.Equal(t, tt.limit, page.Pagination.Limit)
			assert.Equal(t, tt.totalPages, page.Pagination.TotalPages)
			assert.Equal(t, tt.hasMore, page.Pagination.HasMore)
		})
	}
}

func TestProductService_ListProducts_Filters(t *testing.T) {
	productService, _, _ := setupProductServiceTest(t)
	ctx := context.Background()

	page, err := productService.ListProducts(ctx, ProductQuery{Category: "winter-hats", InStock: true})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "fur-lined-trapper-hat", page.Products[0].Slug)
	assert.Equal(t, int64(1), page.Pagination.Total)

	page, err = productService.ListProducts(ctx, ProductQuery{FlashSale: true, SortBy: repository.ProductSortPriceAsc})
	require.NoError(t, err)
	require.Len(t, page.Products, 7)
	assert.Equal(t, "cozy-knit-beanie", page.Products[0].Slug)
	assert.Equal(t, "classic-wool-fedora", page.Products[6].Slug)

	page, err = productService.ListProducts(ctx, ProductQuery{Search: "  BUCKET "})
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
}

func TestProductService_ListProducts_UnknownSortFallsBackToNewest(t *testing.T) {
	productService, _, _ := setupProductServiceTest(t)

	page, err := productService.ListProducts(context.Background(), ProductQuery{SortBy: "cheapest"})
	require.NoError(t, err)
	assert.Len(t, page.Products, 12)
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 12, Total: 0, TotalPages: 0, HasMore: false}, NewPagination(1, 12, 0))
	assert.Equal(t, Pagination{Page: 1, Limit: 12, Total: 12, TotalPages: 1, HasMore: false}, NewPagination(1, 12, 12))
	assert.Equal(t, Pagination{Page: 1, Limit: 12, Total: 25, TotalPages: 3, HasMore: true}, NewPagination(1, 12, 25))
}

func TestProductService_GetProductDetail(t *testing.T) {
	productService, redisClient, _ := setupProductServiceTest(t)

	detail, err := productService.GetProductDetail(context.Background(), "classic-baseball-cap")
	require.NoError(t, err)

	assert.Equal(t, "Classic Baseball Cap", detail.Product.Title)
	require.NotNil(t, detail.Product.Category)
	assert.Equal(t, "caps", detail.Product.Category.Slug)
	assert.Len(t, detail.Related, 2)
	for _, related := range detail.Related {
		assert.NotEqual(t, detail.Product.ID, related.ID)
		assert.Equal(t, detail.Product.CategoryID, related.CategoryID)
	}

	assert.Contains(t, redisClient.values, cache.ProductKey("classic-baseball-cap"))
}

func TestProductService_GetProductDetail_ServedFromCache(t *testing.T) {
	productService, _, testDB := setupProductServiceTest(t)
	ctx := context.Background()

	first, err := productService.GetProductDetail(ctx, "straw-fedora")
	require.NoError(t, err)

	require.NoError(t, testDB.Model(&model.Product{}).
		Where("slug = ?", "straw-fedora").
		Update("title", "Renamed Fedora").Error)

	second, err := productService.GetProductDetail(ctx, "straw-fedora")
	require.NoError(t, err)
	assert.Equal(t, first.Product.ID, second.Product.ID)
	assert.Equal(t, "Straw Fedora", second.Product.Title)
	assert.True(t, first.Product.Price.Equal(second.Product.Price))
}

func TestProductService_GetProductDetail_NotFound(t *testing.T) {
	productService, redisClient, _ := setupProductServiceTest(t)

	_, err := productService.GetProductDetail(context.Background(), "no-such-hat")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NotContains(t, redisClient.values, cache.ProductKey("no-such-hat"))
}

func TestProductService_GetFlashSaleProducts(t *testing.T) {
	productService, redisClient, _ := setupProductServiceTest(t)

	products, err := productService.GetFlashSaleProducts(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, products, 5)
	for _, p := range products {
		assert.True(t, p.IsFlashSale)
	}
	assert.Contains(t, redisClient.values, cache.FlashSaleKey)
}

func TestProductService_InvalidateProducts(t *testing.T) {
	productService, redisClient, _ := setupProductServiceTest(t)
	ctx := context.Background()

	_, err := productService.GetProductDetail(ctx, "straw-fedora")
	require.NoError(t, err)
	_, err = productService.GetFlashSaleProducts(ctx, 8)
	require.NoError(t, err)
	redisClient.values[cache.CategoriesKey] = "[]"

	require.NoError(t, productService.InvalidateProducts(ctx))

	assert.NotContains(t, redisClient.values, cache.ProductKey("straw-fedora"))
	assert.NotContains(t, redisClient.values, cache.FlashSaleKey)
	assert.Contains(t, redisClient.values, cache.CategoriesKey)
}

func TestProductService_DisabledCache(t *testing.T) {
	testDB := setupTestDB(t)
	seedDefaultCatalog(t, testDB)
	productService := NewProductService(repository.NewProductRepository(testDB), nil)

	detail, err := productService.GetProductDetail(context.Background(), "straw-fedora")
	require.NoError(t, err)
	assert.Equal(t, "straw-fedora", detail.Product.Slug)
	assert.NoError(t, productService.InvalidateProducts(context.Background()))
}
