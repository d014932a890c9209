package service

import (
	"context"
	"testing"
	"time"

	"github.com/asthar/asthar-backend/internal/app/repository"
	"github.com/asthar/asthar-backend/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleEnd(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	now := time.Date(2026, 3, 14, 20, 30, 0, 0, time.UTC)

	end := SaleEnd(now, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 14, 23, 59, 59, 999000000, time.UTC), end)

	// 20:30 UTC is already 05:30 the next day in Seoul
	end = SaleEnd(now, seoul)
	assert.Equal(t, time.Date(2026, 3, 15, 23, 59, 59, 999000000, seoul), end)
}

func TestTimeRemaining(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		end      time.Time
		expected Remaining
	}{
		{
			name:     "same day",
			end:      now.Add(3*time.Hour + 25*time.Minute + 7*time.Second),
			expected: Remaining{Total: 12307000, Hours: 3, Minutes: 25, Seconds: 7},
		},
		{
			name:     "more than a day",
			end:      now.Add(26*time.Hour + time.Second),
			expected: Remaining{Total: 93601000, Days: 1, Hours: 2, Seconds: 1},
		},
		{
			name:     "ended",
			end:      now.Add(-time.Minute),
			expected: Remaining{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TimeRemaining(tt.end, now))
		})
	}
}

func setupFlashSaleTest(t *testing.T) (*flashSaleService, *memoryRedis) {
	testDB := setupTestDB(t)
	seedDefaultCatalog(t, testDB)

	redisClient := newMemoryRedis()
	c := newTestCache(redisClient)
	products := NewProductService(repository.NewProductRepository(testDB), c)
	categories := NewCategoryService(repository.NewCategoryRepository(testDB), repository.NewProductRepository(testDB), c)

	svc := NewFlashSaleService(products, categories, time.UTC, 0).(*flashSaleService)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	}
	return svc, redisClient
}

func TestFlashSaleService_GetFlashSale(t *testing.T) {
	svc, _ := setupFlashSaleTest(t)

	sale, err := svc.GetFlashSale(context.Background())
	require.NoError(t, err)

	assert.Len(t, sale.Products, 7)
	assert.Equal(t, time.Date(2026, 3, 14, 23, 59, 59, 999000000, time.UTC), sale.EndsAt)
	assert.Equal(t, Remaining{Total: 3599999, Minutes: 59, Seconds: 59}, sale.Remaining)
}

func TestFlashSaleService_Rollover(t *testing.T) {
	svc, redisClient := setupFlashSaleTest(t)
	ctx := context.Background()

	_, err := svc.GetFlashSale(ctx)
	require.NoError(t, err)
	_, err = svc.products.GetProductDetail(ctx, "straw-fedora")
	require.NoError(t, err)
	_, err = svc.categories.ListCategories(ctx)
	require.NoError(t, err)
	redisClient.values["blacklist:abc"] = "revoked"

	require.NoError(t, svc.Rollover(ctx))

	assert.NotContains(t, redisClient.values, cache.FlashSaleKey)
	assert.NotContains(t, redisClient.values, cache.ProductKey("straw-fedora"))
	assert.NotContains(t, redisClient.values, cache.CategoriesKey)
	assert.Contains(t, redisClient.values, "blacklist:abc")
}
