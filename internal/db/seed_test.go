package db

import (
	"testing"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCatalog_Idempotent(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	catalog := DefaultCatalog()

	first, err := SeedCatalog(testDB, catalog)
	require.NoError(t, err)
	assert.Equal(t, 6, first.CategoriesCreated)
	assert.Equal(t, len(catalog.Products), first.ProductsCreated)

	second, err := SeedCatalog(testDB, catalog)
	require.NoError(t, err)
	assert.Equal(t, 0, second.CategoriesCreated)
	assert.Equal(t, 0, second.ProductsCreated)
	assert.Equal(t, len(catalog.Products), second.ProductsSkipped)

	var count int64
	testDB.Model(&model.Product{}).Count(&count)
	assert.Equal(t, int64(len(catalog.Products)), count)

	var baseballCap model.Product
	require.NoError(t, testDB.Where("slug = ?", "classic-baseball-cap").First(&baseballCap).Error)
	assert.True(t, baseballCap.IsFlashSale)
	assert.True(t, baseballCap.DiscountPrice.Valid)
	assert.Len(t, baseballCap.Images, 1)
}

func TestSeedCatalog_UnknownCategory(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	_, err = SeedCatalog(testDB, CatalogSeed{
		Products: []SeedProduct{{
			Title:        "Orphan",
			Slug:         "orphan",
			Price:        decimal.NewFromInt(10),
			Thumbnail:    "https://img.example.com/orphan.jpg",
			CategorySlug: "missing",
		}},
	})
	assert.Error(t, err)
}

func TestSeedCatalog_RejectsInvalidDiscount(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	_, err = SeedCatalog(testDB, CatalogSeed{
		Categories: []SeedCategory{{Name: "Caps", Slug: "caps"}},
		Products: []SeedProduct{{
			Title:         "Bad",
			Slug:          "bad",
			Price:         decimal.NewFromInt(10),
			DiscountPrice: decimal.NewNullDecimal(decimal.NewFromInt(12)),
			Thumbnail:     "https://img.example.com/bad.jpg",
			CategorySlug:  "caps",
		}},
	})
	assert.ErrorIs(t, err, model.ErrInvalidDiscountPrice)

	var count int64
	testDB.Model(&model.Category{}).Count(&count)
	assert.Zero(t, count)
}
