package repository

import (
	"testing"
	"time"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createCategory(t *testing.T, testDB *gorm.DB, name, slug string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Slug: slug}
	require.NoError(t, testDB.Create(category).Error)
	return category
}

type productOpts struct {
	discount   string
	outOfStock bool
	flashSale  bool
	age        time.Duration
	desc       string
}

func createProduct(t *testing.T, testDB *gorm.DB, category *model.Category, title, slug, price string, opts productOpts) *model.Product {
	t.Helper()
	product := &model.Product{
		Title:       title,
		Slug:        slug,
		Price:       decimal.RequireFromString(price),
		Thumbnail:   "https://img.example.com/" + slug + ".jpg",
		Images:      model.ImageList{"https://img.example.com/" + slug + "-1.jpg"},
		CategoryID:  category.ID,
		IsFlashSale: opts.flashSale,
		StockStatus: model.StockInStock,
		CreatedAt:   time.Now().Add(-opts.age),
	}
	if opts.discount != "" {
		product.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString(opts.discount))
	}
	if opts.outOfStock {
		product.StockStatus = model.StockOutOfStock
	}
	if opts.desc != "" {
		desc := opts.desc
		product.Description = &desc
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func createUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "hash"}
	require.NoError(t, testDB.Create(user).Error)
	return user
}
