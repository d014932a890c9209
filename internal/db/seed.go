package db

import (
	"errors"
	"fmt"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SeedCategory struct {
	Name string
	Slug string
	Icon string
}

type SeedProduct struct {
	Title         string
	Slug          string
	Description   string
	Price         decimal.Decimal
	DiscountPrice decimal.NullDecimal
	StockStatus   model.StockStatus
	Thumbnail     string
	Images        []string
	CategorySlug  string
	IsFlashSale   bool
}

// CatalogSeed is a set of categories and products to upsert by slug
type CatalogSeed struct {
	Categories []SeedCategory
	Products   []SeedProduct
}

type SeedResult struct {
	CategoriesCreated int
	ProductsCreated   int
	ProductsSkipped   int
}

// SeedCatalog inserts categories and products that do not exist yet. Existing
// rows, matched by slug, are left untouched.
func SeedCatalog(db *gorm.DB, catalog CatalogSeed) (SeedResult, error) {
	var result SeedResult

	err := db.Transaction(func(tx *gorm.DB) error {
		categoriesBySlug := make(map[string]model.Category, len(catalog.Categories))

		for _, c := range catalog.Categories {
			var category model.Category
			err := tx.Where("slug = ?", c.Slug).First(&category).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				category = model.Category{Name: c.Name, Slug: c.Slug}
				if c.Icon != "" {
					icon := c.Icon
					category.Icon = &icon
				}
				err = tx.Create(&category).Error
				if err == nil {
					result.CategoriesCreated++
				}
			}
			if err != nil {
				return fmt.Errorf("seed category %s: %w", c.Slug, err)
			}
			categoriesBySlug[c.Slug] = category
		}

		for _, p := range catalog.Products {
			category, ok := categoriesBySlug[p.CategorySlug]
			if !ok {
				if err := tx.Where("slug = ?", p.CategorySlug).First(&category).Error; err != nil {
					return fmt.Errorf("seed product %s: unknown category %s: %w", p.Slug, p.CategorySlug, err)
				}
				categoriesBySlug[p.CategorySlug] = category
			}

			var existing int64
			if err := tx.Model(&model.Product{}).Where("slug = ?", p.Slug).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				result.ProductsSkipped++
				continue
			}

			product := model.Product{
				Title:         p.Title,
				Slug:          p.Slug,
				Price:         p.Price,
				DiscountPrice: p.DiscountPrice,
				StockStatus:   p.StockStatus,
				Thumbnail:     p.Thumbnail,
				Images:        model.ImageList(p.Images),
				CategoryID:    category.ID,
				IsFlashSale:   p.IsFlashSale,
			}
			if p.Description != "" {
				description := p.Description
				product.Description = &description
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("seed product %s: %w", p.Slug, err)
			}
			result.ProductsCreated++
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to seed catalog", err)
		return SeedResult{}, err
	}

	logger.Info("Catalog seeded", map[string]interface{}{
		"categories_created": result.CategoriesCreated,
		"products_created":   result.ProductsCreated,
		"products_skipped":   result.ProductsSkipped,
	})
	return result, nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func discount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func unsplash(photo string) (string, []string) {
	return fmt.Sprintf("https://images.unsplash.com/%s?w=400&h=400&fit=crop", photo),
		[]string{fmt.Sprintf("https://images.unsplash.com/%s?w=800", photo)}
}

func sample(title, slug, description, listPrice string, sale decimal.NullDecimal, status model.StockStatus, photo, categorySlug string, flash bool) SeedProduct {
	thumb, images := unsplash(photo)
	return SeedProduct{
		Title:         title,
		Slug:          slug,
		Description:   description,
		Price:         price(listPrice),
		DiscountPrice: sale,
		StockStatus:   status,
		Thumbnail:     thumb,
		Images:        images,
		CategorySlug:  categorySlug,
		IsFlashSale:   flash,
	}
}

// DefaultCatalog is the hat catalog the storefront ships with
func DefaultCatalog() CatalogSeed {
	none := decimal.NullDecimal{}
	in, out := model.StockInStock, model.StockOutOfStock

	return CatalogSeed{
		Categories: []SeedCategory{
			{Name: "Caps", Slug: "caps", Icon: "cap"},
			{Name: "Beanies", Slug: "beanies", Icon: "beanie"},
			{Name: "Fedoras", Slug: "fedoras", Icon: "fedora"},
			{Name: "Sun Hats", Slug: "sun-hats", Icon: "sun"},
			{Name: "Bucket Hats", Slug: "bucket-hats", Icon: "bucket"},
			{Name: "Winter Hats", Slug: "winter-hats", Icon: "snowflake"},
		},
		Products: []SeedProduct{
			sample("Classic Baseball Cap", "classic-baseball-cap", "A timeless baseball cap with adjustable strap", "29.99", discount("24.99"), in, "photo-1588850561407-ed78c282e89b", "caps", true),
			sample("Vintage Trucker Cap", "vintage-trucker-cap", "Retro mesh-back trucker cap", "34.99", none, in, "photo-1521369909029-2afed882baee", "caps", false),
			sample("Premium Snapback", "premium-snapback", "High-quality snapback with flat brim", "39.99", discount("32.99"), in, "photo-1556306535-0f09a537f0a3", "caps", true),
			sample("Cozy Knit Beanie", "cozy-knit-beanie", "Soft and warm knitted beanie for cold days", "24.99", discount("19.99"), in, "photo-1576871337622-98d48d1cf531", "beanies", true),
			sample("Slouchy Beanie", "slouchy-beanie", "Relaxed fit slouchy beanie", "22.99", none, in, "photo-1510598969022-c4c6c5d05769", "beanies", false),
			sample("Classic Wool Fedora", "classic-wool-fedora", "Elegant wool fedora with ribbon band", "59.99", discount("49.99"), in, "photo-1514327605112-b887c0e61c0a", "fedoras", true),
			sample("Straw Fedora", "straw-fedora", "Lightweight straw fedora for summer", "44.99", none, in, "photo-1572307480813-ceb0e59d8325", "fedoras", false),
			sample("Wide Brim Sun Hat", "wide-brim-sun-hat", "UPF 50+ protection wide brim hat", "49.99", discount("39.99"), in, "photo-1565839412428-526c7e7a9c65", "sun-hats", true),
			sample("Floppy Beach Hat", "floppy-beach-hat", "Stylish floppy hat for beach days", "39.99", none, in, "photo-1529958030586-3aae4ca485ff", "sun-hats", false),
			sample("Canvas Bucket Hat", "canvas-bucket-hat", "Durable canvas bucket hat", "32.99", discount("27.99"), in, "photo-1534215754734-18e55d13e346", "bucket-hats", true),
			sample("Reversible Bucket Hat", "reversible-bucket-hat", "Two styles in one reversible bucket hat", "36.99", none, in, "photo-1622445275576-721325763afe", "bucket-hats", false),
			sample("Fur-Lined Trapper Hat", "fur-lined-trapper-hat", "Extra warm trapper hat with faux fur", "54.99", discount("44.99"), in, "photo-1576871337632-b9aef4c17ab9", "winter-hats", true),
			sample("Cable Knit Pom Beanie", "cable-knit-pom-beanie", "Chunky cable knit beanie with pom pom", "29.99", none, out, "photo-1578681994506-b8f463449011", "winter-hats", false),
		},
	}
}
