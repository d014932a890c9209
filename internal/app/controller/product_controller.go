package controller

import (
	"errors"
	"net/http"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/internal/app/repository"
	"github.com/asthar/asthar-backend/internal/app/service"
	apperrors "github.com/asthar/asthar-backend/internal/errors"
	"github.com/asthar/asthar-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ProductView is a product with its storefront price presentation
type ProductView struct {
	*model.Product
	DisplayPrice       model.DisplayPrice `json:"displayPrice"`
	DiscountPercentage *int               `json:"discountPercentage"`
}

func viewProduct(p *model.Product) ProductView {
	return ProductView{
		Product:            p,
		DisplayPrice:       p.DisplayPrice(),
		DiscountPercentage: p.DiscountPercentage(),
	}
}

func viewProducts(products []model.Product) []ProductView {
	views := make([]ProductView, len(products))
	for i := range products {
		views[i] = viewProduct(&products[i])
	}
	return views
}

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ListProductsQuery struct {
	Page      *int   `form:"page" binding:"omitempty,min=1"`
	Limit     *int   `form:"limit" binding:"omitempty,min=1,max=50"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=price-asc price-desc newest popular"`
	Category  string `form:"category" binding:"omitempty,slug"`
	Search    string `form:"search" binding:"omitempty,max=100"`
	InStock   bool   `form:"inStock"`
	FlashSale bool   `form:"flashSale"`
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// ListProducts returns one page of the filtered catalog
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		log.Warn("Invalid product query", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindError(c, err)
		return
	}

	page, err := ctrl.productService.ListProducts(c.Request.Context(), service.ProductQuery{
		Category:  query.Category,
		Search:    query.Search,
		InStock:   query.InStock,
		FlashSale: query.FlashSale,
		SortBy:    repository.ProductSort(query.SortBy),
		Page:      intOrZero(query.Page),
		Limit:     intOrZero(query.Limit),
	})
	if err != nil {
		log.Error("Failed to list products", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "products")
		return
	}

	log.Debug("Products listed", map[string]interface{}{
		"count": len(page.Products),
		"total": page.Pagination.Total,
	})

	c.JSON(http.StatusOK, gin.H{
		"products":   viewProducts(page.Products),
		"pagination": page.Pagination,
	})
}

// GetProduct returns a product with related products from its category
// GET /api/v1/products/:slug
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	slug := c.Param("slug")
	if !slugPattern.MatchString(slug) {
		log.Warn("Invalid product slug", map[string]interface{}{
			"slug": slug,
		})
		apperrors.BadRequest(c, apperrors.ProductInvalidSlug, "Invalid product slug")
		return
	}

	detail, err := ctrl.productService.GetProductDetail(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found", map[string]interface{}{
				"slug": slug,
			})
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"slug": slug,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":         viewProduct(detail.Product),
		"relatedProducts": viewProducts(detail.Related),
	})
}
