package controller

import (
	"errors"
	"net/http"

	"github.com/asthar/asthar-backend/internal/app/service"
	apperrors "github.com/asthar/asthar-backend/internal/errors"
	"github.com/asthar/asthar-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

// ListCategories returns every category with its product count
// GET /api/v1/categories
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		log.Error("Failed to list categories", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// GET /api/v1/categories/:slug
func (ctrl *CategoryController) GetCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	slug := c.Param("slug")
	if !slugPattern.MatchString(slug) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid category slug")
		return
	}

	detail, err := ctrl.categoryService.GetCategory(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			log.Warn("Category not found", map[string]interface{}{
				"slug": slug,
			})
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
			return
		}
		log.Error("Failed to fetch category", err, map[string]interface{}{
			"slug": slug,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "category")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": detail.Category,
		"products": viewProducts(detail.Products),
	})
}
