package controller

import (
	"net/http"

	"github.com/asthar/asthar-backend/internal/app/service"
	apperrors "github.com/asthar/asthar-backend/internal/errors"
	"github.com/asthar/asthar-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type HomeController struct {
	homeService service.HomeService
}

func NewHomeController(homeService service.HomeService) *HomeController {
	return &HomeController{
		homeService: homeService,
	}
}

// GetHome returns everything the storefront landing page shows
// GET /api/v1/home
func (ctrl *HomeController) GetHome(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	home, err := ctrl.homeService.GetHome(c.Request.Context())
	if err != nil {
		log.Error("Failed to build home page", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "home")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": home.Categories,
		"flashSale":  flashSaleBody(home.FlashSale),
		"latest": gin.H{
			"products": viewProducts(home.Latest.Products),
			"hasMore":  home.Latest.HasMore,
		},
	})
}

func flashSaleBody(sale *service.FlashSale) gin.H {
	return gin.H{
		"products":  viewProducts(sale.Products),
		"endsAt":    sale.EndsAt,
		"remaining": sale.Remaining,
	}
}
