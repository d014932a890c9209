package controller

import (
	"errors"
	"net/http"

	"github.com/asthar/asthar-backend/internal/app/service"
	apperrors "github.com/asthar/asthar-backend/internal/errors"
	"github.com/asthar/asthar-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  *int   `json:"quantity" binding:"omitempty,min=1,max=99"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=99"`
}

// GetCart returns the session's cart with totals
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.cartService.GetCart(middleware.GetCartSession(c)))
}

// AddToCart adds a catalog product to the cart, merging with an existing line
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	session := middleware.GetCartSession(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindError(c, err)
		return
	}

	productID := uuid.MustParse(req.ProductID)
	quantity := 0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := ctrl.cartService.AddItem(session, productID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrProductOutOfStock):
			apperrors.Conflict(c, apperrors.ProductOutOfStock, "Product is out of stock")
		default:
			log.Error("Failed to add item to cart", err, map[string]interface{}{
				"product_id": productID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "add to cart")
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateCartItem sets a line's quantity; zero removes the line
// PUT /api/v1/cart/items/:productId
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := cartProductID(c)
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid cart update request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindError(c, err)
		return
	}

	c.JSON(http.StatusOK, ctrl.cartService.UpdateQuantity(middleware.GetCartSession(c), productID, *req.Quantity))
}

// DELETE /api/v1/cart/items/:productId
func (ctrl *CartController) RemoveCartItem(c *gin.Context) {
	productID, ok := cartProductID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.cartService.RemoveItem(middleware.GetCartSession(c), productID))
}

// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.cartService.ClearCart(middleware.GetCartSession(c)))
}

// POST /api/v1/cart/open
func (ctrl *CartController) OpenCart(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.cartService.OpenCart(middleware.GetCartSession(c)))
}

// POST /api/v1/cart/close
func (ctrl *CartController) CloseCart(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.cartService.CloseCart(middleware.GetCartSession(c)))
}

// POST /api/v1/cart/toggle
func (ctrl *CartController) ToggleCart(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.cartService.ToggleCart(middleware.GetCartSession(c)))
}

func cartProductID(c *gin.Context) (string, bool) {
	productID := c.Param("productId")
	if err := uuid.Validate(productID); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid product ID format", map[string]interface{}{
			"product_id": productID,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return "", false
	}
	return productID, true
}
