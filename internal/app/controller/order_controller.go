package controller

import (
	"errors"
	"net/http"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/internal/app/service"
	apperrors "github.com/asthar/asthar-backend/internal/errors"
	"github.com/asthar/asthar-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

func orderBody(order *model.Order) gin.H {
	return gin.H{
		"id":          order.ID,
		"total":       order.Total,
		"status":      order.Status,
		"statusLabel": order.Status.Label(),
		"items":       order.Items,
		"tracking":    order.Tracking,
		"createdAt":   order.CreatedAt,
	}
}

// CreateOrder places the caller's cart as an order
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	order, err := ctrl.orderService.CreateOrderFromCart(userID, service.UserCartSession(userID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Your cart is empty")
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.RespondWithError(c, http.StatusConflict, apperrors.ProductNotFound, "A product in your cart is no longer available")
		default:
			log.Error("Failed to create order", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create order")
		}
		return
	}

	log.Info("Order placed", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"order": orderBody(order),
	})
}

// ListOrders returns the caller's orders, newest first
// GET /api/v1/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "orders")
		return
	}

	bodies := make([]gin.H, len(orders))
	for i := range orders {
		bodies[i] = orderBody(&orders[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": bodies,
		"count":  len(bodies),
	})
}

// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid order ID")
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": orderBody(order),
	})
}
