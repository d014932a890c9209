package service

import (
	"errors"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/internal/app/repository"
	"github.com/asthar/asthar-backend/internal/cart"
	"github.com/asthar/asthar-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderService interface {
	CreateOrderFromCart(userID uuid.UUID, session string) (*model.Order, error)
	GetUserOrders(userID uuid.UUID) ([]model.Order, error)
	GetOrderByID(userID, orderID uuid.UUID) (*model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	carts       CartService
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	carts CartService,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		carts:       carts,
	}
}

// CreateOrderFromCart places the session's cart as a pending order for the user.
// Items keep the unit price the cart was showing; the cart is cleared on success.
func (s *orderService) CreateOrderFromCart(userID uuid.UUID, session string) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id": userID,
		"session": session,
	})

	var order *model.Order
	err := s.carts.Checkout(session, func(items []cart.LineItem, totals cart.Totals) error {
		orderItems := make([]model.OrderItem, 0, len(items))
		for _, item := range items {
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				logger.Warn("Cart holds an invalid product id", map[string]interface{}{
					"session":    session,
					"product_id": item.ProductID,
				})
				return ErrProductNotFound
			}
			if _, err := s.productRepo.FindByID(productID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID: productID,
				Quantity:  item.Quantity,
				Price:     item.EffectivePrice(),
			})
		}

		order = &model.Order{
			UserID: userID,
			Total:  totals.Total,
			Status: model.OrderStatusPending,
			Items:  orderItems,
			Tracking: []model.OrderTracking{
				{Status: model.OrderStatusPending},
			},
		}
		return s.orderRepo.Create(order)
	})
	if err != nil {
		if errors.Is(err, ErrCartEmpty) {
			logger.Warn("Cannot create order: cart is empty", map[string]interface{}{
				"user_id": userID,
			})
			return nil, err
		}
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.Total.String(),
		"items":    len(order.Items),
	})
	return order, nil
}

func (s *orderService) GetUserOrders(userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

// GetOrderByID returns the order only when it belongs to the user
func (s *orderService) GetOrderByID(userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	if order.UserID != userID {
		logger.Warn("Order access denied", map[string]interface{}{
			"order_id": orderID,
			"user_id":  userID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}
