package service

import (
	"testing"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/internal/app/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (OrderService, CartService, *model.User, *gorm.DB) {
	carts, testDB := setupCartServiceTest(t)

	user := &model.User{Email: "buyer@example.com", PasswordHash: "hash"}
	require.NoError(t, testDB.Create(user).Error)

	orderService := NewOrderService(
		repository.NewOrderRepository(testDB),
		repository.NewProductRepository(testDB),
		carts,
	)
	return orderService, carts, user, testDB
}

func TestOrderService_CreateOrderFromCart(t *testing.T) {
	orderService, carts, user, testDB := setupOrderServiceTest(t)
	session := UserCartSession(user.ID)

	sale := findProduct(t, testDB, "classic-baseball-cap")
	full := findProduct(t, testDB, "straw-fedora")
	_, err := carts.AddItem(session, sale.ID, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(session, full.ID, 1)
	require.NoError(t, err)

	order, err := orderService.CreateOrderFromCart(user.ID, session)
	require.NoError(t, err)

	assert.Equal(t, user.ID, order.UserID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, dec("94.97").Equal(order.Total), "total %s", order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, sale.ID, order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, dec("24.99").Equal(order.Items[0].Price))
	assert.True(t, dec("44.99").Equal(order.Items[1].Price))
	require.Len(t, order.Tracking, 1)
	assert.Equal(t, model.OrderStatusPending, order.Tracking[0].Status)

	assert.Empty(t, carts.GetCart(session).Items)

	stored, err := orderService.GetOrderByID(user.ID, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, "Order Placed", stored.Status.Label())
}

func TestOrderService_CreateOrderFromCart_EmptyCart(t *testing.T) {
	orderService, _, user, _ := setupOrderServiceTest(t)

	order, err := orderService.CreateOrderFromCart(user.ID, UserCartSession(user.ID))
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrderFromCart_ProductRemoved(t *testing.T) {
	orderService, carts, user, testDB := setupOrderServiceTest(t)
	session := UserCartSession(user.ID)

	product := findProduct(t, testDB, "straw-fedora")
	_, err := carts.AddItem(session, product.ID, 1)
	require.NoError(t, err)
	require.NoError(t, testDB.Delete(&model.Product{}, "id = ?", product.ID).Error)

	_, err = orderService.CreateOrderFromCart(user.ID, session)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Len(t, carts.GetCart(session).Items, 1)
}

func TestOrderService_GetOrders_OnlyOwn(t *testing.T) {
	orderService, carts, user, testDB := setupOrderServiceTest(t)
	other := &model.User{Email: "other@example.com", PasswordHash: "hash"}
	require.NoError(t, testDB.Create(other).Error)

	product := findProduct(t, testDB, "straw-fedora")
	_, err := carts.AddItem(UserCartSession(user.ID), product.ID, 1)
	require.NoError(t, err)
	order, err := orderService.CreateOrderFromCart(user.ID, UserCartSession(user.ID))
	require.NoError(t, err)

	orders, err := orderService.GetUserOrders(user.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	orders, err = orderService.GetUserOrders(other.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	_, err = orderService.GetOrderByID(other.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = orderService.GetOrderByID(user.ID, uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
