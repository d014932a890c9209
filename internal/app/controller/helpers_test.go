package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/asthar/asthar-backend/config"
	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/internal/app/repository"
	"github.com/asthar/asthar-backend/internal/app/service"
	"github.com/asthar/asthar-backend/internal/db"
	"github.com/asthar/asthar-backend/internal/middleware"
	"github.com/asthar/asthar-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret-for-controllers"

// memoryRevocations implements both sides of the token blacklist
type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: map[string]time.Duration{}}
}

func (m *memoryRevocations) Revoke(ctx context.Context, tokenID string, expiry time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = expiry
	return nil
}

func (m *memoryRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

type testEnv struct {
	db     *gorm.DB
	engine *gin.Engine
	auth   service.AuthService
	carts  service.CartService
}

// setupTestEnv wires the storefront API over a seeded sqlite database
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	_, err = db.SeedCatalog(testDB, db.DefaultCatalog())
	require.NoError(t, err)

	productRepo := repository.NewProductRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	revocations := newMemoryRevocations()
	products := service.NewProductService(productRepo, nil)
	categories := service.NewCategoryService(categoryRepo, productRepo, nil)
	flashSale := service.NewFlashSaleService(products, categories, time.UTC, 0)
	home := service.NewHomeService(products, categories, flashSale)
	auth := service.NewAuthService(userRepo, revocations, testJWTSecret, time.Hour)
	storage := service.NewStorageFactory(config.CartConfig{StorageDriver: config.CartStorageMemory}, nil)
	carts := service.NewCartService(productRepo, storage, time.Second, time.Hour)
	orders := service.NewOrderService(orderRepo, productRepo, carts)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret, revocations)
	productCtrl := NewProductController(products)
	categoryCtrl := NewCategoryController(categories)
	homeCtrl := NewHomeController(home)
	flashSaleCtrl := NewFlashSaleController(flashSale, websocket.NewHub(), []string{"*"})
	authCtrl := NewAuthController(auth)
	cartCtrl := NewCartController(carts)
	orderCtrl := NewOrderController(orders)

	engine := gin.New()
	engine.Use(middleware.LoggingMiddleware())
	api := engine.Group("/api/v1")
	api.Use(authMiddleware.OptionalAuthenticate())

	api.GET("/home", homeCtrl.GetHome)
	api.GET("/products", productCtrl.ListProducts)
	api.GET("/products/:slug", productCtrl.GetProduct)
	api.GET("/categories", categoryCtrl.ListCategories)
	api.GET("/categories/:slug", categoryCtrl.GetCategory)
	api.GET("/flash-sale", flashSaleCtrl.GetFlashSale)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authCtrl.Register)
	authGroup.POST("/login", authCtrl.Login)
	authGroup.GET("/me", authMiddleware.Authenticate(), authCtrl.Me)
	authGroup.POST("/logout", authMiddleware.Authenticate(), authCtrl.Logout)

	cartGroup := api.Group("/cart")
	cartGroup.Use(middleware.CartSession(time.Hour, false))
	cartGroup.GET("", cartCtrl.GetCart)
	cartGroup.DELETE("", cartCtrl.ClearCart)
	cartGroup.POST("/items", cartCtrl.AddToCart)
	cartGroup.PUT("/items/:productId", cartCtrl.UpdateCartItem)
	cartGroup.DELETE("/items/:productId", cartCtrl.RemoveCartItem)
	cartGroup.POST("/open", cartCtrl.OpenCart)
	cartGroup.POST("/close", cartCtrl.CloseCart)
	cartGroup.POST("/toggle", cartCtrl.ToggleCart)

	orderGroup := api.Group("/orders")
	orderGroup.Use(authMiddleware.Authenticate())
	orderGroup.POST("", orderCtrl.CreateOrder)
	orderGroup.GET("", orderCtrl.ListOrders)
	orderGroup.GET("/:id", orderCtrl.GetOrder)

	return &testEnv{db: testDB, engine: engine, auth: auth, carts: carts}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// signUp registers a user and returns the bearer header for it
func (e *testEnv) signUp(t *testing.T, email string) (map[string]string, *service.AuthResult) {
	t.Helper()
	result, err := e.auth.Register(email, "password123", "Test User")
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + result.Token}, result
}

func (e *testEnv) product(t *testing.T, slug string) *model.Product {
	t.Helper()
	product, err := repository.NewProductRepository(e.db).FindBySlug(slug)
	require.NoError(t, err)
	return product
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	decode(t, w, &body)
	return body
}
