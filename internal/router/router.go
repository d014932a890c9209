package router

import (
	"net/http"
	"strings"

	"github.com/asthar/asthar-backend/config"
	"github.com/asthar/asthar-backend/internal/app/controller"
	"github.com/asthar/asthar-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	homeController      *controller.HomeController
	productController   *controller.ProductController
	categoryController  *controller.CategoryController
	flashSaleController *controller.FlashSaleController
	authController      *controller.AuthController
	cartController      *controller.CartController
	orderController     *controller.OrderController
	authMiddleware      *middleware.AuthMiddleware
	metricsHandler      http.Handler
	config              *config.Config
}

// NewRouter builds the HTTP router; a nil metricsHandler leaves /metrics unrouted
func NewRouter(
	homeController *controller.HomeController,
	productController *controller.ProductController,
	categoryController *controller.CategoryController,
	flashSaleController *controller.FlashSaleController,
	authController *controller.AuthController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	authMiddleware *middleware.AuthMiddleware,
	metricsHandler http.Handler,
	cfg *config.Config,
) *Router {
	return &Router{
		homeController:      homeController,
		productController:   productController,
		categoryController:  categoryController,
		flashSaleController: flashSaleController,
		authController:      authController,
		cartController:      cartController,
		orderController:     orderController,
		authMiddleware:      authMiddleware,
		metricsHandler:      metricsHandler,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	controller.RegisterValidators()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Asthar API is running",
		})
	})

	if r.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(r.metricsHandler))
	}

	v1 := router.Group("/api/v1")
	v1.Use(r.authMiddleware.OptionalAuthenticate())
	{
		v1.GET("/home", r.homeController.GetHome)

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:slug", r.productController.GetProduct)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", r.categoryController.ListCategories)
			categories.GET("/:slug", r.categoryController.GetCategory)
		}

		flashSale := v1.Group("/flash-sale")
		{
			flashSale.GET("", r.flashSaleController.GetFlashSale)
			flashSale.GET("/ws", r.flashSaleController.Subscribe)
		}

		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
		}

		cart := v1.Group("/cart")
		cart.Use(middleware.CartSession(r.config.Cart.SessionTTL, r.config.Server.Environment == "production"))
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/items", r.cartController.AddToCart)
			cart.PUT("/items/:productId", r.cartController.UpdateCartItem)
			cart.DELETE("/items/:productId", r.cartController.RemoveCartItem)
			cart.POST("/open", r.cartController.OpenCart)
			cart.POST("/close", r.cartController.CloseCart)
			cart.POST("/toggle", r.cartController.ToggleCart)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.POST("", r.orderController.CreateOrder)
			orders.GET("", r.orderController.ListOrders)
			orders.GET("/:id", r.orderController.GetOrder)
		}
	}

	return router
}

var (
	allowedHeaders = strings.Join([]string{
		"Content-Type", "Content-Length", "Accept-Encoding", "Authorization",
		"accept", "origin", "Cache-Control", "X-Requested-With",
		middleware.RequestIDHeader, middleware.CartSessionHeader,
	}, ", ")
	exposedHeaders = strings.Join([]string{
		middleware.RequestIDHeader, middleware.CartSessionHeader,
	}, ", ")
)

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
		c.Writer.Header().Set("Access-Control-Expose-Headers", exposedHeaders)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
