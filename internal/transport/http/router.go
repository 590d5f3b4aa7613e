package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shopsmart/backend/internal/handlers"
	"github.com/shopsmart/backend/internal/service/token"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	ProductHandler *handlers.ProductHandler
	CartHandler    *handlers.CartHandler
	OrderHandler   *handlers.OrderHandler
	PaymentHandler *handlers.PaymentHandler
	SearchHandler  *handlers.SearchHandler
	TokenService   *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)
	v1.GET("/search", d.SearchHandler.Search)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.GET("/:id/reviews", d.ProductHandler.GetReviews)
	products.POST("/:id/reviews", d.ProductHandler.AddReview, d.TokenService.RequireLogin)

	catalog := v1.Group("/catalog", d.TokenService.RequireLogin)
	catalog.POST("/products", d.ProductHandler.CreateProduct)
	catalog.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	catalog.DELETE("/products/:id", d.ProductHandler.DeleteProduct)

	profile := v1.Group("/profile", d.TokenService.RequireLogin)
	profile.GET("", d.UserHandler.GetProfile)
	profile.PATCH("", d.UserHandler.UpdateProfile)
	profile.PATCH("/password", d.UserHandler.UpdatePassword)

	cart := v1.Group("/cart", d.TokenService.RequireLogin)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.PATCH("", d.CartHandler.UpdateCartItem)
	cart.DELETE("/:productID", d.CartHandler.RemoveCartItem)

	orders := v1.Group("/orders", d.TokenService.RequireLogin)
	orders.POST("", d.OrderHandler.PlaceOrder)
	orders.GET("/mine", d.OrderHandler.GetMyOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("/:id/cancel", d.OrderHandler.CancelOrder)

	payments := v1.Group("/payments", d.TokenService.RequireLogin)
	payments.POST("/order", d.PaymentHandler.CreatePaymentOrder)
	payments.POST("/verify", d.PaymentHandler.VerifyPayment)

	shop := v1.Group("/shop", d.TokenService.RequireShop)
	shop.GET("/orders", d.OrderHandler.ShopOrders)
	shop.PATCH("/orders/:id/status", d.OrderHandler.ShopAdvanceStatus)
	shop.GET("/sales", d.OrderHandler.ShopSales)

	admin := v1.Group("/admin", d.TokenService.RequireAdmin)
	admin.GET("/orders", d.OrderHandler.AdminListOrders)
	admin.PATCH("/orders/:id/status", d.OrderHandler.AdminUpdateStatus)
	admin.POST("/orders/:id/dispute", d.OrderHandler.DisputeAction)
	admin.POST("/orders/:id/refund", d.OrderHandler.RefundAction)
	admin.GET("/users", d.UserHandler.ListUsers)
	admin.PATCH("/users/:id/block", d.UserHandler.UpdateBlockStatus)
	admin.DELETE("/users/:id", d.UserHandler.DeleteUser)
	admin.GET("/shops", d.UserHandler.ListShops)
	admin.GET("/shops/pending", d.UserHandler.PendingShops)
	admin.PATCH("/shops/:id/approval", d.UserHandler.UpdateShopApproval)
	admin.DELETE("/shops/:id", d.UserHandler.DeleteShop)
}
