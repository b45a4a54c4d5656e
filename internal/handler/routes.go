package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/gestorloja/gestor-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, rateLimiter *middleware.RateLimiter, clientHandler *ClientHandler, debtHandler *DebtHandler, saleHandler *SaleHandler, paymentHandler *PaymentHandler, productHandler *ProductHandler, dashboardHandler *DashboardHandler, notificationHandler *NotificationHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Client routes
	clients := api.Group("/clients")
	clients.POST("", clientHandler.CreateClient)
	clients.GET("", clientHandler.GetClients)
	clients.GET("/:id", clientHandler.GetClient)
	clients.PUT("/:id", clientHandler.UpdateClient)
	clients.DELETE("/:id", clientHandler.DeleteClient)
	clients.GET("/:id/balance", clientHandler.GetClientBalance)
	clients.GET("/:id/debts", clientHandler.GetClientDebts)
	clients.GET("/:id/sales", clientHandler.GetClientSales)

	// Debt routes
	debts := api.Group("/debts")
	debts.POST("", debtHandler.CreateDebt)
	debts.GET("", debtHandler.GetDebts)
	debts.GET("/:id", debtHandler.GetDebt)
	debts.PUT("/:id", debtHandler.UpdateDebt)
	debts.DELETE("/:id", debtHandler.DeleteDebt)
	debts.GET("/:id/payments", debtHandler.GetDebtPayments)

	// Sale routes
	sales := api.Group("/sales")
	sales.POST("", saleHandler.CreateSale)
	sales.GET("/:id", saleHandler.GetSale)
	sales.DELETE("/:id", saleHandler.DeleteSale)

	// Payment routes
	payments := api.Group("/payments")
	payments.POST("", paymentHandler.CreatePayment)
	payments.DELETE("/:id", paymentHandler.DeletePayment)

	// Product and stock routes
	products := api.Group("/products")
	products.POST("", productHandler.CreateProduct)
	products.GET("", productHandler.GetProducts)
	products.GET("/:id", productHandler.GetProduct)
	products.PUT("/:id", productHandler.UpdateProduct)
	products.DELETE("/:id", productHandler.DeleteProduct)
	products.POST("/:id/movements", productHandler.CreateMovement)
	products.GET("/:id/movements", productHandler.GetMovements)
	products.POST("/:id/image", productHandler.UploadImage)
	products.DELETE("/:id/image", productHandler.DeleteImage)
	products.GET("/:id/image-url", productHandler.GetImageURL)

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.GET("/summary", dashboardHandler.GetSummary)

	// Notification routes (rate limited, WhatsApp gateway behind them)
	notifications := api.Group("/notifications")
	notifications.Use(rateLimiter.Limit())
	notifications.POST("/sale", notificationHandler.SendSaleNotification)
	notifications.POST("/reminder", notificationHandler.SendReminder)

	// WebSocket endpoint
	e.GET("/ws", wsHandler.HandleWS)
}
