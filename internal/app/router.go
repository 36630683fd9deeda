// internal/app/router.go
package app

import (
	certificateHandler "salora-service/internal/handlers/certificate"
	orderHandler "salora-service/internal/handlers/order"
	planHandler "salora-service/internal/handlers/plan"
	wsHandler "salora-service/internal/handlers/ws"
	"salora-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	PlanHandler        *planHandler.PlanHandler
	CertificateHandler *certificateHandler.CertificateHandler
	OrderHandler       *orderHandler.OrderHandler
	WSHandler          *wsHandler.WSHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	ws := r.Group("/ws")
	ws.Use(h.AuthMiddleware.Auth())
	{
		ws.GET("/payments", h.WSHandler.PaymentEvents)
	}

	// ==================== Plans ====================
	plans := api.Group("/plans")
	plans.Use(h.AuthMiddleware.Auth())
	{
		plans.GET("", h.PlanHandler.ListPlans)
		plans.GET("/:id", h.PlanHandler.GetPlan)
		plans.POST("/change/preview", h.PlanHandler.PreviewChange)
		plans.POST("/change", h.PlanHandler.CommitChange)
	}

	// ==================== Gift Certificates ====================
	certificates := api.Group("/certificates")
	certificates.Use(h.AuthMiddleware.Auth())
	{
		certificates.POST("", h.CertificateHandler.Issue)
		certificates.POST("/validate", h.CertificateHandler.Validate)
	}

	// ==================== Orders ====================
	orders := api.Group("/orders")
	orders.Use(h.AuthMiddleware.Auth())
	{
		orders.POST("", h.OrderHandler.CreateOrder)
		orders.GET("", h.OrderHandler.ListOrders)
		orders.GET("/:id", h.OrderHandler.GetOrder)
		orders.POST("/:id/items", h.OrderHandler.AddItem)
		orders.DELETE("/:id/items/:itemId", h.OrderHandler.RemoveItem)
		orders.PUT("/:id/items/:itemId/quantity", h.OrderHandler.SetItemQuantity)
		orders.GET("/:id/totals", h.OrderHandler.GetTotals)
		orders.POST("/:id/checkout", h.OrderHandler.Checkout)
		orders.POST("/:id/payments", h.OrderHandler.RecordPayment)
		orders.POST("/:id/cancel", h.OrderHandler.CancelOrder)
	}
}
