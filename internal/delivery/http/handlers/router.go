package handlers

import (
	"net/http"

	"github.com/LavaJover/shvark-slot-service/internal/auth"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Purchases      *PurchaseHandler
	Notifications  *NotificationHandler
	Resolver       auth.IdentityResolver
	WebhookSecret  string
	AdminToken     string
	MetricsHandler http.Handler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}
	router.GET("/access", cfg.Purchases.Redeem)

	api := router.Group("/api/v1")
	api.POST("/webhooks/payments", WebhookSignature(cfg.WebhookSecret), cfg.Purchases.PaymentWebhook)

	authed := api.Group("", Identity(cfg.Resolver))
	{
		authed.POST("/purchases/:id/pay", cfg.Purchases.Pay)
		authed.POST("/purchases/:id/confirm-access", cfg.Purchases.ConfirmAccess)
		authed.POST("/purchases/:id/access-token", cfg.Purchases.ReissueAccess)
		authed.GET("/purchases/:id/disputes", cfg.Purchases.ListDisputes)

		authed.GET("/notifications", cfg.Notifications.List)
		authed.GET("/notifications/unread-count", cfg.Notifications.UnreadCount)
		authed.POST("/notifications/read", cfg.Notifications.MarkRead)
		authed.DELETE("/notifications", cfg.Notifications.DeleteMany)
		authed.DELETE("/notifications/:id", cfg.Notifications.DeleteOne)
	}

	if cfg.AdminToken != "" {
		admin := api.Group("/admin", AdminOnly(cfg.AdminToken))
		admin.POST("/purchases/:id/refund", cfg.Purchases.Refund)
	}

	return router
}
