package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"media-market/internal/config"
	"media-market/internal/entitlement"
	"media-market/internal/handlers"
	"media-market/internal/metrics"
	"media-market/internal/middleware"
	"media-market/internal/purchase"
	"media-market/internal/quota"
	"media-market/internal/realtime"
	"media-market/internal/repository"
	"media-market/internal/session"
	"media-market/internal/subscription"
	"media-market/internal/ticketing"
	"media-market/internal/upload"
)

// newRouter wires the services and routes. cleanup releases the auth event
// subscription.
func newRouter(cfg *config.Config, log *slog.Logger, store *repository.Store, d *drivers, hub *realtime.Hub, pub realtime.Publisher, m *metrics.Metrics) (*gin.Engine, func()) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	resolver := session.NewResolver(d.identity, store, log.With("component", "session"))
	cleanup := resolver.OnAuthStateChange(func(ev session.AuthEvent) {
		if ev.Type == session.SignedOut {
			hub.Disconnect(ev.UserID)
		}
	})

	checker := entitlement.NewChecker(store, log)
	evaluator := quota.NewEvaluator(d.procedures)
	purchases := purchase.NewOrchestrator(purchase.Deps{
		Entitlements:  checker,
		Catalog:       store,
		Orders:        store,
		Finalizer:     d.procedures,
		Payments:      d.payments,
		Verifier:      d.payments,
		Publisher:     pub,
		Metrics:       m,
		Log:           log.With("component", "purchase"),
		PublicBaseURL: cfg.PublicBaseURL,
	})
	uploads := upload.NewOrchestrator(evaluator, d.storage, store, pub, m, log.With("component", "upload"))
	subs := subscription.NewService(store, d.payments, d.payments, m, log.With("component", "subscription"), cfg.PublicBaseURL)
	tickets := ticketing.NewService(store, d.procedures, ticketing.NewSigner(cfg.TicketSecret), pub, m, log.With("component", "ticketing"))

	authHandler := handlers.NewAuthHandler(resolver, log)
	profileHandler := handlers.NewProfileHandler(store, log)
	catalogHandler := handlers.NewCatalogHandler(store, d.procedures, checker, d.storage, pub, log)
	purchaseHandler := handlers.NewPurchaseHandler(purchases, checker, log)
	uploadHandler := handlers.NewUploadHandler(uploads, evaluator, log)
	eventHandler := handlers.NewEventHandler(tickets, log)
	subscriptionHandler := handlers.NewSubscriptionHandler(subs, log)
	adminHandler := handlers.NewAdminHandler(store, resolver, pub, log)
	webhookHandler := handlers.NewWebhookHandler(store, purchases, subs, log)
	wsHandler := handlers.NewWebSocketHandler(hub, log)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(m))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	sessions := middleware.Session(resolver, log)
	limit := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	authed := middleware.RequireAuth()

	r.GET("/ws", sessions, wsHandler.ServeWs)

	// Payment notifications carry no session.
	r.POST("/api/webhook/payment", webhookHandler.HandlePaymentNotification)

	api := r.Group("/api", sessions)
	{
		auth := api.Group("/auth", limit)
		{
			auth.POST("/signup", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authed, authHandler.Logout)
		}

		api.GET("/me", authed, profileHandler.GetMe)
		api.PATCH("/me", authed, profileHandler.UpdateMe)

		api.GET("/videos", catalogHandler.ListVideos)
		api.GET("/videos/:id", catalogHandler.GetVideo)
		api.GET("/music", catalogHandler.ListMusic)
		api.GET("/music/:id", catalogHandler.GetTrack)
		api.POST("/content/:id/like", authed, catalogHandler.ToggleLike)
		api.GET("/artists/:id/subscribers", catalogHandler.Subscribers)
		api.POST("/artists/:id/subscribe", authed, catalogHandler.Subscribe)

		// Anonymous buyers get the LoginRequired state back from the flow.
		api.POST("/content/:id/buy", limit, purchaseHandler.Buy)
		api.GET("/purchases/return", purchaseHandler.Return)
		api.GET("/library", authed, purchaseHandler.Library)

		api.GET("/uploads/quota", authed, uploadHandler.Quota)
		api.POST("/uploads", authed, limit, uploadHandler.Upload)

		api.GET("/events", eventHandler.List)
		api.POST("/events/:id/tickets", authed, limit, eventHandler.Buy)
		api.GET("/tickets", authed, eventHandler.MyTickets)

		api.GET("/subscription/plans", subscriptionHandler.Plans)
		api.GET("/subscription", authed, subscriptionHandler.Current)
		api.POST("/subscription/checkout", authed, limit, subscriptionHandler.Checkout)
		api.GET("/subscription/return", subscriptionHandler.Return)

		admin := api.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/content", adminHandler.ListContent)
			admin.POST("/content/:id/approve", adminHandler.Approve)
			admin.POST("/content/:id/reject", adminHandler.Reject)
			admin.POST("/users/:id/ban", adminHandler.Ban)
			admin.POST("/users/:id/unban", adminHandler.Unban)
			admin.POST("/purchases/:id/refund", adminHandler.Refund)
			admin.POST("/events", eventHandler.Create)
			admin.POST("/tickets/verify", eventHandler.Verify)
		}
	}
	return r, cleanup
}
