package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"leatherlane.com/app/internal/http/handlers"
	"leatherlane.com/app/internal/http/middleware"
	"leatherlane.com/app/internal/modules/catalog"
	"leatherlane.com/app/internal/modules/orders"
	"leatherlane.com/app/internal/modules/payments"
)

type Config struct {
	// PublicBaseURL is this service as the gateway and the browser reach
	// it (tunnel/ingress concern, configured, not discovered).
	PublicBaseURL string
	// GatewayPublicKey is the publishable key the hosted forms widget
	// needs client-side.
	GatewayPublicKey string
}

func NewRouter(logger *slog.Logger, db *gorm.DB, gw payments.Gateway, cfg Config) *gin.Engine {
	store := orders.NewStore(db)
	store.SetLogger(logger)

	paySvc := payments.NewService(store, gw, cfg.PublicBaseURL)
	paySvc.SetLogger(logger)
	webhookSvc := payments.NewWebhookService(db, store, gw)
	webhookSvc.SetLogger(logger)
	returnSvc := payments.NewReturnService(store, gw)
	returnSvc.SetLogger(logger)

	storefront := handlers.NewStorefrontHandler(catalog.NewRepo(db), store, cfg.PublicBaseURL, cfg.GatewayPublicKey)
	charges := handlers.NewChargesHandler(paySvc)
	webhooks := handlers.NewWebhookHandler(logger, webhookSvc)
	returns := handlers.NewReturnsHandler(returnSvc)
	orderList := handlers.NewOrdersHandler(store)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.ErrorHandler(logger))

	r.GET("/", storefront.Home)
	r.POST("/order", storefront.CreateOrder)
	r.POST("/create-charge", charges.Create)
	r.POST("/events", webhooks.Handle)
	r.GET("/return", returns.Handle)
	r.GET("/orders", orderList.List)

	return r
}
