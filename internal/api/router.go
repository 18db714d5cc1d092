package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/rentledger/rentledger/internal/api/v1"
	"github.com/rentledger/rentledger/internal/config"
	"github.com/rentledger/rentledger/internal/logger"
	"github.com/rentledger/rentledger/internal/rest/middleware"
	"github.com/rentledger/rentledger/internal/types"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Invoice *v1.InvoiceHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.IdentityMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Invoice routes
	invoices := router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.POST("/refresh-overdue", handlers.Invoice.RefreshOverdue)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.DELETE("/:id", handlers.Invoice.DeleteInvoice)
		invoices.POST("/:id/payment-proof", handlers.Invoice.UploadPaymentProof)
		invoices.POST("/:id/approve", handlers.Invoice.ApproveInvoice)
		invoices.POST("/:id/reject", handlers.Invoice.RejectInvoice)
	}
}
