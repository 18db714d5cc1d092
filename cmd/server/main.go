package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rentledger/rentledger/internal/api"
	v1 "github.com/rentledger/rentledger/internal/api/v1"
	"github.com/rentledger/rentledger/internal/cache"
	"github.com/rentledger/rentledger/internal/clock"
	"github.com/rentledger/rentledger/internal/config"
	"github.com/rentledger/rentledger/internal/logger"
	"github.com/rentledger/rentledger/internal/notification"
	"github.com/rentledger/rentledger/internal/postgres"
	"github.com/rentledger/rentledger/internal/repository"
	"github.com/rentledger/rentledger/internal/service"
	"github.com/rentledger/rentledger/internal/validator"
	"go.uber.org/fx"
)

// @title RentLedger API
// @version 1.0
// @description Monthly rental billing service
// @BasePath /v1

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC

	// Local development convenience; missing .env is fine
	_ = godotenv.Load()
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Clock
			clock.NewRealClock,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,

			// Repositories
			repository.NewInvoiceRepository,
			repository.NewAgreementSource,

			// Notifications
			notification.NewLogSender,

			// Services
			service.NewServiceParams,
			service.NewInvoiceService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	invoiceService service.InvoiceService,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(logger),
		Invoice: v1.NewInvoiceHandler(invoiceService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server...")
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			db.Close()
			return nil
		},
	})
}
