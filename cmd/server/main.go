// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mobipay-gateway/config"
	"mobipay-gateway/internal/handler"
	"mobipay-gateway/internal/ledger"
	"mobipay-gateway/internal/provider/payhero"
	"mobipay-gateway/internal/router"
	"mobipay-gateway/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("starting mobipay gateway")

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// The ledger is process memory only: entries do not survive restart.
	store := ledger.NewStore()
	gateway := payhero.NewClient(cfg.Provider, logger)

	paymentUC := usecase.NewPaymentUsecase(store, gateway, cfg, logger)

	production := cfg.Server.Env == "production"
	paymentHandler := handler.NewPaymentHandler(paymentUC, production, logger)
	callbackHandler := handler.NewCallbackHandler(paymentUC, logger)

	r := router.SetupRoutes(paymentHandler, callbackHandler, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	logger.Info("mobipay gateway started",
		zap.String("port", cfg.Server.Port),
		zap.String("environment", cfg.Server.Env))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
