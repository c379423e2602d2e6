// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"mobipay-gateway/internal/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func SetupRoutes(
	paymentHandler *handler.PaymentHandler,
	callbackHandler *handler.CallbackHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", paymentHandler.HandleHealth)

	mount := func(r chi.Router) {
		r.Post("/payments", paymentHandler.HandleCreatePayment)
		r.Post("/withdrawals", paymentHandler.HandleCreateWithdrawal)

		r.Get("/transactions", paymentHandler.HandleListTransactions)
		r.Get("/transactions/{reference}/status", paymentHandler.HandleTransactionStatus)
		r.Delete("/transactions/{reference}", paymentHandler.HandleDeleteTransaction)

		r.Get("/fees", paymentHandler.HandleFeeEstimate)

		r.Post("/callbacks/{reference}", callbackHandler.HandleProviderCallback)
	}

	// Bare paths plus the versioned prefix for newer clients.
	mount(r)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", paymentHandler.HandleHealth)
		mount(r)
	})

	return r
}

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr))
		})
	}
}
