package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/vendorpay/vendorpay-backend/internal/advisor"
	"github.com/vendorpay/vendorpay-backend/internal/config"
	"github.com/vendorpay/vendorpay-backend/internal/handler"
	"github.com/vendorpay/vendorpay-backend/internal/llm"
	"github.com/vendorpay/vendorpay-backend/internal/logging"
	"github.com/vendorpay/vendorpay-backend/internal/middleware"
	"github.com/vendorpay/vendorpay-backend/internal/rail"
	"github.com/vendorpay/vendorpay-backend/internal/repository"
	"github.com/vendorpay/vendorpay-backend/internal/service"
	"github.com/vendorpay/vendorpay-backend/internal/service/payment"
)

func main() {
	// Missing .env is fine; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("vendorpay-api", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	users := repository.NewUserRepository(db)
	vendors := repository.NewVendorRepository(db)
	bankAccounts := repository.NewBankAccountRepository(db)
	wallets := repository.NewWalletRepository(db)
	transactions := repository.NewTransactionRepository(db)
	paymentMethods := repository.NewPaymentMethodRepository(db)
	optimizations := repository.NewFXOptimizationRepository(db)
	interactions := repository.NewAIInteractionRepository(db)
	stats := repository.NewStatsRepository(db)

	railClient := rail.NewClient(cfg.RailBaseURL, cfg.RailAPIKey, time.Duration(cfg.RailTimeoutS)*time.Second)
	llmClient := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIKey, cfg.OpenAIModel, time.Duration(cfg.OpenAITimeoutS)*time.Second)

	advisorSvc := advisor.NewService(vendors, railClient, llmClient, interactions)
	paymentSvc := payment.NewService(vendors, transactions, paymentMethods, optimizations, stats, railClient, advisorSvc)
	authSvc := service.NewAuthService(users, cfg.JWTSecret, time.Duration(cfg.JWTExpiryH)*time.Hour)
	vendorSvc := service.NewVendorService(vendors, bankAccounts, wallets, transactions)
	userSvc := service.NewUserService(users, wallets, paymentMethods, transactions, stats)

	authHandler := handler.NewAuthHandler(authSvc)
	vendorHandler := handler.NewVendorHandler(vendorSvc)
	userHandler := handler.NewUserHandler(userSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, advisorSvc)
	healthHandler := handler.NewHealthHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	authed := middleware.Auth(cfg.JWTSecret)

	mux.Handle("GET /api/v1/users/me", authed(http.HandlerFunc(userHandler.GetProfile)))
	mux.Handle("PATCH /api/v1/users/me", authed(http.HandlerFunc(userHandler.UpdateProfile)))
	mux.Handle("POST /api/v1/users/me/password", authed(http.HandlerFunc(userHandler.ChangePassword)))
	mux.Handle("POST /api/v1/users/me/wallets", authed(http.HandlerFunc(userHandler.AddWallet)))
	mux.Handle("GET /api/v1/users/me/wallets", authed(http.HandlerFunc(userHandler.ListWallets)))
	mux.Handle("GET /api/v1/users/me/payment-methods", authed(http.HandlerFunc(userHandler.ListPaymentMethods)))
	mux.Handle("GET /api/v1/users/me/dashboard", authed(http.HandlerFunc(userHandler.Dashboard)))

	mux.Handle("POST /api/v1/vendors", authed(http.HandlerFunc(vendorHandler.Create)))
	mux.Handle("GET /api/v1/vendors", authed(http.HandlerFunc(vendorHandler.List)))
	mux.Handle("GET /api/v1/vendors/crypto", authed(http.HandlerFunc(vendorHandler.ListAcceptingCrypto)))
	mux.Handle("GET /api/v1/vendors/{id}", authed(http.HandlerFunc(vendorHandler.Get)))
	mux.Handle("PATCH /api/v1/vendors/{id}", authed(http.HandlerFunc(vendorHandler.Update)))
	mux.Handle("DELETE /api/v1/vendors/{id}", authed(http.HandlerFunc(vendorHandler.Delete)))
	mux.Handle("POST /api/v1/vendors/{id}/bank-accounts", authed(http.HandlerFunc(vendorHandler.AddBankAccount)))
	mux.Handle("GET /api/v1/vendors/{id}/bank-accounts", authed(http.HandlerFunc(vendorHandler.ListBankAccounts)))
	mux.Handle("POST /api/v1/vendors/{id}/wallets", authed(http.HandlerFunc(vendorHandler.AddWallet)))
	mux.Handle("GET /api/v1/vendors/{id}/wallets", authed(http.HandlerFunc(vendorHandler.ListWallets)))
	mux.Handle("GET /api/v1/vendors/{id}/payments", authed(http.HandlerFunc(vendorHandler.ListPayments)))

	mux.Handle("POST /api/v1/payments", authed(http.HandlerFunc(paymentHandler.Create)))
	mux.Handle("GET /api/v1/payments", authed(http.HandlerFunc(paymentHandler.List)))
	mux.Handle("GET /api/v1/payments/stats", authed(http.HandlerFunc(paymentHandler.Stats)))
	mux.Handle("POST /api/v1/payments/recommend", authed(http.HandlerFunc(paymentHandler.Recommend)))
	mux.Handle("GET /api/v1/payments/{id}", authed(http.HandlerFunc(paymentHandler.Get)))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
