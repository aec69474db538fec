package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/z5702god/resume-backend/internal/client"
	"github.com/z5702god/resume-backend/internal/config"
	"github.com/z5702god/resume-backend/internal/model"
	"github.com/z5702god/resume-backend/internal/newebpay"
	"github.com/z5702god/resume-backend/internal/repository"
	"github.com/z5702god/resume-backend/internal/server"
	"github.com/z5702god/resume-backend/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}
	cfg.Resolve()

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	orders, notifications, err := openStore(cfg.Store)
	if err != nil {
		logger.Error("open order store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}

	cipher, err := newebpay.NewCipher(cfg.Newebpay.HashKey, cfg.Newebpay.HashIV)
	if err != nil {
		logger.Error("invalid newebpay credentials", "error", err)
		os.Exit(1)
	}

	orderService := service.NewOrderService(
		orders,
		notifications,
		cipher,
		client.NewAnalysisClient(&cfg.Analysis),
		cfg.Newebpay,
		cfg.Order,
		service.WithLogger(logger),
		service.WithPaidHook(func(ctx context.Context, order *model.Order) {
			logger.InfoContext(ctx, "result unlocked", "order_id", order.OrderID, "email", order.Email, "amount", order.Amount)
		}),
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(orderService, cfg.FrontendURL, logger)

	logger.Info("starting HTTP server",
		"addr", serverAddr,
		"environment", cfg.Environment.Name,
		"store", cfg.Store.Driver,
		"merchant_id", cfg.Newebpay.MerchantID,
		"hash_key", mask(cfg.Newebpay.HashKey),
		"hash_iv", mask(cfg.Newebpay.HashIV),
		"gateway_url", cfg.Newebpay.GatewayURL,
		"notify_url", cfg.Newebpay.NotifyURL,
		"return_url", cfg.Newebpay.ReturnURL,
		"frontend_url", cfg.FrontendURL,
	)
	if cfg.Newebpay.TrustReturn {
		logger.Warn("unsigned payment returns may promote orders")
	}

	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		os.Exit(1)
	}
}

func openStore(cfg config.Store) (repository.OrderRepository, repository.NotificationRepository, error) {
	if cfg.Driver == "memory" {
		return repository.NewMemoryOrderRepository(), repository.NewMemoryNotificationRepository(), nil
	}

	db, err := client.InitDBClient(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewOrderRepository(db), repository.NewNotificationRepository(db), nil
}

func newLogger(cfg config.Log) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// mask keeps just enough of a secret to tell configurations apart.
func mask(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "****"
}
