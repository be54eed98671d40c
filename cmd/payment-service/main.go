package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodnow-ng/payment-service-go/internal/config"
	"github.com/foodnow-ng/payment-service-go/internal/db"
	"github.com/foodnow-ng/payment-service-go/internal/events"
	httpapi "github.com/foodnow-ng/payment-service-go/internal/http"
	"github.com/foodnow-ng/payment-service-go/internal/order"
	"github.com/foodnow-ng/payment-service-go/internal/payment"
	"github.com/foodnow-ng/payment-service-go/internal/paystack"
	"github.com/foodnow-ng/payment-service-go/internal/transfer"
	"github.com/foodnow-ng/payment-service-go/internal/webhook"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

	if cfg.WebhookSecret == "" {
		logger.Printf("WARNING: no webhook secret configured, all webhook deliveries will be rejected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- DB ---
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			logger.Fatalf("db migrate: %v", err)
		}
	}

	payments := payment.NewPostgresRepository(pool)
	orders := order.NewPostgresRepository(pool)
	transfers := transfer.NewPostgresRepository(pool)

	// --- AMQP ---
	var outcomes webhook.OutcomePublisher
	if cfg.PublishEvents {
		conn, err := events.DialRabbit(cfg.RabbitURL)
		if err != nil {
			logger.Fatalf("rabbitmq: %v", err)
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn)
		if err != nil {
			logger.Fatalf("rabbitmq publisher: %v", err)
		}
		defer pub.Close()
		outcomes = pub
	}

	// --- Gateway ---
	gateway, err := paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey, &http.Client{Timeout: cfg.UpstreamTimeout})
	if err != nil {
		logger.Fatalf("paystack client: %v", err)
	}
	verifier := payment.NewVerifyService(gateway, payments, orders, logger)

	// --- HTTP ---
	wh := webhook.NewHandler(cfg.WebhookSecret, payments, orders, transfers, outcomes, logger)
	rl := webhook.NewRateLimiter(cfg.WebhookRateRPS, cfg.WebhookRateBurst)
	h := httpapi.NewHandler(payments, verifier)
	r := httpapi.NewRouter(h, wh, rl)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("shutdown signal: %s", sig)
	case err := <-errCh:
		logger.Printf("fatal error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()

	logger.Printf("shutdown complete")
}
