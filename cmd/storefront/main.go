package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/digicoders-git/espejo-website-sub001/internal/api"
	"github.com/digicoders-git/espejo-website-sub001/internal/cart"
	"github.com/digicoders-git/espejo-website-sub001/internal/checkout"
	"github.com/digicoders-git/espejo-website-sub001/internal/events"
	h "github.com/digicoders-git/espejo-website-sub001/internal/http"
	"github.com/digicoders-git/espejo-website-sub001/internal/localstore"
	"github.com/digicoders-git/espejo-website-sub001/internal/payment"
)

type Config struct {
	HTTPPort        string
	CommerceAPIURL  string
	RedisAddr       string
	KafkaBrokers    string
	CheckoutSDKURL  string
	Currency        string
	RequestTimeout  time.Duration
	APICallTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		CommerceAPIURL:  getEnv("COMMERCE_API_URL", "http://localhost:9000/api"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		CheckoutSDKURL:  getEnv("CHECKOUT_SDK_URL", "https://checkout.razorpay.com/v1/checkout.js"),
		Currency:        getEnv("CURRENCY", "INR"),
		RequestTimeout:  30 * time.Second,
		APICallTimeout:  10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := loadConfig()

	// Snapshot store: redis when reachable, in-memory otherwise. The snapshot
	// is a degradation layer, so a missing redis lowers durability but never
	// blocks startup.
	var snapshots localstore.SnapshotStore
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unreachable, cart snapshots are in-memory only", "addr", cfg.RedisAddr, "error", err)
		snapshots = localstore.NewMemoryStore()
	} else {
		snapshots = localstore.NewRedisStore(rdb)
		defer rdb.Close()
	}
	cancel()

	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	client := api.NewClient(cfg.CommerceAPIURL, httpClient, cfg.APICallTimeout)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		publisher = events.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ",")...)
	}
	defer publisher.Close()

	cartSvc := cart.NewService(client, snapshots)
	bridge := h.NewBridgeProvider()
	loader := payment.NewScriptLoader(cfg.CheckoutSDKURL, httpClient)
	checkoutSvc := checkout.NewService(
		client, cartSvc, checkout.SlogNotifier{}, publisher,
		client, loader, cfg.Currency,
	)

	router := h.NewRouter(
		h.NewCartHandler(cartSvc),
		h.NewProductHandler(client),
		h.NewAddressHandler(client),
		h.NewCheckoutHandler(checkoutSvc, cartSvc, client, bridge),
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("storefront starting", "port", cfg.HTTPPort, "commerce_api", cfg.CommerceAPIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited")
}
