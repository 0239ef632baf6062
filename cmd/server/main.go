package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paysera-app/internal/config"
	"paysera-app/internal/db"
	"paysera-app/internal/logger"
	"paysera-app/internal/merchant"
	"paysera-app/internal/middleware"
	"paysera-app/internal/payment"
	"paysera-app/internal/payment/webhook"
	"paysera-app/internal/reporter"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = serve
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	database := initDBFunc(cfg)
	defer database.Close()

	router, err := newServer(cfg, database)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.L().Info("server listening",
		zap.String("addr", srv.Addr),
		zap.String("env", cfg.AppEnv),
		zap.String("public_base_url", cfg.PublicBaseURL),
	)
	return startServerFunc(ctx, srv)
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer wires repositories, the payment service and HTTP handlers.
func newServer(cfg *config.Config, database *sql.DB) (http.Handler, error) {
	merchantRepo := merchant.NewRepository(database)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		merchantRepo = merchant.NewCacheDecorator(merchantRepo, rdb)
		logger.L().Info("merchant config cache enabled", zap.String("redis", cfg.RedisAddr))
	}

	rep, err := reporter.NewClient(cfg.PlatformAPIURL, cfg.PlatformAppToken)
	if err != nil {
		return nil, fmt.Errorf("platform reporter: %w", err)
	}

	svc := payment.NewService(
		merchantRepo,
		payment.NewRepository(database),
		rep,
		cfg.GatewayBaseURL,
		cfg.PublicBaseURL,
	)
	webhookHandler := webhook.NewWebhookHandler(svc)
	merchantHandler := merchant.NewHandler(merchantRepo)

	return setupRouter(routes{
		initialize:     webhookHandler.InitializeHandler,
		callback:       webhookHandler.CallbackHandler,
		saveMerchant:   merchantHandler.SaveHandler,
		deleteMerchant: merchantHandler.DeleteHandler,
	}, []byte(cfg.AppSecretKey)), nil
}

type routes struct {
	initialize     http.HandlerFunc
	callback       http.HandlerFunc
	saveMerchant   http.HandlerFunc
	deleteMerchant http.HandlerFunc
}

func setupRouter(h routes, platformSecret []byte) http.Handler {
	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware, logger.LoggingMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Gateway callbacks carry their own signature.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware)
		r.Get("/webhook/paysera", h.callback)
		r.Post("/webhook/paysera", h.callback)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.PlatformAuth(platformSecret), middleware.RateLimitMiddleware)
		r.Post("/webhook/platform/initialize", h.initialize)
		r.Put("/platform/merchants/{channel}", h.saveMerchant)
		r.Delete("/platform/merchants/{channel}", h.deleteMerchant)
	})

	return r
}
