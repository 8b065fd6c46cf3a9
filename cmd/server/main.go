package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/shivgems/internal/config"
	"github.com/Skotchmaster/shivgems/internal/db"
	"github.com/Skotchmaster/shivgems/internal/events"
	"github.com/Skotchmaster/shivgems/internal/httpserver"
	"github.com/Skotchmaster/shivgems/internal/idempotency"
	"github.com/Skotchmaster/shivgems/internal/logging"
	"github.com/Skotchmaster/shivgems/internal/metrics"
	"github.com/Skotchmaster/shivgems/internal/repo"
	"github.com/Skotchmaster/shivgems/internal/search"
	"github.com/Skotchmaster/shivgems/internal/service"
	"github.com/Skotchmaster/shivgems/internal/tokens"
)

const purgeInterval = time.Hour

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(initCtx, gdb)
	}
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	r := repo.New(gdb)
	m := metrics.New(prometheus.NewRegistry())

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewProducer(cfg.KafkaBrokers)
		logger.Info("kafka events enabled", "brokers", cfg.KafkaBrokers, "topics", events.Topics())
	}

	catalog := &service.CatalogService{Repo: r, Events: pub, Metrics: m}
	if cfg.ESURL != "" {
		es, err := search.NewClient(search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex})
		if err != nil {
			logger.Warn("elasticsearch unavailable, using sql search", "error", err)
		} else {
			catalog.Index = &search.ProductIndex{ES: es, Index: cfg.ESIndex}
		}
	}

	orders := &service.OrderService{Repo: r, Events: pub, Metrics: m}
	var idem *idempotency.RedisStore
	if cfg.RedisAddr != "" {
		idem = idempotency.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}))
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := idem.Ping(pingCtx); err != nil {
			logger.Warn("redis not answering, idempotency keys will fail until it does", "error", err)
		}
		pingCancel()
		orders.Idem = idem
	}

	auth := &service.AuthService{
		Repo:   r,
		Issuer: tokens.Issuer{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL},
		Events: pub,
	}
	if cfg.AdminEmail != "" {
		if _, err := auth.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("admin bootstrap: %v", err)
		}
		logger.Info("admin account ensured", "email", cfg.AdminEmail)
	}

	e := httpserver.NewServer(&httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: auth},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		CartHandler: &httpserver.CartHTTP{Svc: &service.CartService{
			Repo:   r,
			Events: pub,
			Pricing: service.Pricing{
				TaxRate:               cfg.TaxRate,
				ShippingFee:           cfg.ShippingFee,
				FreeShippingThreshold: cfg.FreeShippingThreshold,
			},
		}},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orders},
		AdminHandler:   &httpserver.AdminHTTP{Svc: &service.AdminService{Repo: r, Events: pub}},
		JWTSecret:      cfg.JWTSecret,
		Revocations:    auth,
		DBPing:         func(ctx context.Context) error { return db.Ping(ctx, gdb) },
		Metrics:        m,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("shivgems listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	purgeCtx, stopPurge := context.WithCancel(context.Background())
	go purgeRevokedTokens(purgeCtx, r, logger)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	stopPurge()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := pub.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}
	if idem != nil {
		if err := idem.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func purgeRevokedTokens(ctx context.Context, r *repo.GormRepo, logger *slog.Logger) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := r.PurgeExpiredTokens(ctx, now)
			if err != nil {
				logger.Warn("purge revoked tokens failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged revoked tokens", "count", n)
			}
		}
	}
}
