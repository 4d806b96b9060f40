package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/obsim/order-book-simulator/config"
	"github.com/obsim/order-book-simulator/internal/account"
	"github.com/obsim/order-book-simulator/internal/analysis"
	"github.com/obsim/order-book-simulator/internal/api/handlers"
	"github.com/obsim/order-book-simulator/internal/api/routes"
	"github.com/obsim/order-book-simulator/internal/book"
	"github.com/obsim/order-book-simulator/internal/broadcast"
	"github.com/obsim/order-book-simulator/internal/exchange"
	"github.com/obsim/order-book-simulator/internal/matching"
	"github.com/obsim/order-book-simulator/internal/observability"
	"github.com/obsim/order-book-simulator/internal/storage"
	"github.com/obsim/order-book-simulator/internal/storage/file"
	"github.com/obsim/order-book-simulator/internal/storage/memory"
	"github.com/obsim/order-book-simulator/internal/storage/postgres"
	"github.com/obsim/order-book-simulator/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := observability.NewLoggerWithLevel("api", parseLevel(cfg.Logger.Level))
	log.Info().Str("version", "1.0.0").Msg("starting order book simulator")

	orderStore, tradeStore, accountStore := buildStorageLayers(cfg, log)
	defer orderStore.Close()
	defer tradeStore.Close()
	if accountStore != nil {
		defer accountStore.Close()
	}

	engine := matching.NewEngine(book.NewOrderBook())

	hub := broadcast.NewHub(cfg.Broadcast.SubscriberBuffer, log)
	defer hub.Close()

	sinks := []broadcast.TradeSink{hub}
	if cfg.NATS.Enabled {
		pub, err := broadcast.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, log)
		if err != nil {
			log.Warn().Err(err).Msg("NATS unavailable, continuing without publisher")
		} else {
			defer pub.Close()
			sinks = append(sinks, pub)
			log.Info().Str("url", cfg.NATS.URL).Str("subject", cfg.NATS.Subject).Msg("NATS publisher connected")
		}
	}

	svc := exchange.NewService(exchange.Deps{
		Engine:       engine,
		Accounts:     account.NewManager(decimal.NewFromFloat(cfg.Accounts.InitialBalance)),
		Orders:       orderStore,
		Trades:       tradeStore,
		AccountStore: accountStore,
		Metrics:      analysis.NewMetricsCalculator(engine.Book(), cfg.Engine.TickSize),
		Sinks:        sinks,
		Logger:       log,
	})

	handler := routes.SetupRoutes(handlers.NewHandler(svc, hub, log), log)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server exited")
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// buildStorageLayers constructs the storage layers based on configuration.
// Memory is always the first layer; Redis and Postgres are layered behind it
// when enabled, and the trade log file is appended as the last trade layer.
func buildStorageLayers(cfg *config.Config, log zerolog.Logger) (storage.OrderStore, storage.TradeStore, storage.AccountStore) {
	orderStores := []storage.OrderStore{memory.NewOrderStore(cfg.Memory.MaxOrders)}
	tradeStores := []storage.TradeStore{memory.NewTradeStore(cfg.Memory.MaxTrades)}
	var accountStore storage.AccountStore

	if cfg.Redis.Enabled {
		redisCfg := redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			TLSEnabled:   cfg.Redis.TLSEnabled,
			OrderTTL:     cfg.Redis.OrderTTL,
			MaxOrders:    cfg.Redis.MaxOrders,
			MaxTrades:    cfg.Redis.MaxTrades,
		}

		redisOrderStore, err := redis.NewOrderStore(redisCfg)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without cache layer")
		} else {
			log.Info().Str("host", cfg.Redis.Host).Int("port", cfg.Redis.Port).Msg("Redis connected")
			orderStores = append(orderStores, redisOrderStore)

			if redisTradeStore, err := redis.NewTradeStore(redisCfg); err == nil {
				tradeStores = append(tradeStores, redisTradeStore)
			}
		}
	}

	if cfg.Database.Enabled {
		pgCfg := postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.Name,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			MaxConns:        cfg.Database.MaxConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			SSLMode:         cfg.Database.SSLMode,
		}

		pgOrderStore, err := postgres.NewOrderStore(pgCfg)
		if err != nil {
			log.Warn().Err(err).Msg("PostgreSQL unavailable, continuing without persistent layer")
		} else {
			log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Name).Msg("PostgreSQL connected")
			orderStores = append(orderStores, pgOrderStore)

			if pgTradeStore, err := postgres.NewTradeStore(pgCfg); err == nil {
				tradeStores = append(tradeStores, pgTradeStore)
			}
			if pgAccountStore, err := postgres.NewAccountStore(pgCfg); err == nil {
				accountStore = pgAccountStore
			}
		}
	}

	// Audit log, always on.
	if fileTradeStore, err := file.NewTradeStore(cfg.Engine.TradeLogPath); err == nil {
		tradeStores = append(tradeStores, fileTradeStore)
		log.Info().Str("path", cfg.Engine.TradeLogPath).Msg("trade file log enabled")
	} else {
		log.Warn().Err(err).Str("path", cfg.Engine.TradeLogPath).Msg("trade file log disabled")
	}

	var orderStore storage.OrderStore = orderStores[0]
	if len(orderStores) > 1 {
		orderStore = storage.NewCompositeOrderStore(orderStores...)
	}

	var tradeStore storage.TradeStore = tradeStores[0]
	if len(tradeStores) > 1 {
		tradeStore = storage.NewCompositeTradeStore(tradeStores...)
	}

	log.Info().
		Int("order_layers", len(orderStores)).
		Int("trade_layers", len(tradeStores)).
		Bool("account_store", accountStore != nil).
		Msg("storage layers initialized")

	return orderStore, tradeStore, accountStore
}
