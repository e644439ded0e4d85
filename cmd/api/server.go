package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/config"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/api/handlers"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/api/routes"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/ledger"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/logger"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/marketdata"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/matching"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/recorder"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/storage"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/storage/memory"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/storage/postgres"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/storage/redis"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/stream"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.L().Infow("Starting exchange core", "version", version)

	stores := buildStorageLayers(cfg)
	defer stores.close()

	// durable transaction history, written off the matching path
	rec := recorder.New(stores.events, recorder.Options{})
	defer rec.Close()

	var producer *stream.Producer
	if cfg.Kafka.Enabled {
		producer = stream.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		logger.L().Infow("Trade feed enabled",
			"brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	hub := marketdata.NewHub()
	go hub.Run()
	defer hub.Stop()

	market := marketdata.NewPublisher(cfg.MarketData.TapeSize, hub, producer)

	book := ledger.New(stores.balances)

	engines := matching.NewEngineSet(matching.Deps{
		Ledger:      book,
		Orders:      stores.orders,
		Trades:      stores.trades,
		Events:      rec,
		Market:      market,
		Band:        cfg.Engine.MarketBuyBand,
		DepthLevels: cfg.Engine.DepthLevels,
	})

	h := &handlers.Handler{
		Engines:          engines,
		Ledger:           book,
		Market:           market,
		Orders:           stores.orders,
		Events:           stores.events,
		Recorder:         rec,
		DefaultQuote:     cfg.Engine.DefaultQuote,
		DefaultPageSize:  cfg.API.DefaultPageSize,
		MaxPageSize:      cfg.API.MaxPageSize,
		RecentTradeLimit: cfg.API.RecentTradeLimit,
		MaxDepthLevels:   cfg.API.MaxDepthLevels,
		Version:          version,
		StartedAt:        time.Now().UTC(),
	}

	handler := routes.Setup(h, hub, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.L().Infow("Server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Errorw("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L().Infow("Server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.L().Errorw("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.L().Infow("Server exited successfully")
}

// storageLayers bundles the composite stores the server wires together
type storageLayers struct {
	orders   storage.OrderStore
	trades   storage.TradeStore
	balances storage.BalanceStore
	events   storage.EventStore
}

func (s *storageLayers) close() {
	for _, c := range []interface{ Close() error }{s.orders, s.trades, s.balances, s.events} {
		if c != nil {
			if err := c.Close(); err != nil {
				logger.L().Warnw("store close failed", "error", err)
			}
		}
	}
}

// buildStorageLayers constructs write-through store stacks: memory
// first for reads, then Redis, then PostgreSQL when enabled. Failures
// to reach an optional backend degrade the stack instead of aborting
// startup.
func buildStorageLayers(cfg *config.Config) *storageLayers {
	orderStores := []storage.OrderStore{memory.NewOrderStore(cfg.Memory.MaxOrders)}
	tradeStores := []storage.TradeStore{memory.NewTradeStore(cfg.Memory.MaxTrades)}
	balanceStores := []storage.BalanceStore{memory.NewBalanceStore()}
	eventStores := []storage.EventStore{memory.NewEventStore()}

	if cfg.Redis.Enabled {
		redisCfg := redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			OrderTTL:     cfg.Redis.OrderTTL,
			MaxTrades:    cfg.Redis.MaxTrades,
		}

		if orderStore, err := redis.NewOrderStore(redisCfg); err != nil {
			logger.L().Warnw("Redis unavailable, continuing without cache layer", "error", err)
		} else {
			orderStores = append(orderStores, orderStore)
			if tradeStore, err := redis.NewTradeStore(redisCfg); err == nil {
				tradeStores = append(tradeStores, tradeStore)
			}
			if balanceStore, err := redis.NewBalanceStore(redisCfg); err == nil {
				balanceStores = append(balanceStores, balanceStore)
			}
			logger.L().Infow("Redis cache connected", "host", cfg.Redis.Host, "port", cfg.Redis.Port)
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

		if orderStore, err := postgres.NewOrderStore(pgCfg); err != nil {
			logger.L().Warnw("PostgreSQL unavailable, continuing without persistent storage", "error", err)
		} else {
			orderStores = append(orderStores, orderStore)
			if tradeStore, err := postgres.NewTradeStore(pgCfg); err == nil {
				tradeStores = append(tradeStores, tradeStore)
			}
			if balanceStore, err := postgres.NewBalanceStore(pgCfg); err == nil {
				balanceStores = append(balanceStores, balanceStore)
			}
			if eventStore, err := postgres.NewEventStore(pgCfg); err == nil {
				eventStores = append(eventStores, eventStore)
			}
			logger.L().Infow("PostgreSQL connected",
				"host", cfg.Database.Host, "database", cfg.Database.Name)
		}
	}

	layers := &storageLayers{
		orders:   orderStores[0],
		trades:   tradeStores[0],
		balances: balanceStores[0],
		events:   eventStores[0],
	}
	if len(orderStores) > 1 {
		layers.orders = storage.NewCompositeOrderStore(orderStores...)
	}
	if len(tradeStores) > 1 {
		layers.trades = storage.NewCompositeTradeStore(tradeStores...)
	}
	if len(balanceStores) > 1 {
		layers.balances = storage.NewCompositeBalanceStore(balanceStores...)
	}
	if len(eventStores) > 1 {
		layers.events = storage.NewCompositeEventStore(eventStores...)
	}

	logger.L().Infow("Storage layers initialized",
		"order_layers", len(orderStores),
		"trade_layers", len(tradeStores),
		"balance_layers", len(balanceStores),
		"event_layers", len(eventStores),
	)
	return layers
}
