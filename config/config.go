package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Engine     EngineConfig
	API        APIConfig
	Logger     LoggerConfig
	Memory     MemoryConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	MarketData MarketDataConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// EngineConfig holds matching engine configuration
type EngineConfig struct {
	// DefaultQuote is the quote token assumed when a request names only
	// a base token
	DefaultQuote string

	// MarketBuyBand pads the best-ask estimate when reserving funds for
	// a market buy; 1.05 reserves 5% above the touch
	MarketBuyBand float64

	DepthLevels int
}

// APIConfig holds API-specific configuration
type APIConfig struct {
	DefaultPageSize  int
	MaxPageSize      int
	RecentTradeLimit int
	MaxDepthLevels   int
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level string // debug, info, warn, error
}

// MemoryConfig holds in-memory storage configuration
type MemoryConfig struct {
	MaxOrders int
	MaxTrades int
}

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SSLMode         string
}

// RedisConfig holds Redis cache configuration
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	OrderTTL     time.Duration
	MaxTrades    int
}

// KafkaConfig holds the trade feed configuration
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// MarketDataConfig holds dashboard market data configuration
type MarketDataConfig struct {
	TapeSize int
}

// Load loads configuration from .env file (if exists) and environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Engine: EngineConfig{
			DefaultQuote:  getEnv("ENGINE_DEFAULT_QUOTE", "usdt"),
			MarketBuyBand: getEnvFloat("ENGINE_MARKET_BUY_BAND", 1.05),
			DepthLevels:   getEnvInt("ENGINE_DEPTH_LEVELS", 20),
		},
		API: APIConfig{
			DefaultPageSize:  getEnvInt("DEFAULT_PAGE_SIZE", 10),
			MaxPageSize:      getEnvInt("MAX_PAGE_SIZE", 100),
			RecentTradeLimit: getEnvInt("RECENT_TRADE_LIMIT", 12),
			MaxDepthLevels:   getEnvInt("MAX_DEPTH_LEVELS", 50),
		},
		Logger: LoggerConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Memory: MemoryConfig{
			MaxOrders: getEnvInt("MEMORY_MAX_ORDERS", 100000),
			MaxTrades: getEnvInt("MEMORY_MAX_TRADES", 1000),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvBool("DATABASE_ENABLED", false),
			Host:            getEnv("DATABASE_HOST", "localhost"),
			Port:            getEnvInt("DATABASE_PORT", 5432),
			Name:            getEnv("DATABASE_NAME", "exchange"),
			User:            getEnv("DATABASE_USER", "postgres"),
			Password:        getEnv("DATABASE_PASSWORD", ""),
			MaxConns:        getEnvInt("DATABASE_MAX_CONNECTIONS", 20),
			MaxIdleConns:    getEnvInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime: getEnvDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			SSLMode:         getEnv("DATABASE_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:      getEnvBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			MaxRetries:   getEnvInt("REDIS_MAX_RETRIES", 3),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			OrderTTL:     getEnvDuration("REDIS_ORDER_TTL", 24*time.Hour),
			MaxTrades:    getEnvInt("REDIS_MAX_TRADES", 10000),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TRADE_TOPIC", "exchange.trades"),
		},
		MarketData: MarketDataConfig{
			TapeSize: getEnvInt("MARKETDATA_TAPE_SIZE", 12),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.Engine.DefaultQuote == "" {
		return fmt.Errorf("ENGINE_DEFAULT_QUOTE cannot be empty")
	}
	if c.Engine.MarketBuyBand < 1 {
		return fmt.Errorf("ENGINE_MARKET_BUY_BAND must be >= 1")
	}
	if c.Engine.DepthLevels < 1 {
		return fmt.Errorf("ENGINE_DEPTH_LEVELS must be > 0")
	}

	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be > 0")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("MAX_PAGE_SIZE must be >= DEFAULT_PAGE_SIZE")
	}
	if c.API.RecentTradeLimit < 1 {
		return fmt.Errorf("RECENT_TRADE_LIMIT must be > 0")
	}
	if c.API.MaxDepthLevels < c.Engine.DepthLevels {
		return fmt.Errorf("MAX_DEPTH_LEVELS must be >= ENGINE_DEPTH_LEVELS")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS cannot be empty when KAFKA_ENABLED")
	}

	return nil
}

// Helper functions to read environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
