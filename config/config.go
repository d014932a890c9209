package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Cart      CartConfig
	FlashSale FlashSaleConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type CacheConfig struct {
	TTL time.Duration
}

type JWTConfig struct {
	Secret        string
	SessionExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// CartStorageDriver selects where hosted carts persist their line items.
type CartStorageDriver string

const (
	CartStorageRedis  CartStorageDriver = "redis"
	CartStorageFile   CartStorageDriver = "file"
	CartStorageMemory CartStorageDriver = "memory"
)

type CartConfig struct {
	StorageDriver  CartStorageDriver
	StorageKey     string
	StorageDir     string
	SessionTTL     time.Duration
	IdleTimeout    time.Duration
	PersistTimeout time.Duration
	EvictSchedule  string
}

type FlashSaleConfig struct {
	Timezone string
	Schedule string
	Limit    int
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "asthar"),
			Password: getEnv("DB_PASSWORD", "asthar"),
			DBName:   getEnv("DB_NAME", "asthar"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "true")),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Cache: CacheConfig{
			TTL: parseDuration(getEnv("CACHE_TTL", "5m"), 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "your-secret-key"),
			SessionExpiry: parseDuration(getEnv("JWT_SESSION_EXPIRY", "720h"), 30*24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Cart: CartConfig{
			StorageDriver:  CartStorageDriver(getEnv("CART_STORAGE_DRIVER", string(CartStorageRedis))),
			StorageKey:     getEnv("CART_STORAGE_KEY", "asthar-cart"),
			StorageDir:     getEnv("CART_STORAGE_DIR", "./data/carts"),
			SessionTTL:     parseDuration(getEnv("CART_SESSION_TTL", "720h"), 30*24*time.Hour),
			IdleTimeout:    parseDuration(getEnv("CART_IDLE_TIMEOUT", "30m"), 30*time.Minute),
			PersistTimeout: parseDuration(getEnv("CART_PERSIST_TIMEOUT", "2s"), 2*time.Second),
			EvictSchedule:  getEnv("CART_EVICT_SCHEDULE", "@every 5m"),
		},
		FlashSale: FlashSaleConfig{
			Timezone: getEnv("FLASH_SALE_TIMEZONE", "UTC"),
			Schedule: getEnv("FLASH_SALE_SCHEDULE", "0 0 * * *"),
			Limit:    parseInt(getEnv("FLASH_SALE_LIMIT", "8"), 8),
		},
		Metrics: MetricsConfig{
			Enabled: parseBool(getEnv("METRICS_ENABLED", "true")),
		},
	}

	switch config.Cart.StorageDriver {
	case CartStorageRedis, CartStorageFile, CartStorageMemory:
	default:
		return nil, fmt.Errorf("unsupported cart storage driver %q", config.Cart.StorageDriver)
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Location resolves the flash sale timezone, falling back to UTC.
func (c *FlashSaleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Invalid flash sale timezone %s, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return v
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return v
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
