package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asthar/asthar-backend/config"
	"github.com/asthar/asthar-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist"

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return nil
}

// GetClient returns the Redis client instance, nil before Init
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection")
		return client.Close()
	}
	return nil
}

type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// TokenBlacklist records revoked session tokens by their token id until they expire
type TokenBlacklist struct {
	store cmdable
}

func NewTokenBlacklist(store cmdable) *TokenBlacklist {
	return &TokenBlacklist{store: store}
}

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("%s:%s", blacklistPrefix, tokenID)
}

// Revoke adds a token to the blacklist for the rest of its lifetime
func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, expiry time.Duration) error {
	if expiry <= 0 {
		return nil
	}

	logger.Debug("Adding token to blacklist", map[string]interface{}{
		"expiry": expiry.String(),
	})

	if err := b.store.Set(ctx, blacklistKey(tokenID), "revoked", expiry).Err(); err != nil {
		logger.Error("Failed to blacklist token", err)
		return err
	}

	logger.Debug("Token successfully blacklisted")
	return nil
}

// IsRevoked checks if a token is in the blacklist
func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	val, err := b.store.Get(ctx, blacklistKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err)
		return false, err
	}

	return val == "revoked", nil
}
