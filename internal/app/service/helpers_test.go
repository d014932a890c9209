package service

import (
	"context"
	"path"
	"testing"
	"time"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/internal/app/repository"
	"github.com/asthar/asthar-backend/internal/cache"
	"github.com/asthar/asthar-backend/internal/db"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return testDB
}

func seedDefaultCatalog(t *testing.T, testDB *gorm.DB) {
	t.Helper()
	_, err := db.SeedCatalog(testDB, db.DefaultCatalog())
	require.NoError(t, err)
}

func findProduct(t *testing.T, testDB *gorm.DB, slug string) *model.Product {
	t.Helper()
	product, err := repository.NewProductRepository(testDB).FindBySlug(slug)
	require.NoError(t, err)
	return product
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// memoryRedis implements cache.Client over a map
type memoryRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func newTestCache(client *memoryRedis) *cache.Cache {
	return cache.New(client, 10*time.Minute, nil)
}

func (m *memoryRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	v, ok := m.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (m *memoryRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	switch v := value.(type) {
	case []byte:
		m.values[key] = string(v)
	case string:
		m.values[key] = v
	}
	m.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (m *memoryRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	var n int64
	for _, key := range keys {
		if _, ok := m.values[key]; ok {
			delete(m.values, key)
			delete(m.ttls, key)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (m *memoryRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	cmd := redis.NewScanCmd(ctx, nil, "scan")
	var keys []string
	for key := range m.values {
		if ok, _ := path.Match(match, key); ok {
			keys = append(keys, key)
		}
	}
	cmd.SetVal(keys, 0)
	return cmd
}
