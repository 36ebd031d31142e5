package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	salesHistoryKeyPrefix = "sales_history"
	salesScanBatchSize    = 100
)

// SalesHistoryCache stores per-product daily sales so repeated model
// training does not re-read the source.
type SalesHistoryCache interface {
	Get(ctx context.Context, source, productID string) ([]domain.SalesRecord, bool, error)
	Set(ctx context.Context, source, productID string, records []domain.SalesRecord) error
	InvalidateAll(ctx context.Context) error
}

type redisSalesHistoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSalesHistoryCache struct{}

func NewSalesHistoryCache(cfg config.CacheConfig) (SalesHistoryCache, error) {
	if !cfg.Enabled {
		return &noopSalesHistoryCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisSalesHistoryCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopSalesHistoryCache() SalesHistoryCache {
	return &noopSalesHistoryCache{}
}

func (c *redisSalesHistoryCache) Get(ctx context.Context, source, productID string) ([]domain.SalesRecord, bool, error) {
	payload, err := c.client.Get(ctx, buildSalesHistoryKey(source, productID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var records []domain.SalesRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, false, fmt.Errorf("decode sales history cache: %w", err)
	}
	return records, true, nil
}

func (c *redisSalesHistoryCache) Set(ctx context.Context, source, productID string, records []domain.SalesRecord) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode sales history cache: %w", err)
	}

	if err := c.client.Set(ctx, buildSalesHistoryKey(source, productID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisSalesHistoryCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, salesHistoryKeyPrefix, salesScanBatchSize)
}

func (n *noopSalesHistoryCache) Get(ctx context.Context, source, productID string) ([]domain.SalesRecord, bool, error) {
	return nil, false, nil
}

func (n *noopSalesHistoryCache) Set(ctx context.Context, source, productID string, records []domain.SalesRecord) error {
	return nil
}

func (n *noopSalesHistoryCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildSalesHistoryKey(source, productID string) string {
	return fmt.Sprintf("%s:%s", salesHistoryKeyPrefix, salesHistoryHash(source, productID))
}

func salesHistoryHash(source, productID string) string {
	raw := strings.ToLower(strings.TrimSpace(source)) + "|" + strings.ToUpper(strings.TrimSpace(productID))
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
