package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/relaypoint/mailguard/config"
	"github.com/relaypoint/mailguard/dto"
)

// MetricsCache keeps recent deliverability metrics snapshots for dashboard reads.
// A nil cache is a no-op, callers do not need to check whether redis is configured.
type MetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMetricsCache(cfg *config.RedisConfig) (*MetricsCache, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &MetricsCache{
		client: client,
		ttl:    time.Duration(cfg.CacheTTLSeconds) * time.Second,
	}, nil
}

func metricsKey(tenant string, windowDays int) string {
	return fmt.Sprintf("deliverability:metrics:%s:%d", tenant, windowDays)
}

func (c *MetricsCache) GetMetrics(ctx context.Context, tenant string, windowDays int) (*dto.DeliverabilityMetrics, bool) {
	if c == nil {
		return nil, false
	}

	payload, err := c.client.Get(ctx, metricsKey(tenant, windowDays)).Bytes()
	if err != nil {
		return nil, false
	}

	var metrics dto.DeliverabilityMetrics
	if err := json.Unmarshal(payload, &metrics); err != nil {
		return nil, false
	}

	return &metrics, true
}

func (c *MetricsCache) SetMetrics(ctx context.Context, metrics *dto.DeliverabilityMetrics) error {
	if c == nil || metrics == nil {
		return nil
	}

	payload, err := json.Marshal(metrics)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, metricsKey(metrics.Tenant, metrics.WindowDays), payload, c.ttl).Err()
}

func (c *MetricsCache) InvalidateMetrics(ctx context.Context, tenant string, windowDays int) {
	if c == nil {
		return
	}
	c.client.Del(ctx, metricsKey(tenant, windowDays))
}
