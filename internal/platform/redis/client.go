package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"userhub/internal/platform/config"
)

var (
	redisPoolHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "userhub_redis_pool_hits_total",
		Help: "Number of times a connection was found in the pool",
	})
	redisPoolMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "userhub_redis_pool_misses_total",
		Help: "Number of times a connection was not found in the pool",
	})
	redisPoolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "userhub_redis_pool_total_conns",
		Help: "Number of total connections in the pool",
	})
	redisPoolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "userhub_redis_pool_idle_conns",
		Help: "Number of idle connections in the pool",
	})
)

// Client wraps the go-redis client with pool stat reporting.
type Client struct {
	*redis.Client
	lastStats *redis.PoolStats
}

// New creates a Redis client from the provided configuration.
// Returns nil if the URL is empty (Redis not configured).
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	return &Client{Client: redis.NewClient(opts)}, nil
}

// counterDelta computes the increase between two cumulative counter samples.
// A sample below the previous one means the pool was reset; the unsigned
// subtraction would wrap, so that sample contributes nothing.
func counterDelta(current, last uint32) float64 {
	if current < last {
		return 0
	}
	return float64(current - last)
}

// ReportPoolStats publishes pool gauges until the context is cancelled.
func (c *Client) ReportPoolStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := c.PoolStats()
			// Counters are cumulative in go-redis; publish deltas.
			if c.lastStats == nil {
				redisPoolHits.Add(float64(stats.Hits))
				redisPoolMisses.Add(float64(stats.Misses))
			} else {
				redisPoolHits.Add(counterDelta(stats.Hits, c.lastStats.Hits))
				redisPoolMisses.Add(counterDelta(stats.Misses, c.lastStats.Misses))
			}
			c.lastStats = stats
			redisPoolTotalConns.Set(float64(stats.TotalConns))
			redisPoolIdleConns.Set(float64(stats.IdleConns))
		}
	}
}
