// Package cache provides a short-TTL redis cache for availability snapshots.
// Misses and redis failures fall through to a fresh scan; the cache is never
// load-bearing.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer/service"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dialer:availability:"

// AvailabilityCache stores availability views in redis with a short TTL.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// New creates an availability cache.
func New(client *redis.Client, ttl time.Duration, log *logger.Logger) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl, logger: log}
}

// Get returns the cached view for a campaign, if present and decodable.
func (c *AvailabilityCache) Get(ctx context.Context, campaignKey string) (*service.AvailabilityView, bool) {
	payload, err := c.client.Get(ctx, keyPrefix+campaignKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.BestEffort("availability cache get", err)
		}
		return nil, false
	}

	var view service.AvailabilityView
	if err := json.Unmarshal(payload, &view); err != nil {
		c.logger.BestEffort("availability cache decode", err)
		return nil, false
	}

	return &view, true
}

// Set stores a view. Failures are logged and ignored.
func (c *AvailabilityCache) Set(ctx context.Context, campaignKey string, view *service.AvailabilityView) {
	payload, err := json.Marshal(view)
	if err != nil {
		c.logger.BestEffort("availability cache encode", err)
		return
	}

	if err := c.client.Set(ctx, keyPrefix+campaignKey, payload, c.ttl).Err(); err != nil {
		c.logger.BestEffort("availability cache set", err)
	}
}

var _ service.SnapshotCache = (*AvailabilityCache)(nil)
