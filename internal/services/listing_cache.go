package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"ticket-exchange/models"

	"github.com/redis/go-redis/v9"
)

const listingCacheKey = "listing:resale"

// ListingCache keeps the public resale listing in Redis so the browse
// endpoint does not hit the store on every request. Every mutating engine
// invalidates it; a cold or unreachable cache is just a miss.
type ListingCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewListingCache(redisClient *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{Redis: redisClient, TTL: ttl}
}

func (c *ListingCache) Get(ctx context.Context) ([]*models.Ticket, bool) {
	if c == nil || c.Redis == nil {
		return nil, false
	}

	raw, err := c.Redis.Get(ctx, listingCacheKey).Result()
	if err != nil {
		return nil, false
	}

	var tickets []*models.Ticket
	if err := json.Unmarshal([]byte(raw), &tickets); err != nil {
		slog.Warn("listing cache: dropping unreadable entry", "error", err)
		c.Redis.Del(ctx, listingCacheKey)
		return nil, false
	}
	return tickets, true
}

func (c *ListingCache) Set(ctx context.Context, tickets []*models.Ticket) {
	if c == nil || c.Redis == nil {
		return
	}

	raw, err := json.Marshal(tickets)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, listingCacheKey, raw, c.TTL).Err(); err != nil {
		slog.Warn("listing cache: set failed", "error", err)
	}
}

func (c *ListingCache) Invalidate(ctx context.Context) {
	if c == nil || c.Redis == nil {
		return
	}
	if err := c.Redis.Del(ctx, listingCacheKey).Err(); err != nil {
		slog.Warn("listing cache: invalidate failed", "error", err)
	}
}
