package fx

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores resolved exchange rates in Redis for a short TTL so the batch
// processor does not hit the rates table once per schedule entry.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func rateKey(currencyID, companyID int64) string {
	return fmt.Sprintf("fx:rate:%d:%d", companyID, currencyID)
}

// Get returns the cached rate and whether it was present.
func (c *Cache) Get(ctx context.Context, currencyID, companyID int64) (float64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	raw, err := c.client.Get(ctx, rateKey(currencyID, companyID)).Result()
	if err != nil {
		return 0, false
	}
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return rate, true
}

// Set stores a resolved rate. Failures are ignored; the cache is advisory.
func (c *Cache) Set(ctx context.Context, currencyID, companyID int64, rate float64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, rateKey(currencyID, companyID), strconv.FormatFloat(rate, 'f', -1, 64), c.ttl).Err()
}

// Invalidate drops the cached rate after a rate row changes.
func (c *Cache) Invalidate(ctx context.Context, currencyID, companyID int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, rateKey(currencyID, companyID)).Err()
}
