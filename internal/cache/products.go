package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shopsmart/backend/internal/models"
)

const productTTL = 5 * time.Minute

// ProductCache is a read-through cache over the product catalog. All
// methods are no-ops when the client is nil, so the cache stays optional.
type ProductCache struct {
	RDB *redis.Client
}

func New(addr string) *ProductCache {
	if addr == "" {
		return &ProductCache{}
	}
	return &ProductCache{RDB: redis.NewClient(&redis.Options{Addr: addr})}
}

func productKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *ProductCache) Get(ctx context.Context, id uint) (*models.Product, bool) {
	if c == nil || c.RDB == nil {
		return nil, false
	}
	raw, err := c.RDB.Get(ctx, productKey(id)).Result()
	if err != nil {
		return nil, false
	}
	var p models.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *ProductCache) Set(ctx context.Context, p *models.Product) {
	if c == nil || c.RDB == nil || p == nil {
		return
	}
	if data, err := json.Marshal(p); err == nil {
		c.RDB.Set(ctx, productKey(p.ID), data, productTTL)
	}
}

func (c *ProductCache) Invalidate(ctx context.Context, id uint) {
	if c == nil || c.RDB == nil {
		return
	}
	c.RDB.Del(ctx, productKey(id))
}

func (c *ProductCache) Close() error {
	if c == nil || c.RDB == nil {
		return nil
	}
	return c.RDB.Close()
}
