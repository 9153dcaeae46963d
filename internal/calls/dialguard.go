package calls

import (
	"context"
	"time"

	"carecall-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RedisDialGuard implements DialGuard on the shared Redis counter scripts.
// One concurrent dial per destination; the TTL bounds how long a crashed
// process can hold a slot.
type RedisDialGuard struct {
	rdb   *redis.Client
	limit int
	ttl   time.Duration
}

func NewRedisDialGuard(rdb *redis.Client) *RedisDialGuard {
	return &RedisDialGuard{rdb: rdb, limit: 1, ttl: 2 * time.Minute}
}

func (g *RedisDialGuard) Acquire(ctx context.Context, key string) (bool, error) {
	return utils.AcquireDialGuard(ctx, g.rdb, key, g.limit, g.ttl)
}

func (g *RedisDialGuard) Release(ctx context.Context, key string) error {
	return utils.ReleaseDialGuard(ctx, g.rdb, key)
}
