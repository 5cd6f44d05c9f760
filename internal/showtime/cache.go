package showtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedSource is a read-through Redis cache in front of another Source.
// Redis failures are logged and fall through to the wrapped source.
type CachedSource struct {
	next   Source
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	log    *zap.Logger
}

// NewCachedSource wraps next. With a nil client it returns a cache that
// always misses. A non-positive ttl defaults to 10 seconds.
func NewCachedSource(next Source, rdb *redis.Client, prefix string, ttl time.Duration, log *zap.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if prefix == "" {
		prefix = "showtime"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedSource{next: next, rdb: rdb, ttl: ttl, prefix: prefix, log: log}
}

func (c *CachedSource) key(id uint64) string {
	return fmt.Sprintf("%s:%d:detail", c.prefix, id)
}

// FetchDetail serves from cache when possible.
func (c *CachedSource) FetchDetail(ctx context.Context, showtimeID uint64) (*DetailDTO, error) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, c.key(showtimeID)).Bytes()
		switch {
		case err == nil:
			var dto DetailDTO
			if jerr := json.Unmarshal(raw, &dto); jerr == nil {
				return &dto, nil
			}
			c.log.Warn("discarding undecodable cached showtime", zap.Uint64("showtime_id", showtimeID))
		case !errors.Is(err, redis.Nil):
			c.log.Warn("showtime cache read failed", zap.Uint64("showtime_id", showtimeID), zap.Error(err))
		}
	}

	dto, err := c.next.FetchDetail(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	if c.rdb != nil {
		if raw, jerr := json.Marshal(dto); jerr == nil {
			if serr := c.rdb.Set(ctx, c.key(showtimeID), raw, c.ttl).Err(); serr != nil {
				c.log.Warn("showtime cache write failed", zap.Uint64("showtime_id", showtimeID), zap.Error(serr))
			}
		}
	}
	return dto, nil
}

// Invalidate drops the cached detail, e.g. after a booking changed the booked set.
func (c *CachedSource) Invalidate(ctx context.Context, showtimeID uint64) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.key(showtimeID)).Err()
}
