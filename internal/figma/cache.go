package figma

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/figmachat/figmachat-backend/internal/platform/logger"
)

const cacheKeyPrefix = "figmachat:figma:file:"

// CachedFetcher keeps raw Figma payloads in Redis keyed by file key.
// Cache failures fall through to the wrapped fetcher.
type CachedFetcher struct {
	next Fetcher
	rdb  *redis.Client
	ttl  time.Duration
	log  *logger.Logger
}

func NewCachedFetcher(next Fetcher, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedFetcher {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedFetcher{next: next, rdb: rdb, ttl: ttl, log: log.With("service", "FigmaCache")}
}

func (f *CachedFetcher) FetchFileData(ctx context.Context, fileURL string) (json.RawMessage, error) {
	key, ok := ExtractFileKey(fileURL)
	if !ok {
		return nil, ErrInvalidURL
	}
	cacheKey := cacheKeyPrefix + key

	cached, err := f.rdb.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		return json.RawMessage(cached), nil
	case !errors.Is(err, redis.Nil):
		f.log.For(ctx).Warn("figma cache read failed", "file_key", key, "error", err)
	}

	data, err := f.next.FetchFileData(ctx, fileURL)
	if err != nil {
		return nil, err
	}

	if err := f.rdb.Set(ctx, cacheKey, []byte(data), f.ttl).Err(); err != nil {
		f.log.For(ctx).Warn("figma cache write failed", "file_key", key, "error", err)
	}
	return data, nil
}
