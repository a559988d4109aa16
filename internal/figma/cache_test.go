package figma

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figmachat/figmachat-backend/internal/platform/logger"
)

type countingFetcher struct {
	calls int
	data  json.RawMessage
	err   error
}

func (f *countingFetcher) FetchFileData(context.Context, string) (json.RawMessage, error) {
	f.calls++
	return f.data, f.err
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())
	return client, mr
}

func TestCachedFetcher(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	link := "https://www.figma.com/design/Cache1/file"

	t.Run("second fetch is served from redis", func(t *testing.T) {
		inner := &countingFetcher{data: json.RawMessage(`{"name":"cached"}`)}
		f := NewCachedFetcher(inner, client, time.Minute, logger.Nop())

		first, err := f.FetchFileData(ctx, link)
		require.NoError(t, err)
		second, err := f.FetchFileData(ctx, link)
		require.NoError(t, err)

		assert.Equal(t, 1, inner.calls)
		assert.JSONEq(t, string(first), string(second))
		assert.True(t, mr.Exists(cacheKeyPrefix+"Cache1"))
	})

	t.Run("entries expire", func(t *testing.T) {
		inner := &countingFetcher{data: json.RawMessage(`{"v":1}`)}
		f := NewCachedFetcher(inner, client, time.Minute, logger.Nop())
		link := "https://www.figma.com/file/Expire1/x"

		_, err := f.FetchFileData(ctx, link)
		require.NoError(t, err)
		mr.FastForward(2 * time.Minute)
		_, err = f.FetchFileData(ctx, link)
		require.NoError(t, err)

		assert.Equal(t, 2, inner.calls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		inner := &countingFetcher{err: errors.New("403")}
		f := NewCachedFetcher(inner, client, time.Minute, logger.Nop())

		_, err := f.FetchFileData(ctx, "https://www.figma.com/file/Err1/x")
		assert.Error(t, err)
		assert.False(t, mr.Exists(cacheKeyPrefix+"Err1"))
	})

	t.Run("redis outage falls through", func(t *testing.T) {
		broken := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		defer broken.Close()

		inner := &countingFetcher{data: json.RawMessage(`{"ok":true}`)}
		f := NewCachedFetcher(inner, broken, time.Minute, logger.Nop())

		data, err := f.FetchFileData(ctx, link)
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(data))
	})
}
