package bootstrap

import (
	goredis "github.com/redis/go-redis/v9"

	"github.com/figmachat/figmachat-backend/config"
	"github.com/figmachat/figmachat-backend/internal/figma"
	"github.com/figmachat/figmachat-backend/internal/platform/logger"
)

// NewFigmaFetcher returns nil when no Figma credentials are configured.
// With Redis available, fetches go through the payload cache.
func NewFigmaFetcher(cfg config.FigmaConfig, rdb *goredis.Client, log *logger.Logger) figma.Fetcher {
	client := figma.NewClient(cfg)
	if client == nil {
		return nil
	}
	if rdb == nil {
		return client
	}
	return figma.NewCachedFetcher(client, rdb, cfg.CacheTTL, log)
}
