package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/figmachat/figmachat-backend/internal/demos/domain"
)

const (
	TypeDemoCreated = "demo.created"
	channelPrefix   = "figmachat:demos:"
)

// Event is the payload published when a demo is stored.
type Event struct {
	Type      string    `json:"type"`
	ProjectID string    `json:"project_id"`
	ChatID    string    `json:"chat_id"`
	DemoID    string    `json:"demo_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Channel returns the pub/sub channel for a project's demo events.
func Channel(projectID string) string {
	return channelPrefix + projectID
}

// RedisPublisher fans demo events out over Redis pub/sub, one channel per project.
type RedisPublisher struct {
	rdb *goredis.Client
}

func NewRedisPublisher(rdb *goredis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) DemoCreated(ctx context.Context, d *domain.Demo) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis publisher not initialized")
	}
	raw, err := json.Marshal(Event{
		Type:      TypeDemoCreated,
		ProjectID: d.ProjectID,
		ChatID:    d.ChatID,
		DemoID:    d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	})
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, Channel(d.ProjectID), raw).Err()
}
