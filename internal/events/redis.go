package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel carries every auction event; consumers filter by payload type.
const Channel = "auction.events"

const publishTimeout = 300 * time.Millisecond

// NewRedis opens a redis client for the event bus.
func NewRedis(addr, user, password string) (*redis.Client, func() error, error) {
	if !strings.Contains(addr, ":") {
		addr = addr + ":6379"
	}

	r := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: user,
		Password: password,
	})

	return r, r.Close, nil
}

// RedisPublisher publishes events as JSON on a redis pub/sub channel.
type RedisPublisher struct {
	Redis *redis.Client
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("can't marshal event: %w", err)
	}

	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.Redis.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("can't publish event: %w", err)
	}
	return nil
}
