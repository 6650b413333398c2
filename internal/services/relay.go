package services

import (
	"context"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/groupchat/groupchat/pkg/logger"
)

const relayChannel = "groupchat:changes"

// RedisRelay shares table-change notifications between server replicas.
// Notify publishes to redis; Run forwards everything published (including this
// replica's own writes) to the local hub.
type RedisRelay struct {
	client *redis.Client
	hub    *Hub
}

func NewRedisRelay(redisURL string, hub *Hub) (*RedisRelay, error) {
	var opts *redis.Options
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: redisURL}
	}

	return &RedisRelay{client: redis.NewClient(opts), hub: hub}, nil
}

func (r *RedisRelay) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRelay) Notify(ctx context.Context, tables ...string) {
	for _, table := range tables {
		if err := r.client.Publish(ctx, relayChannel, table).Err(); err != nil {
			logger.Error("live_relay_publish_failed", err, map[string]interface{}{
				"table": table,
			})
			r.hub.Broadcast(table)
		}
	}
}

func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, relayChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	logger.Info("live_relay_subscribed", map[string]interface{}{
		"channel": relayChannel,
	})

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.hub.Broadcast(msg.Payload)
		case <-ctx.Done():
			return nil
		}
	}
}

func (r *RedisRelay) Close() error {
	return r.client.Close()
}
