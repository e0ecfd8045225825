// Package fanout carries real-time events between instances over Redis
// pub/sub. Each instance publishes to Redis and relays what it receives
// into its own websocket hub.
package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"MarketChat/internal/config"
	"MarketChat/internal/lib/sl"

	"github.com/redis/go-redis/v9"
)

// Publisher delivers a serialized event to a party channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NewRedisClient returns nil, nil when redis is disabled in the config.
func NewRedisClient(ctx context.Context, conf *config.Config) (*redis.Client, error) {
	if !conf.Redis.Enabled {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

type RedisPublisher struct {
	client *redis.Client
	prefix string
}

func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := p.client.Publish(ctx, p.prefix+channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", channel, err)
	}
	return nil
}

// Relay forwards every party event seen on Redis to the local publisher.
type Relay struct {
	client *redis.Client
	prefix string
	local  Publisher
	log    *slog.Logger
}

func NewRelay(client *redis.Client, prefix string, local Publisher, log *slog.Logger) *Relay {
	return &Relay{
		client: client,
		prefix: prefix,
		local:  local,
		log:    log.With(sl.Module("fanout.relay")),
	}
}

func subscribePatterns(prefix string) []string {
	return []string{prefix + "user_*", prefix + "business_*"}
}

func localChannel(prefix, channel string) (string, bool) {
	if !strings.HasPrefix(channel, prefix) {
		return "", false
	}
	return strings.TrimPrefix(channel, prefix), true
}

// Run blocks until ctx is done or the subscription fails.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.PSubscribe(ctx, subscribePatterns(r.prefix)...)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	r.log.Info("relay subscribed", slog.Any("patterns", subscribePatterns(r.prefix)))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			channel, ok := localChannel(r.prefix, msg.Channel)
			if !ok {
				continue
			}
			if err := r.local.Publish(ctx, channel, []byte(msg.Payload)); err != nil {
				r.log.Warn("relay delivery dropped", slog.String("channel", channel), sl.Err(err))
			}
		}
	}
}
