// Package telemetry fans every outbound message (result, hashrate, error)
// out to a Redis pub/sub channel for an external dashboard. It is strictly publish-only:
// nothing in this package is ever read back by the engine or the bridge,
// so it never reintroduces cross-restart persistence.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/tos-network/cn-worker-core/internal/config"
	"github.com/tos-network/cn-worker-core/internal/util"
)

// Event is the JSON payload published for every outbound message.
type Event struct {
	Name   string            `json:"name"`
	Values map[string]string `json:"values"`
	AtUnix int64             `json:"at_unix_ms"`
}

// Publisher publishes Events to a Redis channel, best-effort: a publish
// failure is logged and swallowed, never surfaced to the mining engine.
type Publisher struct {
	client  *redis.Client
	channel string
	timeout time.Duration
}

// NewPublisher connects to Redis and returns a Publisher, or nil if
// telemetry is disabled in cfg.
func NewPublisher(cfg *config.TelemetryConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("telemetry: redis connection failed: %w", err)
	}

	util.Infof("telemetry: connected to Redis at %s, publishing on %q", cfg.RedisURL, cfg.Channel)
	return &Publisher{client: client, channel: cfg.Channel, timeout: cfg.Timeout}, nil
}

// Publish sends one event. Safe to call from the bridge's onData callback.
func (p *Publisher) Publish(name string, values map[string]string) {
	if p == nil {
		return
	}

	payload, err := json.Marshal(Event{Name: name, Values: values, AtUnix: time.Now().UnixMilli()})
	if err != nil {
		util.Errorf("telemetry: marshal failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		util.Errorf("telemetry: publish failed: %v", err)
	}
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.client.Close()
}
