package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/tos-network/cn-worker-core/internal/config"
)

func setupTestPublisher(t *testing.T) (*Publisher, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	p, err := NewPublisher(&config.TelemetryConfig{
		Enabled:  true,
		RedisURL: mr.Addr(),
		Channel:  "test:telemetry",
		Timeout:  2 * time.Second,
	})
	if err != nil {
		mr.Close()
		t.Fatalf("NewPublisher() error = %v", err)
	}
	return p, mr
}

func TestDisabledPublisherIsNil(t *testing.T) {
	p, err := NewPublisher(&config.TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil Publisher when telemetry is disabled")
	}
	// Publish on a nil Publisher must be a safe no-op.
	p.Publish("result", map[string]string{"nonce": "1"})
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	p, mr := setupTestPublisher(t)
	defer mr.Close()
	defer p.Close()

	sub := p.client.Subscribe(context.Background(), "test:telemetry")
	defer sub.Close()

	// Drain the subscribe confirmation before publishing.
	if _, err := sub.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	p.Publish("hashrate", map[string]string{"hashrate": "123.45"})

	msg, err := sub.ReceiveMessage(context.Background())
	if err != nil {
		t.Fatalf("did not receive published message: %v", err)
	}
	if len(msg.Payload) == 0 {
		t.Fatal("expected a non-empty payload")
	}
}
