package messaging

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/i474232898/weather-notify/internal/weather"
)

const testBroker = "localhost:9092"

func TestPublishDelivery(t *testing.T) {
	conn, err := net.DialTimeout("tcp", testBroker, 500*time.Millisecond)
	if err != nil {
		t.Skipf("kafka unavailable: %v", err)
	}
	conn.Close()

	p, err := NewProducer([]string{testBroker}, "weather-notify.test")
	if err != nil {
		t.Fatalf("NewProducer failed: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d := weather.Delivery{
		RunID:     "test-run",
		Mode:      weather.ModeNow,
		Message:   "贵阳市天气信息\n\n",
		Delivered: true,
		SentAt:    time.Now().UTC(),
	}
	if err := p.PublishDelivery(ctx, d); err != nil {
		t.Fatalf("PublishDelivery failed: %v", err)
	}
}

func TestPublishDeliveryHonoursDeadline(t *testing.T) {
	p, err := NewProducer([]string{"127.0.0.1:1"}, "weather-notify.test")
	if err != nil {
		t.Fatalf("NewProducer failed: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := p.PublishDelivery(ctx, weather.Delivery{RunID: "x"}); err == nil {
		t.Fatalf("expected an error for an unreachable broker")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("publish ignored the caller deadline, took %v", elapsed)
	}
}
