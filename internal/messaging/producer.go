// Package messaging publishes delivery records to Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/i474232898/weather-notify/internal/weather"
)

// Producer writes weather.Delivery records to a single topic.
type Producer struct {
	topic   string
	client  *kgo.Client
	timeout time.Duration
}

// NewProducer creates a Kafka producer for topic. The client connects lazily,
// so an unreachable broker surfaces on the first publish.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	log.Printf("INFO: kafka producer initialized for topic %s", topic)
	return &Producer{topic: topic, client: client, timeout: 10 * time.Second}, nil
}

// Close releases the client.
func (p *Producer) Close() {
	p.client.Close()
}

// PublishDelivery writes d keyed by its run id.
func (p *Producer) PublishDelivery(ctx context.Context, d weather.Delivery) error {
	value, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal delivery: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(d.RunID),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	log.Printf("DEBUG: published delivery %s to %s", d.RunID, p.topic)
	return nil
}
