// Package redpanda moves scraped market postings through a Redpanda/Kafka
// topic, decoupling the scraper from the index builder.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// TopicPostings is the Kafka topic carrying scraped job postings.
const TopicPostings = "market-postings"

// Producer publishes job postings.
type Producer struct {
	client *kgo.Client
}

// NewProducer constructs a Producer and ensures the postings topic exists.
func NewProducer(brokers []string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("%w: no seed brokers provided", domain.ErrInvalidArgument)
	}
	tracer := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer()))
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequestRetries(10),
		kgo.WithHooks(tracer.Hooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.producer: %w", err)
	}
	if err := createTopicIfNotExists(context.Background(), client, TopicPostings, 1, 1); err != nil {
		slog.Warn("topic creation failed, it may already exist",
			slog.String("topic", TopicPostings), slog.Any("error", err))
	}
	return &Producer{client: client}, nil
}

// Publish writes one posting per record, keyed by skill so postings for the
// same query stay ordered.
func (p *Producer) Publish(ctx context.Context, postings []domain.JobPosting) error {
	for _, posting := range postings {
		b, err := json.Marshal(posting)
		if err != nil {
			return fmt.Errorf("op=redpanda.publish.marshal: %w", err)
		}
		rec := &kgo.Record{Topic: TopicPostings, Key: []byte(posting.Skill), Value: b}
		if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
			return fmt.Errorf("op=redpanda.publish: %w", err)
		}
	}
	slog.Info("postings published", slog.Int("count", len(postings)), slog.String("topic", TopicPostings))
	return nil
}

// Close flushes and closes the underlying client.
func (p *Producer) Close() {
	p.client.Close()
}
