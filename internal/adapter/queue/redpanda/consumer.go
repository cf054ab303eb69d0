package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// quietPeriod is how long the drain waits without new records before it
// considers the topic exhausted.
const quietPeriod = 5 * time.Second

// fetchPoller is the subset of kgo.Client the drain loop uses.
type fetchPoller interface {
	PollFetches(ctx context.Context) kgo.Fetches
	Close()
}

// Consumer drains the postings topic for the offline index builder.
type Consumer struct {
	client fetchPoller
}

// NewConsumer constructs a Consumer reading the postings topic from the
// beginning as part of the given group.
func NewConsumer(brokers []string, group string) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("%w: no seed brokers provided", domain.ErrInvalidArgument)
	}
	tracer := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer()))
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(TopicPostings),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.WithHooks(tracer.Hooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.consumer: %w", err)
	}
	return &Consumer{client: client}, nil
}

// Drain reads postings until the topic goes quiet or max records have been
// consumed (max <= 0 means unbounded). Records that fail to decode are
// skipped with a warning.
func (c *Consumer) Drain(ctx context.Context, max int) ([]domain.JobPosting, error) {
	var postings []domain.JobPosting
	for {
		pollCtx, cancel := context.WithTimeout(ctx, quietPeriod)
		fetches := c.client.PollFetches(pollCtx)
		cancel()
		if fetches.IsClientClosed() {
			break
		}
		if err := ctx.Err(); err != nil {
			return postings, err
		}
		for _, fe := range fetches.Errors() {
			// A context error on the poll is the quiet-period timeout, not a
			// broker failure; the empty check below ends the loop.
			if errors.Is(fe.Err, context.DeadlineExceeded) || errors.Is(fe.Err, context.Canceled) {
				continue
			}
			return postings, fmt.Errorf("op=redpanda.drain: topic %s partition %d: %w", fe.Topic, fe.Partition, fe.Err)
		}

		empty := true
		fetches.EachRecord(func(rec *kgo.Record) {
			empty = false
			var posting domain.JobPosting
			if err := json.Unmarshal(rec.Value, &posting); err != nil {
				slog.Warn("skipping malformed posting record",
					slog.Int64("offset", rec.Offset), slog.Any("error", err))
				return
			}
			postings = append(postings, posting)
		})
		if empty {
			break
		}
		if max > 0 && len(postings) >= max {
			postings = postings[:max]
			break
		}
	}
	slog.Info("postings drained", slog.Int("count", len(postings)))
	return postings, nil
}

// Close shuts down the underlying client.
func (c *Consumer) Close() {
	c.client.Close()
}
