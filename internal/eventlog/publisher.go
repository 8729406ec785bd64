package eventlog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ledgerbridge/walletplatform/internal/domain"
)

// maxDialAttempts and the 2^attempt second backoff between them bound
// the Publisher's startup connectivity check: a broker that never
// comes up aborts the owning service's boot instead of silently
// accepting writes that would queue forever.
const maxDialAttempts = 5

// Publisher is a thin kafka-go Writer wrapper that knows only how to
// put one already-encoded event onto one partition key. The wallet
// engine decides how many times and under which keys a given domain
// event is published; Publisher itself is partition-key-agnostic.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher dials brokerAddr up to maxDialAttempts times with
// exponential backoff before returning, so a service fails fast at
// startup rather than accepting funding/transfer traffic it cannot
// eventually publish.
func NewPublisher(ctx context.Context, brokerAddr, topic string, logger *slog.Logger) (*Publisher, error) {
	var lastErr error
	for attempt := 1; attempt <= maxDialAttempts; attempt++ {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		conn, err := kafka.DialContext(dialCtx, "tcp", brokerAddr)
		cancel()
		if err == nil {
			conn.Close()
			lastErr = nil
			break
		}
		lastErr = err
		logger.Warn("event log broker unreachable, retrying",
			slog.Int("attempt", attempt),
			slog.String("broker_address", brokerAddr),
			slog.String("error", err.Error()),
		)
		if attempt < maxDialAttempts {
			time.Sleep(time.Duration(1<<attempt) * time.Second)
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("event log broker %s unreachable after %d attempts: %w", brokerAddr, maxDialAttempts, lastErr)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerAddr),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}

	return &Publisher{writer: writer, logger: logger}, nil
}

// Publish writes one event keyed by key, the partition key that
// guarantees per-wallet ordering. It implements walletengine.Publisher.
func (p *Publisher) Publish(ctx context.Context, key string, event domain.Event) error {
	payload, err := Encode(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.Kind(), err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to partition key %s: %w", event.Kind(), key, err)
	}
	return nil
}

// Close flushes and closes the underlying writer. Called once at
// service shutdown.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
