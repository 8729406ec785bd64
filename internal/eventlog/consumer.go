package eventlog

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ledgerbridge/walletplatform/internal/adapters/http/middleware"
	"github.com/ledgerbridge/walletplatform/internal/domain"
	"github.com/ledgerbridge/walletplatform/internal/pkg/logger"
)

// projectionRetryDelay is the fixed back-off between failed projection
// attempts on the same message. A persistently failing message stalls
// its partition rather than being skipped — accepted behavior, given
// the History Store's idempotency guarantee.
const projectionRetryDelay = 5 * time.Second

// drainTimeout bounds how long Shutdown waits for an in-flight message
// to finish before giving up and returning anyway.
const drainTimeout = 30 * time.Second

// Projector is the Consumer's view of the history projector: one typed
// event in, applied transactionally, idempotently.
type Projector interface {
	Apply(ctx context.Context, event domain.Event) error
}

// Consumer is a single cooperative polling loop over one kafka-go
// Reader, with manual offset commit coupled to successful projection.
type Consumer struct {
	reader    *kafka.Reader
	projector Projector
	logger    *slog.Logger

	shutdown atomic.Bool
	done     chan struct{}
}

// NewConsumer constructs a Consumer reading topic as part of
// consumerGroup, offset-reset=earliest, auto-commit disabled (commits
// are issued explicitly by Run after a successful Apply). batchSize
// caps how many fetched messages the reader buffers ahead of Run.
func NewConsumer(brokerAddr, topic, consumerGroup string, batchSize int, projector Projector, logger *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{brokerAddr},
		Topic:          topic,
		GroupID:        consumerGroup,
		QueueCapacity:  batchSize,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: 0, // manual commit only
		MinBytes:       1,
		MaxBytes:       10e6,
	})
	return &Consumer{
		reader:    reader,
		projector: projector,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Run executes the poll loop until Shutdown is called or ctx is
// cancelled. It blocks the calling goroutine; callers run it in its
// own goroutine.
func (c *Consumer) Run(ctx context.Context) error {
	defer close(c.done)

	for {
		if c.shutdown.Load() {
			return nil
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			c.logger.ErrorContext(ctx, "event log fetch failed", slog.String("error", err.Error()))
			continue
		}

		event, decodeErr := Decode(msg.Value)
		if decodeErr != nil {
			// Poison message: commit the offset anyway so the
			// partition keeps moving.
			c.logger.ErrorContext(ctx, "poison event, committing and skipping",
				slog.Int64("offset", msg.Offset),
				slog.String("error", decodeErr.Error()),
			)
			middleware.ProjectionOutcomesTotal.WithLabelValues("unknown", "poison").Inc()
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.ErrorContext(ctx, "failed to commit poison message offset", slog.String("error", err.Error()))
			}
			continue
		}

		// The partition key is the wallet id by the keying contract,
		// so every log line for this message carries it.
		msgCtx := logger.WithWalletID(ctx, string(msg.Key))
		c.applyWithRetry(msgCtx, msg, event)
		c.recordLag()

		if c.shutdown.Load() {
			return nil
		}
	}
}

// applyWithRetry keeps retrying Apply on the same message, sleeping
// projectionRetryDelay between attempts, until it succeeds or the
// context is cancelled. The offset is only committed on success, so an
// interrupted attempt is redelivered.
func (c *Consumer) applyWithRetry(ctx context.Context, msg kafka.Message, event domain.Event) {
	for {
		err := c.projector.Apply(ctx, event)
		if err == nil {
			middleware.ProjectionOutcomesTotal.WithLabelValues(string(event.Kind()), "applied").Inc()
			if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
				c.logger.ErrorContext(ctx, "failed to commit offset after projection", slog.String("error", commitErr.Error()))
			}
			return
		}

		middleware.ProjectionOutcomesTotal.WithLabelValues(string(event.Kind()), "error").Inc()
		c.logger.ErrorContext(ctx, "projection failed, will retry",
			slog.String("event_type", string(event.Kind())),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(projectionRetryDelay):
		}
	}
}

// recordLag exports the reader's distance behind the partition's high
// watermark — the observable size of the eventual-consistency window
// between a wallet mutation and its history record.
func (c *Consumer) recordLag() {
	stats := c.reader.Stats()
	middleware.ConsumerLag.WithLabelValues(stats.Topic, stats.Partition).Set(float64(stats.Lag))
}

// Shutdown requests the loop stop after its current message and waits
// up to drainTimeout for it to do so.
func (c *Consumer) Shutdown(ctx context.Context) error {
	c.shutdown.Store(true)

	select {
	case <-c.done:
		return c.reader.Close()
	case <-time.After(drainTimeout):
		return c.reader.Close()
	case <-ctx.Done():
		return c.reader.Close()
	}
}
