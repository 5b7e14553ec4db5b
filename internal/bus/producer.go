package bus

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/vantage-platform/vantage/internal/model"
	"github.com/vantage-platform/vantage/pkg/observability"
)

const maxBatchBytes = 1 << 20 // 1 MB batch byte cap, per §4.1

// ProducerOption configures a Producer.
type ProducerOption func(*producerConfig)

type producerConfig struct {
	brokers       []string
	topic         string
	linger        time.Duration
	maxRetries    int
	retryBackoff  time.Duration
	maxBackoff    time.Duration
	compression   kafkago.Compression
	requiredAcks  kafkago.RequiredAcks
	writeTimeout  time.Duration
	logger        observability.Logger
}

func WithBrokers(brokers ...string) ProducerOption {
	return func(c *producerConfig) { c.brokers = brokers }
}

func WithTopic(topic string) ProducerOption {
	return func(c *producerConfig) { c.topic = topic }
}

func WithLinger(d time.Duration) ProducerOption {
	return func(c *producerConfig) {
		if d > 0 {
			c.linger = d
		}
	}
}

func WithMaxRetries(n int) ProducerOption {
	return func(c *producerConfig) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

func WithCompressionEnabled(enabled bool) ProducerOption {
	return func(c *producerConfig) {
		if enabled {
			c.compression = kafkago.Snappy
		} else {
			c.compression = 0
		}
	}
}

func WithProducerLogger(logger observability.Logger) ProducerOption {
	return func(c *producerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Future is returned by Produce; it resolves once the log-bus has
// accepted (or definitively rejected) the record.
type Future struct {
	done chan error
}

// NewResolvedFuture returns a Future that is already resolved with err,
// for fakes standing in for Producer in tests.
func NewResolvedFuture(err error) *Future {
	f := &Future{done: make(chan error, 1)}
	f.done <- err
	return f
}

// Wait blocks until the produce completes or ctx is cancelled.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case err := <-f.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Producer publishes metric records to the partitioned log-bus, keyed
// by service_name so a single producer preserves FIFO order per
// service. Adapted from pkg/messaging/kafka/new_producer.go's
// functional-option config + atomic.Bool closed-flag shape.
type Producer struct {
	cfg    producerConfig
	writer *kafkago.Writer
	closed atomic.Bool
}

func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := producerConfig{
		linger:       10 * time.Millisecond,
		maxRetries:   3,
		retryBackoff: 100 * time.Millisecond,
		maxBackoff:   2 * time.Second,
		compression:  kafkago.Snappy,
		requiredAcks: kafkago.RequireOne,
		writeTimeout: 10 * time.Second,
		logger:       discardLogger{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.topic == "" {
		return nil, fmt.Errorf("bus: producer topic must not be empty")
	}

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.brokers...),
		Topic:        cfg.topic,
		Balancer:     &kafkago.Hash{}, // keyed by service_name -> stable partition per service
		BatchTimeout: cfg.linger,
		BatchBytes:   maxBatchBytes,
		Compression:  cfg.compression,
		RequiredAcks: cfg.requiredAcks,
		WriteTimeout: cfg.writeTimeout,
		Async:        false,
	}

	return &Producer{cfg: cfg, writer: writer}, nil
}

// Produce publishes a single metric keyed by partitionKey (the batch's
// service_name) and returns a Future resolving on bus acceptance.
func (p *Producer) Produce(ctx context.Context, m model.Metric, partitionKey string) *Future {
	future := &Future{done: make(chan error, 1)}

	if p.closed.Load() {
		future.done <- ErrProducerClosed
		return future
	}

	payload, err := Encode(m)
	if err != nil {
		future.done <- err
		return future
	}
	if len(payload) > maxBatchBytes {
		future.done <- ErrPayloadTooLarge
		return future
	}

	msg := kafkago.Message{
		Key:   []byte(partitionKey),
		Value: payload,
		Time:  time.Now(),
	}

	go func() {
		future.done <- p.writeWithRetry(ctx, msg)
	}()

	return future
}

func (p *Producer) writeWithRetry(ctx context.Context, msg kafkago.Message) error {
	var lastErr error
	backoff := p.cfg.retryBackoff

	for attempt := 0; attempt <= p.cfg.maxRetries; attempt++ {
		if attempt > 0 {
			if err := p.sleep(ctx, backoff); err != nil {
				return err
			}
			backoff *= 2
			if backoff > p.cfg.maxBackoff {
				backoff = p.cfg.maxBackoff
			}
		}

		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			lastErr = err
			p.cfg.logger.Warn(ctx, "produce attempt failed",
				observability.Int("attempt", attempt),
				observability.Error(err),
			)
			continue
		}
		return nil
	}

	return fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

func (p *Producer) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Flush drains in-flight records; subsequent Produce calls fail. It is
// safe to call multiple times.
func (p *Producer) Flush() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}

// Connected reports whether Flush has not yet been called. It does not
// probe the brokers, and no readiness check in this module calls it.
func (p *Producer) Connected(ctx context.Context) bool {
	return !p.closed.Load()
}

type discardLogger struct{}

func (discardLogger) Debug(context.Context, string, ...observability.Field) {}
func (discardLogger) Info(context.Context, string, ...observability.Field)  {}
func (discardLogger) Warn(context.Context, string, ...observability.Field)  {}
func (discardLogger) Error(context.Context, string, ...observability.Field) {}
func (d discardLogger) With(...observability.Field) observability.Logger    { return d }
