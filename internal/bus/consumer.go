package bus

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/vantage-platform/vantage/internal/model"
)

// ConsumerOption configures a Consumer.
type ConsumerOption func(*consumerConfig)

type consumerConfig struct {
	brokers  []string
	topic    string
	groupID  string
	minBytes int
	maxBytes int
}

func WithConsumerBrokers(brokers ...string) ConsumerOption {
	return func(c *consumerConfig) { c.brokers = brokers }
}

func WithConsumerTopic(topic string) ConsumerOption {
	return func(c *consumerConfig) { c.topic = topic }
}

func WithGroupID(groupID string) ConsumerOption {
	return func(c *consumerConfig) { c.groupID = groupID }
}

// Record is a single polled bus record, decoded if possible. DecodeErr
// is set (and Metric left zero) when the payload failed deserialization
// -- the caller routes those straight to the DLQ with RawValue intact.
type Record struct {
	Metric    model.Metric
	RawValue  []byte
	DecodeErr error

	kafkaMsg kafkago.Message
}

// Consumer polls the metrics topic in a durable consumer group,
// adapted from pkg/messaging/kafka/new_consumer.go's reader wiring but
// exposing an explicit batch Poll instead of a push-based handler
// dispatch, so C7 controls commit timing.
type Consumer struct {
	cfg    consumerConfig
	reader *kafkago.Reader
}

func NewConsumer(opts ...ConsumerOption) (*Consumer, error) {
	cfg := consumerConfig{minBytes: 10e3, maxBytes: 10e6}
	for _, opt := range opts {
		opt(&cfg)
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.brokers,
		GroupID:        cfg.groupID,
		Topic:          cfg.topic,
		MinBytes:       cfg.minBytes,
		MaxBytes:       cfg.maxBytes,
		CommitInterval: 0, // explicit commits only, driven by writer acknowledgement
	})

	return &Consumer{cfg: cfg, reader: reader}, nil
}

// Poll fetches up to maxRecords records, with one timeout covering the
// whole call. It returns once maxRecords have arrived, the timeout
// expires or a fetch fails, with the records gathered so far.
func (c *Consumer) Poll(ctx context.Context, timeout time.Duration, maxRecords int) ([]Record, error) {
	deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var records []Record
	for len(records) < maxRecords {
		msg, err := c.reader.FetchMessage(deadlineCtx)
		if err != nil {
			if len(records) > 0 {
				return records, nil
			}
			return nil, err
		}

		rec := Record{RawValue: msg.Value, kafkaMsg: msg}
		metric, decodeErr := Decode(msg.Value)
		if decodeErr != nil {
			rec.DecodeErr = decodeErr
		} else {
			rec.Metric = metric
		}
		records = append(records, rec)
	}

	return records, nil
}

// Commit advances the consumer group's offsets past the given records.
// Called only after C7 has durably persisted them, giving at-least-once
// delivery: an uncommitted batch is redelivered after a restart.
func (c *Consumer) Commit(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i, r := range records {
		msgs[i] = r.kafkaMsg
	}
	return c.reader.CommitMessages(ctx, msgs...)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
