package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/payment-status-service/internal/payment/domain"
	"github.com/dmehra2102/payment-status-service/pkg/tracing"
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type CheckRecorder interface {
	RecordCheck(ctx context.Context, transactionID string, completed bool, headers map[string]string, traceparent string) (domain.Check, error)
}

type Deduplicator interface {
	Key(topic string, partition int, offset int64) string
	Seen(ctx context.Context, key string) (bool, error)
}

// TransactionStatusMessage is the value of a message on the input topic.
type TransactionStatusMessage struct {
	TransactionID string `json:"transaction_id"`
	Completed     bool   `json:"completed"`
}

type Consumer struct {
	log    *slog.Logger
	reader MessageReader
	svc    CheckRecorder
	idem   Deduplicator
	tracer trace.Tracer
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

func NewConsumer(log *slog.Logger, reader MessageReader, svc CheckRecorder, idem Deduplicator) *Consumer {
	return &Consumer{
		log:    log,
		reader: reader,
		svc:    svc,
		idem:   idem,
		tracer: otel.Tracer("payment-consumer"),
	}
}

// Run consumes until ctx is cancelled or the reader fails.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		c.handle(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	// Without the dedupe store the message is still recorded and committed;
	// a redelivery may then record a second check.
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		c.log.Error("idempotency check failed, processing without dedupe", "key", key, "err", err)
		seen = false
	}
	if seen {
		c.log.Info("duplicate message skipped", "key", key)
		c.commit(ctx, msg)
		return
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumeTransactionStatus")
	defer span.End()

	var ev TransactionStatusMessage
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		c.log.Error("unmarshal failed", "err", err)
		span.SetStatus(codes.Error, "unmarshal failed")
		c.commit(ctx, msg)
		return
	}
	span.SetAttributes(
		attribute.String("payment.transaction_id", ev.TransactionID),
		attribute.Bool("payment.completed", ev.Completed),
	)

	headers := map[string]string{"source": "payment-service"}
	traceparent := headerValue(msg.Headers, tracing.TraceparentHeader)
	if traceparent == "" {
		traceparent = tracing.Traceparent(msgCtx)
	}

	check, err := c.svc.RecordCheck(msgCtx, ev.TransactionID, ev.Completed, headers, traceparent)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record check failed")
		c.log.Error("completion check failed", "transaction_id", ev.TransactionID, "err", err)
	} else {
		c.log.Info("completion check recorded", "transaction_id", check.TransactionID, "status", check.Status)
	}
	c.commit(ctx, msg)
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.log.Error("commit failed", "offset", msg.Offset, "err", err)
	}
}

func headerValue(h []kafka.Header, key string) string {
	for _, hh := range h {
		if hh.Key == key {
			return string(hh.Value)
		}
	}
	return ""
}
