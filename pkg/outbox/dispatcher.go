package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/payment-status-service/pkg/tracing"
)

// ErrPermanent marks a dispatch failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent")

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Dispatcher struct {
	log      *slog.Logger
	producer Producer
	topic    string
	tracer   trace.Tracer
}

func NewDispatcher(log *slog.Logger, producer Producer, topic string) *Dispatcher {
	return &Dispatcher{log: log, producer: producer, topic: topic, tracer: otel.Tracer("payment-outbox")}
}

// Dispatch publishes event inside a producer span parented on the event's traceparent.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	parent := tracing.ExtractKafkaHeaders(ctx, []kafka.Header{{Key: tracing.TraceparentHeader, Value: []byte(event.Traceparent)}})
	ctx, span := d.tracer.Start(parent, "PublishOutboxEvent",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.Int64("outbox.event_id", event.ID),
			attribute.String("outbox.event_type", event.Type),
			attribute.Int("outbox.retry_count", event.RetryCount),
		),
	)
	defer span.End()

	msg := d.message(ctx, event)
	if err := d.producer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		d.log.Error("outbox dispatch failed", "event_id", event.ID, "err", err)
		return classify(err)
	}
	d.log.Info("outbox dispatched", "event_id", event.ID, "type", event.Type)
	return nil
}

func (d *Dispatcher) message(ctx context.Context, event Event) kafka.Message {
	headers := make([]kafka.Header, 0, len(event.Headers)+2)
	for k, v := range event.Headers {
		if k == tracing.TraceparentHeader {
			continue
		}
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	headers = append(headers, kafka.Header{Key: "event_type", Value: []byte(event.Type)})

	n := len(headers)
	headers = tracing.InjectKafkaHeaders(ctx, headers)
	if len(headers) == n && event.Traceparent != "" {
		// No propagator installed.
		headers = append(headers, kafka.Header{Key: tracing.TraceparentHeader, Value: []byte(event.Traceparent)})
	}

	return kafka.Message{
		Topic:   d.topic,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: headers,
	}
}

func classify(err error) error {
	var kerr kafka.Error
	if errors.As(err, &kerr) && !kerr.Temporary() {
		return fmt.Errorf("%w: %w", ErrPermanent, err)
	}
	return err
}
