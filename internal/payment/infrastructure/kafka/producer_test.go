package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"github.com/dmehra2102/payment-status-service/pkg/outbox"
)

var _ outbox.Producer = (*Writer)(nil)

func TestNewWriter(t *testing.T) {
	t.Parallel()

	w := NewWriter([]string{"kafka-1:9092"})

	assert.Equal(t, "kafka-1:9092", w.Addr.String())
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.IsType(t, &kafka.LeastBytes{}, w.Balancer)
}
