package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"PG_URL", "KAFKA_ADDR", "REDIS_ADDR", "OTEL_COLLECTOR_ADDR", "HTTP_ADDR", "GRPC_ADDR", "IN_TOPIC", "OUT_TOPIC", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := loadConfig()

	assert.Equal(t, "localhost:9092", cfg.kafkaAddr)
	assert.Equal(t, ":8080", cfg.httpAddr)
	assert.Equal(t, ":50051", cfg.grpcAddr)
	assert.Equal(t, "payment.transactions", cfg.inTopic)
	assert.Equal(t, "payment.events", cfg.outTopic)
	assert.Equal(t, "info", cfg.logLevel)
	assert.Empty(t, cfg.collectorAddr)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("KAFKA_ADDR", "kafka:29092")
	t.Setenv("OUT_TOPIC", "payments.audit")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := loadConfig()

	assert.Equal(t, "kafka:29092", cfg.kafkaAddr)
	assert.Equal(t, "payments.audit", cfg.outTopic)
	assert.Equal(t, "debug", cfg.logLevel)
}
