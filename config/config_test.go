package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("IN_QUERY_LIMIT", "")
	t.Setenv("EVENT_BUS", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()
	assert.Equal(t, 30, cfg.InQueryLimit)
	assert.Equal(t, "none", cfg.EventBus)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("IN_QUERY_LIMIT", "10")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg := Load()
	assert.Equal(t, 10, cfg.InQueryLimit)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.OTELEnabled)
	assert.Equal(t, "memory", cfg.StorageDriver)
}
