package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8081", cfg.Server.Address())
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.Equal(t, ConsistencyEventual, cfg.Rating.Consistency)
	assert.Equal(t, 2, cfg.Rating.RecomputeRetries)
	assert.Equal(t, time.Hour, cfg.Redis.CategoryTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "review_events", cfg.Kafka.ReviewTopic)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("RATING_CONSISTENCY", "transactional")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("CATEGORY_CACHE_TTL", "5m")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, ConsistencyTransactional, cfg.Rating.Consistency)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CategoryTTL)
}

func TestLoad_InvalidConsistency(t *testing.T) {
	t.Setenv("RATING_CONSISTENCY", "strong")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATING_CONSISTENCY")
}

func TestLoad_NegativeRetries(t *testing.T) {
	t.Setenv("RATING_RECOMPUTE_RETRIES", "-1")

	_, err := Load()

	require.Error(t, err)
}
