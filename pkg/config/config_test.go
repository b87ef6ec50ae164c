package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.App.StorageBackend)
	assert.True(t, cfg.Ledger.AllowNegativeStock)
	assert.Equal(t, 10, cfg.Ledger.LowStockThreshold)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 2*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_BACKEND", "Memory")
	v.Set("LEDGER_ALLOW_NEGATIVE_STOCK", "false")
	v.Set("RETRY_MAX_ATTEMPTS", "3")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")
	v.Set("DB_PORT", "6543")

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.App.StorageBackend)
	assert.False(t, cfg.Ledger.AllowNegativeStock)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 6543, cfg.DB.Port)
}

func TestFromViper_InvalidBackend(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_BACKEND", "sheets")
	_, err := FromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "estoque", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/estoque?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
