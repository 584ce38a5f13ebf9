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

	assert.Equal(t, "stock-ledger", cfg.Service.Name)
	assert.Equal(t, "8080", cfg.Service.HTTPPort)
	assert.Equal(t, 3, cfg.Ledger.RetryAttempts)
	assert.Equal(t, 10*time.Millisecond, cfg.Ledger.RetryBackoff)
	assert.Equal(t, 5*time.Minute, cfg.Ledger.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.Ledger.LockTimeout)
	assert.False(t, cfg.Kafka.Enabled())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVICE_NAME", "ledger-test")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LEDGER_RETRY_ATTEMPTS", "5")
	t.Setenv("LEDGER_CACHE_TTL", "30s")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ledger-test", cfg.Service.Name)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 5, cfg.Ledger.RetryAttempts)
	assert.Equal(t, 30*time.Second, cfg.Ledger.CacheTTL)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_RejectsMalformedValues(t *testing.T) {
	t.Setenv("LEDGER_RETRY_ATTEMPTS", "many")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	t.Setenv("LEDGER_CACHE_TTL", "five minutes")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Service: ServiceConfig{HTTPPort: "8080"},
			Ledger: LedgerConfig{
				RetryAttempts: 3,
				CacheTTL:      time.Minute,
			},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Service.HTTPPort = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Ledger.RetryAttempts = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Ledger.CacheTTL = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Ledger.LockTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}
