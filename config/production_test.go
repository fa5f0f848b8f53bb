package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindowRules(t *testing.T) {
	t.Run("KeepsOrderAndLowercases", func(t *testing.T) {
		rules, err := ParseWindowRules(" Distance Ed=10-16; lms = 10-16 ;ADA=11-15;")
		require.NoError(t, err)
		assert.Equal(t, []WindowRule{
			{Keyword: "distance ed", Start: 10, End: 16},
			{Keyword: "lms", Start: 10, End: 16},
			{Keyword: "ada", Start: 11, End: 15},
		}, rules)
	})

	t.Run("EmptyMeansDefaults", func(t *testing.T) {
		rules, err := ParseWindowRules("   ")
		require.NoError(t, err)
		assert.Nil(t, rules)
	})

	tests := []struct {
		name string
		raw  string
	}{
		{"MissingHours", "lms"},
		{"MissingKeyword", "=10-16"},
		{"Reversed", "lms=16-10"},
		{"OutOfDay", "lms=10-24"},
		{"NotNumbers", "lms=ten-four"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWindowRules(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestParseHourRange(t *testing.T) {
	start, end, err := ParseHourRange("9-16")
	require.NoError(t, err)
	assert.Equal(t, 9, start)
	assert.Equal(t, 16, end)

	start, end, err = ParseHourRange(" 12 - 12 ")
	require.NoError(t, err)
	assert.Equal(t, 12, start)
	assert.Equal(t, 12, end)

	_, _, err = ParseHourRange("9")
	assert.Error(t, err)
}

func TestParseTimezoneBuckets(t *testing.T) {
	buckets, err := ParseTimezoneBuckets("Pacific=Los_Angeles|Vancouver;Mountain=Denver|Phoenix; Eastern = New_York")
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, TimezoneBucket{Label: "Pacific", Match: []string{"Los_Angeles", "Vancouver"}}, buckets[0])
	assert.Equal(t, "Mountain", buckets[1].Label)
	assert.Equal(t, []string{"New_York"}, buckets[2].Match)

	empty, err := ParseTimezoneBuckets("")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParseTimezoneBuckets("Pacific=")
	assert.Error(t, err)

	_, err = ParseTimezoneBuckets("Pacific=Los_Angeles;Pacific=Vancouver")
	assert.Error(t, err)
}

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_PROVIDER", "memory")
	t.Setenv("JWT_SECRET_KEY", strings.Repeat("k", 32))
}

func TestLoadProductionConfig(t *testing.T) {
	t.Run("MemoryStoreDefaults", func(t *testing.T) {
		setBaseEnv(t)

		cfg, err := LoadProductionConfig()
		require.NoError(t, err)
		assert.Equal(t, StoreProviderMemory, cfg.Store.Provider)
		assert.Equal(t, 9, cfg.Queue.DefaultStart)
		assert.Equal(t, 16, cfg.Queue.DefaultEnd)
		assert.Equal(t, "America/New_York", cfg.Queue.DefaultTimezone)
		assert.Equal(t, time.Minute, cfg.Queue.RefreshInterval)
		assert.Nil(t, cfg.Queue.WindowRules)
		assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
		assert.Equal(t, time.Duration(0), cfg.Server.WriteTimeout)
	})

	t.Run("QueueOverrides", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("QUEUE_WINDOW_RULES", "testing=9-15")
		t.Setenv("QUEUE_DEFAULT_WINDOW", "8-17")
		t.Setenv("QUEUE_TIMEZONE_BUCKETS", "West=Los_Angeles;East=New_York")
		t.Setenv("QUEUE_REFRESH_INTERVAL", "30s")
		t.Setenv("STORE_SEED_SAMPLES", "true")

		cfg, err := LoadProductionConfig()
		require.NoError(t, err)
		assert.Equal(t, []WindowRule{{Keyword: "testing", Start: 9, End: 15}}, cfg.Queue.WindowRules)
		assert.Equal(t, 8, cfg.Queue.DefaultStart)
		assert.Equal(t, 17, cfg.Queue.DefaultEnd)
		assert.Len(t, cfg.Queue.TimezoneBuckets, 2)
		assert.Equal(t, 30*time.Second, cfg.Queue.RefreshInterval)
		assert.True(t, cfg.Store.SeedSamples)
	})

	t.Run("BadRulesFailLoading", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("QUEUE_WINDOW_RULES", "lms")

		_, err := LoadProductionConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "QUEUE_WINDOW_RULES")
	})

	t.Run("PostgresNeedsPassword", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("STORE_PROVIDER", "postgres")
		t.Setenv("DB_PASSWORD", "")

		_, err := LoadProductionConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_PASSWORD is required")
	})
}

func TestValidateProductionConfig(t *testing.T) {
	valid := func() *ProductionConfig {
		return &ProductionConfig{
			Server: ServerConfig{Port: 8080, ReadTimeout: time.Second, IdleTimeout: time.Second, ShutdownTimeout: time.Second},
			JWT:    JWTConfig{SecretKey: strings.Repeat("s", 32), AccessTokenTTL: time.Hour, Issuer: "i", Audience: "a"},
			Logging: LoggingConfig{
				Output: "stdout",
			},
			Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
			Store:   StoreConfig{Provider: StoreProviderMemory},
			Queue:   QueueConfig{DefaultTimezone: "America/Chicago", RefreshInterval: time.Minute, BlockTick: time.Second},
		}
	}

	require.NoError(t, ValidateProductionConfig(valid()))

	tests := []struct {
		name   string
		mutate func(*ProductionConfig)
		want   string
	}{
		{"UnknownStore", func(c *ProductionConfig) { c.Store.Provider = "mongo" }, "STORE_PROVIDER"},
		{"ShortSecret", func(c *ProductionConfig) { c.JWT.SecretKey = "short" }, "JWT_SECRET_KEY"},
		{"RSAWithoutKeys", func(c *ProductionConfig) { c.JWT.UseRSAKeys = true }, "JWT_PRIVATE_KEY"},
		{"UnknownZone", func(c *ProductionConfig) { c.Queue.DefaultTimezone = "Mars/Olympus" }, "QUEUE_DEFAULT_TIMEZONE"},
		{"FileLogWithoutPath", func(c *ProductionConfig) { c.Logging.Output = "file" }, "LOG_FILE_PATH"},
		{"BadLogOutput", func(c *ProductionConfig) { c.Logging.Output = "syslog" }, "LOG_OUTPUT"},
		{"MetricsPath", func(c *ProductionConfig) { c.Metrics.Path = "metrics" }, "METRICS_PATH"},
		{"RedisURL", func(c *ProductionConfig) { c.Cache.Enabled = true }, "REDIS_URL"},
		{"ZeroRefresh", func(c *ProductionConfig) { c.Queue.RefreshInterval = 0 }, "QUEUE_REFRESH_INTERVAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateProductionConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
