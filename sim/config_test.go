package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeconds_ConvertsToTicks(t *testing.T) {
	assert.Equal(t, int64(1_000_000), Seconds(1))
	assert.Equal(t, int64(500_000), Seconds(0.5))
	assert.Equal(t, int64(0), Seconds(0))
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100.0, cfg.WalkingSpeed)
	assert.Equal(t, Seconds(5), cfg.SpawnInterval)
	assert.Equal(t, Seconds(3), cfg.SpawnJitter)
}

func TestConfig_Validate_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero walking speed", func(c *Config) { c.WalkingSpeed = 0 }, "WalkingSpeed"},
		{"negative pick delay", func(c *Config) { c.PickDelay = -1 }, "PickDelay"},
		{"zero horizon", func(c *Config) { c.Horizon = 0 }, "Horizon"},
		{"jitter above interval", func(c *Config) { c.SpawnJitter = c.SpawnInterval + 1 }, "SpawnJitter"},
		{"empty lists", func(c *Config) { c.MaxListItems = 0 }, "MaxListItems"},
		{"zero quantity", func(c *Config) { c.MaxQuantity = 0 }, "MaxQuantity"},
		{"negative service", func(c *Config) { c.ServiceBaseTime = -1 }, "ServiceBaseTime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
