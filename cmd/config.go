package cmd

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/storesim/storesim/sim"
)

// envPrefix scopes environment overrides, e.g. STORESIM_WALKING_SPEED=150.
const envPrefix = "STORESIM"

// addConfigFlags registers one flag per sim.Config field. Flag names match the
// config's mapstructure keys so viper can bind them directly.
func addConfigFlags(fs *pflag.FlagSet) {
	d := sim.DefaultConfig()
	fs.Int64("seed", d.Seed, "Seed for customer generation and shelf choice")
	fs.Int64("horizon", d.Horizon, "Total simulation horizon (in ticks)")
	fs.Float64("walking-speed", d.WalkingSpeed, "Customer walking speed (floor units per second)")
	fs.Int64("pick-delay", d.PickDelay, "Time to take one unit off a shelf (in ticks)")
	fs.Int64("spawn-interval", d.SpawnInterval, "Mean time between customer arrivals (in ticks)")
	fs.Int64("spawn-jitter", d.SpawnJitter, "Uniform jitter around the spawn interval (in ticks)")
	fs.Int("max-customers", d.MaxCustomers, "Stop spawning after this many customers (0 = unlimited)")
	fs.Int("max-list-items", d.MaxListItems, "Maximum distinct items on a shopping list")
	fs.Int("max-quantity", d.MaxQuantity, "Maximum units wanted per list item")
	fs.Int64("service-base-time", d.ServiceBaseTime, "Checkout service time per customer (in ticks)")
	fs.Int64("service-per-unit-time", d.ServicePerUnitTime, "Additional checkout time per purchased unit (in ticks)")
	fs.StringSlice("catalog", nil, "Item kinds customers may want (default: every stocked item)")
}

// loadConfig resolves the simulation config. Priority, highest first:
// explicitly set flags, STORESIM_* environment variables (a .env file is
// loaded if present), the optional config file, then flag defaults.
func loadConfig(fs *pflag.FlagSet, configFile string) (sim.Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return sim.Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return sim.Config{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg := sim.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return sim.Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}
