package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TicksPerSecond converts wall-clock seconds into simulation ticks.
// One tick is one microsecond of simulated time.
const TicksPerSecond int64 = 1_000_000

// Seconds converts a duration in seconds to ticks.
func Seconds(s float64) int64 {
	return int64(math.Round(s * float64(TicksPerSecond)))
}

// Config groups every tunable of a store simulation.
// Durations are in ticks; speeds are floor units per second.
type Config struct {
	Seed    int64 `mapstructure:"seed"`
	Horizon int64 `mapstructure:"horizon" validate:"gt=0"` // simulation stops once the clock passes this tick

	WalkingSpeed float64 `mapstructure:"walking-speed" validate:"gt=0"`
	PickDelay    int64   `mapstructure:"pick-delay" validate:"gte=0"` // per unit taken off a shelf

	SpawnInterval int64 `mapstructure:"spawn-interval" validate:"gt=0"`
	SpawnJitter   int64 `mapstructure:"spawn-jitter" validate:"gte=0,ltefield=SpawnInterval"`
	MaxCustomers  int   `mapstructure:"max-customers" validate:"gte=0"` // 0 = spawn until horizon
	MaxListItems  int   `mapstructure:"max-list-items" validate:"gte=1"`
	MaxQuantity   int   `mapstructure:"max-quantity" validate:"gte=1"`

	// Checkout processing: base + per-unit time. Zero for both disables the
	// built-in service model; service completion is then driven externally.
	ServiceBaseTime    int64 `mapstructure:"service-base-time" validate:"gte=0"`
	ServicePerUnitTime int64 `mapstructure:"service-per-unit-time" validate:"gte=0"`

	Catalog []string `mapstructure:"catalog"` // item kinds customers may want; empty = every stocked kind
}

// DefaultConfig returns the stock store tuning:
// 100 units/s walking, 1s per picked unit, a customer every 5±3s.
func DefaultConfig() Config {
	return Config{
		Seed:               42,
		Horizon:            Seconds(600),
		WalkingSpeed:       100,
		PickDelay:          Seconds(1),
		SpawnInterval:      Seconds(5),
		SpawnJitter:        Seconds(3),
		MaxCustomers:       0,
		MaxListItems:       5,
		MaxQuantity:        3,
		ServiceBaseTime:    Seconds(2),
		ServicePerUnitTime: Seconds(0.5),
	}
}

// Validate checks range constraints on every field.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages.
func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf(
			"field '%s' failed validation: %s (value: '%v')",
			e.Field(), e.Tag(), e.Value(),
		))
	}
	return fmt.Errorf("invalid config:\n  %s", strings.Join(messages, "\n  "))
}
