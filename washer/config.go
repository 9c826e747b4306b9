package washer

import "fmt"

// Config holds the washer's physical constants.
type Config struct {
	// Capacity is the water level, in percent, at which filling stops.
	Capacity int `yaml:"capacity"`
	// FillStep is added to the water level by every water_full call.
	FillStep int `yaml:"fill_step"`
	// DrainStep is removed from the water level by every water_empty call.
	DrainStep int `yaml:"drain_step"`
	// WashDuration is the washing time, in seconds, after which timer_done fires.
	WashDuration int `yaml:"wash_duration"`
	// WashStep is added to the washing time by every timer_done call.
	WashStep int `yaml:"wash_step"`
}

// DefaultConfig returns the stock washing program.
func DefaultConfig() Config {
	return Config{
		Capacity:     100,
		FillStep:     20,
		DrainStep:    20,
		WashDuration: 30,
		WashStep:     5,
	}
}

// Validate reports the first non-positive constant.
func (c Config) Validate() error {
	for _, field := range []struct {
		name  string
		value int
	}{
		{"capacity", c.Capacity},
		{"fill_step", c.FillStep},
		{"drain_step", c.DrainStep},
		{"wash_duration", c.WashDuration},
		{"wash_step", c.WashStep},
	} {
		if field.value <= 0 {
			return fmt.Errorf("washer: %s must be positive, got %d", field.name, field.value)
		}
	}

	return nil
}
