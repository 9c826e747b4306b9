package neuron

import "fmt"

// Config holds the neuron's physiological constants. Potentials are in mV, times in
// ms, concentrations relative to the resting value of 1.0.
type Config struct {
	RestingPotential int `yaml:"resting_potential"`
	Threshold        int `yaml:"threshold"`
	StimulusStep     int `yaml:"stimulus_step"`

	SodiumStep    int     `yaml:"sodium_step"`
	PeakPotential int     `yaml:"peak_potential"`
	PotassiumStep int     `yaml:"potassium_step"`
	IonDrain      float64 `yaml:"ion_drain"`
	// MinConcentration is the level an ion channel needs to exceed to open.
	MinConcentration float64 `yaml:"min_concentration"`

	RefractoryStep   int `yaml:"refractory_step"`
	RefractoryPeriod int `yaml:"refractory_period"`

	OverstimulationPotential int `yaml:"overstimulation_potential"`
	HyperpolarizedPotential  int `yaml:"hyperpolarized_potential"`
	NormalizeStep            int `yaml:"normalize_step"`

	DamageProbability  float64 `yaml:"damage_probability"`
	DamageStep         int     `yaml:"damage_step"`
	MaxHealth          int     `yaml:"max_health"`
	HealedHealth       int     `yaml:"healed_health"`
	RecoveryHealthStep int     `yaml:"recovery_health_step"`
	RecoveryStep       int     `yaml:"recovery_step"`
	RecoveryPeriod     int     `yaml:"recovery_period"`
}

// DefaultConfig returns textbook values for a mammalian neuron.
func DefaultConfig() Config {
	return Config{
		RestingPotential: -70,
		Threshold:        -55,
		StimulusStep:     20,

		SodiumStep:       40,
		PeakPotential:    30,
		PotassiumStep:    30,
		IonDrain:         0.2,
		MinConcentration: 0.2,

		RefractoryStep:   5,
		RefractoryPeriod: 20,

		OverstimulationPotential: 50,
		HyperpolarizedPotential:  -90,
		NormalizeStep:            5,

		DamageProbability:  0.3,
		DamageStep:         20,
		MaxHealth:          100,
		HealedHealth:       50,
		RecoveryHealthStep: 10,
		RecoveryStep:       5,
		RecoveryPeriod:     30,
	}
}

// Validate checks that every step moves its accumulator and that the potentials are
// ordered so that each cycle can terminate.
func (c Config) Validate() error {
	for _, field := range []struct {
		name  string
		value int
	}{
		{"stimulus_step", c.StimulusStep},
		{"sodium_step", c.SodiumStep},
		{"potassium_step", c.PotassiumStep},
		{"refractory_step", c.RefractoryStep},
		{"refractory_period", c.RefractoryPeriod},
		{"normalize_step", c.NormalizeStep},
		{"damage_step", c.DamageStep},
		{"max_health", c.MaxHealth},
		{"recovery_step", c.RecoveryStep},
		{"recovery_period", c.RecoveryPeriod},
	} {
		if field.value <= 0 {
			return fmt.Errorf("neuron: %s must be positive, got %d", field.name, field.value)
		}
	}

	switch {
	case c.Threshold <= c.RestingPotential:
		return fmt.Errorf("neuron: threshold %d must be above the resting potential %d", c.Threshold, c.RestingPotential)
	case c.HyperpolarizedPotential >= c.RestingPotential:
		return fmt.Errorf("neuron: hyperpolarized potential %d must be below the resting potential %d",
			c.HyperpolarizedPotential, c.RestingPotential)
	case c.IonDrain <= 0 || c.IonDrain > 1:
		return fmt.Errorf("neuron: ion_drain must be in (0, 1], got %v", c.IonDrain)
	case c.MinConcentration < 0 || c.MinConcentration >= 1:
		return fmt.Errorf("neuron: min_concentration must be in [0, 1), got %v", c.MinConcentration)
	case c.DamageProbability < 0 || c.DamageProbability > 1:
		return fmt.Errorf("neuron: damage_probability must be in [0, 1], got %v", c.DamageProbability)
	case c.HealedHealth <= 0 || c.HealedHealth > c.MaxHealth:
		return fmt.Errorf("neuron: healed_health must be in (0, %d], got %d", c.MaxHealth, c.HealedHealth)
	}

	return nil
}
