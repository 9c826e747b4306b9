package neuron

import "math/rand/v2"

// Source supplies the uniform draws in [0, 1) that decide whether damage lands.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a deterministic source seeded with seed.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed))
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }
