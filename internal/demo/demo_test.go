package demo_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enetx/fsmlab/internal/demo"
	"github.com/enetx/fsmlab/neuron"
	"github.com/enetx/fsmlab/washer"
)

type constant float64

func (c constant) Float64() float64 { return float64(c) }

func newRunner(out *bytes.Buffer, damage float64) *demo.Runner {
	return &demo.Runner{
		Out:    out,
		Washer: func() (*washer.Machine, error) { return washer.New() },
		Neuron: func() (*neuron.Machine, error) {
			return neuron.New(neuron.WithSource(constant(damage)))
		},
	}
}

func TestScenarios_AllSucceed(t *testing.T) {
	for _, s := range demo.Scenarios() {
		t.Run(s.Name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, newRunner(&out, 0).Run(context.Background(), s))
			assert.Contains(t, out.String(), "== "+s.Name)
		})
	}
}

func TestWasherNormal_ReturnsToInitial(t *testing.T) {
	s, ok := demo.Lookup("washer-normal")
	require.True(t, ok)

	var out bytes.Buffer
	require.NoError(t, newRunner(&out, 0).Run(context.Background(), s))

	assert.Contains(t, out.String(), "water level: 100%")
	assert.Contains(t, out.String(), "washing time: 30s")
	assert.Contains(t, out.String(), "final state: initial")
}

func TestWasherDefect_RefusesStart(t *testing.T) {
	s, ok := demo.Lookup("washer-defect")
	require.True(t, ok)

	var out bytes.Buffer
	require.NoError(t, newRunner(&out, 0).Run(context.Background(), s))

	assert.Contains(t, out.String(), "after timer failure: defect")
	assert.Contains(t, out.String(), "ok: start refused in state defect")
	assert.Contains(t, out.String(), "after repair: initial")
}

func TestNeuronComplex_WithoutDamageRests(t *testing.T) {
	s, ok := demo.Lookup("neuron-complex")
	require.True(t, ok)

	var out bytes.Buffer
	require.NoError(t, newRunner(&out, 0.99).Run(context.Background(), s))

	assert.Contains(t, out.String(), "neuron withstood the load")
	assert.NotContains(t, out.String(), "damage!")
	assert.Contains(t, out.String(), "final state: resting")
}

func TestNeuronComplex_DamagedMidCycle(t *testing.T) {
	s, ok := demo.Lookup("neuron-complex")
	require.True(t, ok)

	var out bytes.Buffer
	require.NoError(t, newRunner(&out, 0).Run(context.Background(), s))

	assert.Contains(t, out.String(), "damage! health: 0")
	assert.Contains(t, out.String(), "final state: damaged")
}

func TestNeuronDamage_RecoversToRest(t *testing.T) {
	s, ok := demo.Lookup("neuron-damage")
	require.True(t, ok)

	var out bytes.Buffer
	require.NoError(t, newRunner(&out, 0).Run(context.Background(), s))

	assert.Contains(t, out.String(), "after damage: damaged")
	assert.Contains(t, out.String(), "healing started: health 50")
	assert.Contains(t, out.String(), "recovery: 100%")
	assert.Contains(t, out.String(), "final state: resting")
}

func TestNeuronDamage_NeverHitGivesUp(t *testing.T) {
	s, ok := demo.Lookup("neuron-damage")
	require.True(t, ok)

	var out bytes.Buffer
	err := newRunner(&out, 0.99).Run(context.Background(), s)
	require.ErrorIs(t, err, demo.ErrTooManyPolls)
	assert.ErrorContains(t, err, "neuron-damage")
}

func TestRun_FactoryError(t *testing.T) {
	var out bytes.Buffer
	r := newRunner(&out, 0)
	r.Washer = func() (*washer.Machine, error) {
		return washer.New(washer.WithConfig(washer.Config{}))
	}

	s, ok := demo.Lookup("washer-invalid")
	require.True(t, ok)
	assert.Error(t, r.Run(context.Background(), s))
}

func TestRun_Cancelled(t *testing.T) {
	var out bytes.Buffer
	r := newRunner(&out, 0)
	r.Pace = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, ok := demo.Lookup("washer-normal")
	require.True(t, ok)
	require.ErrorIs(t, r.Run(ctx, s), context.Canceled)
}

func TestRunAll_StopsAtFirstFailure(t *testing.T) {
	var out bytes.Buffer
	r := newRunner(&out, 0.99)

	err := r.RunAll(context.Background(), demo.For(neuron.Name))
	require.ErrorIs(t, err, demo.ErrTooManyPolls)
	assert.NotContains(t, out.String(), "== neuron-invalid")
}

func TestLookupAndFor(t *testing.T) {
	_, ok := demo.Lookup("toaster")
	assert.False(t, ok)

	assert.Len(t, demo.For(washer.Name), 3)
	assert.Len(t, demo.For(neuron.Name), 3)

	for _, s := range demo.For(washer.Name) {
		assert.Equal(t, washer.Name, s.Machine)
	}
}
