package demo

import (
	"context"

	"github.com/enetx/g"

	"github.com/enetx/fsmlab/neuron"
	"github.com/enetx/fsmlab/washer"
)

// Scenario is a named script driving one machine.
type Scenario struct {
	Name        string
	Machine     g.String
	Description string
	run         func(ctx context.Context, r *Runner) error
}

// Scenarios returns every scenario, washer first.
func Scenarios() g.Slice[Scenario] {
	return g.SliceOf(
		Scenario{
			Name:        "washer-normal",
			Machine:     washer.Name,
			Description: "full washing cycle back to the initial state",
			run:         washerNormalCycle,
		},
		Scenario{
			Name:        "washer-defect",
			Machine:     washer.Name,
			Description: "timer failure during the wash, then repair",
			run:         washerDefect,
		},
		Scenario{
			Name:        "washer-invalid",
			Machine:     washer.Name,
			Description: "out-of-state calls are refused",
			run:         washerInvalid,
		},
		Scenario{
			Name:        "neuron-complex",
			Machine:     neuron.Name,
			Description: "action potential under random damage",
			run:         neuronComplex,
		},
		Scenario{
			Name:        "neuron-damage",
			Machine:     neuron.Name,
			Description: "damage, healing and recovery",
			run:         neuronDamageRecovery,
		},
		Scenario{
			Name:        "neuron-invalid",
			Machine:     neuron.Name,
			Description: "out-of-state calls on a resting neuron are refused",
			run:         neuronInvalid,
		},
	)
}

// Lookup finds a scenario by name.
func Lookup(name string) (Scenario, bool) {
	for _, s := range Scenarios() {
		if s.Name == name {
			return s, true
		}
	}

	return Scenario{}, false
}

// For returns the scenarios driving the named machine.
func For(machine g.String) g.Slice[Scenario] {
	var out g.Slice[Scenario]
	for _, s := range Scenarios() {
		if s.Machine == machine {
			out.Push(s)
		}
	}

	return out
}

func (r *Runner) fill(ctx context.Context, w *washer.Machine) error {
	if _, err := w.Start(); err != nil {
		return err
	}
	r.say("after start: {}", w.State())

	return r.poll(ctx, w.State, washer.StateFilling, func() error {
		if _, err := w.WaterFull(); err != nil {
			return err
		}
		r.say("  water level: {}%", w.Readings().WaterLevel)
		return nil
	})
}

func washerNormalCycle(ctx context.Context, r *Runner) error {
	w, err := r.Washer()
	if err != nil {
		return err
	}
	r.say("initial state: {}", w.State())

	if err := r.fill(ctx, w); err != nil {
		return err
	}

	err = r.poll(ctx, w.State, washer.StateWashing, func() error {
		if _, err := w.TimerDone(); err != nil {
			return err
		}
		r.say("  washing time: {}s", w.Readings().WashingTime)
		return nil
	})
	if err != nil {
		return err
	}

	err = r.poll(ctx, w.State, washer.StateDraining, func() error {
		if _, err := w.WaterEmpty(); err != nil {
			return err
		}
		r.say("  water level: {}%", w.Readings().WaterLevel)
		return nil
	})
	if err != nil {
		return err
	}

	r.say("final state: {}", w.State())
	return nil
}

func washerDefect(ctx context.Context, r *Runner) error {
	w, err := r.Washer()
	if err != nil {
		return err
	}
	r.say("initial state: {}", w.State())

	if err := r.fill(ctx, w); err != nil {
		return err
	}

	if _, err := w.TimerFail(); err != nil {
		return err
	}
	r.say("after timer failure: {}", w.State())

	fired, err := w.Start()
	if err := r.expectRejected("start", fired, err); err != nil {
		return err
	}

	if _, err := w.Reset(); err != nil {
		return err
	}
	r.say("after repair: {}", w.State())

	return nil
}

func washerInvalid(_ context.Context, r *Runner) error {
	w, err := r.Washer()
	if err != nil {
		return err
	}

	fired, err := w.TimerFail()
	if err := r.expectRejected("timer_fail", fired, err); err != nil {
		return err
	}

	if _, err := w.Start(); err != nil {
		return err
	}

	fired, err = w.Reset()
	return r.expectRejected("reset", fired, err)
}

// damage tries to hurt n when it is vulnerable and narrates the outcome.
func (r *Runner) damage(n *neuron.Machine) error {
	if !n.Can(neuron.EventDamage) {
		return nil
	}

	before := n.Readings().Health
	if _, err := n.Damage(); err != nil {
		return err
	}

	if after := n.Readings().Health; after < before {
		r.say("  damage! health: {}", after)
	} else {
		r.say("  neuron withstood the load")
	}

	return nil
}

func neuronComplex(ctx context.Context, r *Runner) error {
	n, err := r.Neuron()
	if err != nil {
		return err
	}
	r.say("initial state: {} ({} mV)", n.State(), n.Readings().Potential)

	if _, err := n.Stimulate(); err != nil {
		return err
	}
	r.say("after stimulation: {} ({} mV)", n.State(), n.Readings().Potential)

	err = r.poll(ctx, n.State, neuron.StateDepolarization, func() error {
		if _, err := n.NaChannelsOpened(); err != nil {
			return err
		}
		r.say("  action potential: {} mV", n.Readings().Potential)
		return r.damage(n)
	})
	if err != nil {
		return err
	}

	err = r.poll(ctx, n.State, neuron.StateRepolarization, func() error {
		if _, err := n.KChannelsOpened(); err != nil {
			return err
		}
		r.say("  repolarization: {} mV", n.Readings().Potential)
		return r.damage(n)
	})
	if err != nil {
		return err
	}

	err = r.poll(ctx, n.State, neuron.StateRefractory, func() error {
		if _, err := n.Restore(); err != nil {
			return err
		}
		r.say("  refractory period: {} ms", n.Readings().RefractoryTime)
		return nil
	})
	if err != nil {
		return err
	}

	r.say("final state: {}", n.State())
	return nil
}

func neuronDamageRecovery(ctx context.Context, r *Runner) error {
	n, err := r.Neuron()
	if err != nil {
		return err
	}
	r.say("initial state: {}", n.State())

	if _, err := n.Stimulate(); err != nil {
		return err
	}

	err = r.poll(ctx, n.State, neuron.StateDepolarization, func() error { return r.damage(n) })
	if err != nil {
		return err
	}
	r.say("after damage: {}", n.State())

	if _, err := n.Heal(); err != nil {
		return err
	}
	r.say("healing started: health {}", n.Readings().Health)

	err = r.poll(ctx, n.State, neuron.StateRecovery, func() error {
		if _, err := n.CompleteRecovery(); err != nil {
			return err
		}
		r.say("  recovery: {}%", n.Readings().Health)
		return nil
	})
	if err != nil {
		return err
	}

	r.say("final state: {}", n.State())
	return nil
}

func neuronInvalid(_ context.Context, r *Runner) error {
	n, err := r.Neuron()
	if err != nil {
		return err
	}

	calls := []struct {
		name g.String
		call func() (bool, error)
	}{
		{"heal", n.Heal},
		{"over_stimulate", n.OverStimulate},
		{"normalize", n.Normalize},
		{"complete_recovery", n.CompleteRecovery},
		{"damage", n.Damage},
	}

	for _, c := range calls {
		fired, err := c.call()
		if err := r.expectRejected(c.name, fired, err); err != nil {
			return err
		}
	}

	return nil
}
