// Package neuron models the action-potential cycle of a neuron as a guarded state
// machine.
//
// A resting neuron is stimulated until its membrane potential crosses the threshold,
// depolarizes through sodium channels, repolarizes through potassium channels and
// restores its ion concentrations during the refractory period. Overstimulation
// diverts it into hyperpolarization; repeated damage can knock it out, after which it
// has to be healed and recover before it rests again.
package neuron

import (
	"log/slog"

	"github.com/enetx/g"

	fsm "github.com/enetx/fsmlab"
	"github.com/enetx/fsmlab/internal/logging"
)

// Name identifies neuron models in logs and metrics.
const Name g.String = "neuron"

const (
	StateResting           fsm.State = "resting"
	StateDepolarization    fsm.State = "depolarization"
	StateRepolarization    fsm.State = "repolarization"
	StateRefractory        fsm.State = "refractory"
	StateHyperpolarization fsm.State = "hyperpolarization"
	StateDamaged           fsm.State = "damaged"
	StateRecovery          fsm.State = "recovery"
)

const (
	EventStimulate        fsm.Event = "stimulate"
	EventNaChannelsOpened fsm.Event = "na_channels_opened"
	EventKChannelsOpened  fsm.Event = "k_channels_opened"
	EventRestore          fsm.Event = "restore"
	EventOverStimulate    fsm.Event = "over_stimulate"
	EventDamage           fsm.Event = "damage"
	EventHeal             fsm.Event = "heal"
	EventCompleteRecovery fsm.Event = "complete_recovery"
	EventNormalize        fsm.Event = "normalize"
)

// fullConcentration is the relative ion concentration of a rested neuron.
const fullConcentration = 1.0

// Vulnerable lists the states in which the neuron can be damaged.
var Vulnerable = g.SliceOf(StateDepolarization, StateRepolarization, StateHyperpolarization)

// Readings are the neuron's accumulators.
type Readings struct {
	Potential      int
	Sodium         float64
	Potassium      float64
	RefractoryTime int
	Health         int
	RecoveryTime   int
}

// Machine is a neuron driven through guarded triggers.
// A Machine serializes its own calls and may be shared between goroutines.
type Machine struct {
	cfg      Config
	readings Readings
	src      Source
	model    *fsm.Model
	log      *slog.Logger
}

type options struct {
	cfg       Config
	log       *slog.Logger
	src       Source
	hooks     g.Slice[fsm.TransitionHook]
	observers g.Slice[fsm.Observer]
}

// Option configures a Machine.
type Option func(*options)

// WithConfig replaces the default constants.
func WithConfig(cfg Config) Option { return func(o *options) { o.cfg = cfg } }

// WithLogger sets the logger; accumulation is logged at debug level, committed
// transitions at info.
func WithLogger(log *slog.Logger) Option { return func(o *options) { o.log = log } }

// WithSource sets the random source consulted by Damage. Defaults to math/rand/v2.
func WithSource(src Source) Option { return func(o *options) { o.src = src } }

// WithTransitionHook registers an additional hook on the underlying machine.
func WithTransitionHook(hook fsm.TransitionHook) Option {
	return func(o *options) { o.hooks.Push(hook) }
}

// WithObserver registers an observer of every handler call.
func WithObserver(obs fsm.Observer) Option {
	return func(o *options) { o.observers.Push(obs) }
}

// Definition declares the neuron's states and transitions.
func Definition() (*fsm.FSM, error) {
	return fsm.Declare(StateResting).
		States(
			StateResting,
			StateDepolarization,
			StateRepolarization,
			StateRefractory,
			StateHyperpolarization,
			StateDamaged,
			StateRecovery,
		).
		Transition(StateResting, EventStimulate, StateDepolarization).
		Transition(StateDepolarization, EventNaChannelsOpened, StateRepolarization).
		Transition(StateRepolarization, EventKChannelsOpened, StateRefractory).
		Transition(StateRefractory, EventRestore, StateResting).
		Transition(StateDepolarization, EventOverStimulate, StateHyperpolarization).
		TransitionFrom(Vulnerable, EventDamage, StateDamaged).
		Transition(StateDamaged, EventHeal, StateRecovery).
		Transition(StateRecovery, EventCompleteRecovery, StateResting).
		Transition(StateHyperpolarization, EventNormalize, StateResting).
		Build()
}

// New creates a resting neuron at full health with rested ion concentrations.
func New(opts ...Option) (*Machine, error) {
	o := options{cfg: DefaultConfig(), log: logging.NewNop(), src: globalSource{}}
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	machine, err := Definition()
	if err != nil {
		return nil, err
	}

	m := &Machine{
		cfg: o.cfg,
		readings: Readings{
			Potential: o.cfg.RestingPotential,
			Sodium:    fullConcentration,
			Potassium: fullConcentration,
			Health:    o.cfg.MaxHealth,
		},
		src: o.src,
		log: o.log.With("machine", string(Name)),
	}

	for _, hook := range o.hooks {
		machine.OnTransition(hook)
	}

	m.model, err = fsm.NewModel(Name, machine, m.handlers()...)
	if err != nil {
		return nil, err
	}

	m.model.Snapshot(func() func() {
		saved := m.readings
		return func() { m.readings = saved }
	})

	m.model.OnInvoke(func(inv fsm.Invocation) {
		if inv.Fired {
			m.log.Info("transition", "from", string(inv.From), "to", string(inv.To), "event", string(inv.Handler),
				"potential_mv", m.readings.Potential, "health", m.readings.Health)
		}
	})

	for _, obs := range o.observers {
		m.model.OnInvoke(obs)
	}

	return m, nil
}

func (m *Machine) handlers() []fsm.Handler {
	r := &m.readings
	cfg := m.cfg

	return []fsm.Handler{
		{
			Event: EventStimulate,
			From:  g.SliceOf(StateResting),
			Step: func() bool {
				r.Potential += cfg.StimulusStep
				m.log.Debug("stimulus", "potential_mv", r.Potential)
				return r.Potential >= cfg.Threshold
			},
		},
		{
			Event: EventOverStimulate,
			From:  g.SliceOf(StateDepolarization),
			Step: func() bool {
				if r.Potential <= cfg.OverstimulationPotential {
					return false
				}
				m.log.Warn("overstimulation", "potential_mv", r.Potential)
				r.Potential = cfg.HyperpolarizedPotential
				return true
			},
		},
		{
			Event: EventNaChannelsOpened,
			From:  g.SliceOf(StateDepolarization),
			Step: func() bool {
				if r.Sodium <= cfg.MinConcentration {
					return false
				}
				r.Potential += cfg.SodiumStep
				r.Sodium -= cfg.IonDrain
				m.log.Debug("sodium influx", "potential_mv", r.Potential, "sodium", r.Sodium)
				return r.Potential >= cfg.PeakPotential
			},
		},
		{
			Event: EventKChannelsOpened,
			From:  g.SliceOf(StateRepolarization),
			Step: func() bool {
				if r.Potassium <= cfg.MinConcentration {
					return false
				}
				r.Potential -= cfg.PotassiumStep
				r.Potassium -= cfg.IonDrain
				m.log.Debug("potassium efflux", "potential_mv", r.Potential, "potassium", r.Potassium)
				return r.Potential <= cfg.RestingPotential
			},
		},
		{
			Event: EventRestore,
			From:  g.SliceOf(StateRefractory),
			Step: func() bool {
				r.RefractoryTime += cfg.RefractoryStep
				m.log.Debug("refractory", "refractory_ms", r.RefractoryTime)
				return r.RefractoryTime >= cfg.RefractoryPeriod
			},
			Commit: func() {
				r.Potential = cfg.RestingPotential
				r.Sodium = fullConcentration
				r.Potassium = fullConcentration
				r.RefractoryTime = 0
			},
		},
		{
			Event: EventDamage,
			From:  Vulnerable,
			Step: func() bool {
				if m.src.Float64() >= cfg.DamageProbability {
					m.log.Debug("damage withstood", "health", r.Health)
					return false
				}
				r.Health -= cfg.DamageStep
				m.log.Warn("damage", "health", r.Health)
				return r.Health <= 0
			},
		},
		{
			Event: EventHeal,
			From:  g.SliceOf(StateDamaged),
			Step: func() bool {
				r.Health = cfg.HealedHealth
				return true
			},
		},
		{
			Event: EventCompleteRecovery,
			From:  g.SliceOf(StateRecovery),
			Step: func() bool {
				r.Health += cfg.RecoveryHealthStep
				r.RecoveryTime += cfg.RecoveryStep
				m.log.Debug("recovery", "health", r.Health, "recovery_ms", r.RecoveryTime)
				return r.RecoveryTime >= cfg.RecoveryPeriod
			},
			Commit: func() {
				r.Health = cfg.MaxHealth
				r.RecoveryTime = 0
			},
		},
		{
			Event: EventNormalize,
			From:  g.SliceOf(StateHyperpolarization),
			Step: func() bool {
				r.Potential += cfg.NormalizeStep
				m.log.Debug("normalizing", "potential_mv", r.Potential)
				return r.Potential >= cfg.RestingPotential
			},
		},
	}
}

// Stimulate raises the membrane potential and depolarizes once it crosses the threshold.
func (m *Machine) Stimulate() (bool, error) { return m.model.Invoke(EventStimulate) }

// OverStimulate hyperpolarizes a depolarized neuron whose potential is above the
// overstimulation level; below it the call is a no-op.
func (m *Machine) OverStimulate() (bool, error) { return m.model.Invoke(EventOverStimulate) }

// NaChannelsOpened lets sodium in and repolarizes once the peak is reached.
func (m *Machine) NaChannelsOpened() (bool, error) { return m.model.Invoke(EventNaChannelsOpened) }

// KChannelsOpened lets potassium out and enters the refractory period at rest potential.
func (m *Machine) KChannelsOpened() (bool, error) { return m.model.Invoke(EventKChannelsOpened) }

// Restore advances the refractory period and rests the neuron once it is over.
func (m *Machine) Restore() (bool, error) { return m.model.Invoke(EventRestore) }

// Damage may hurt the neuron; once its health is exhausted it becomes damaged.
func (m *Machine) Damage() (bool, error) { return m.model.Invoke(EventDamage) }

// Heal starts the recovery of a damaged neuron.
func (m *Machine) Heal() (bool, error) { return m.model.Invoke(EventHeal) }

// CompleteRecovery advances the recovery and rests the neuron once it is over.
func (m *Machine) CompleteRecovery() (bool, error) { return m.model.Invoke(EventCompleteRecovery) }

// Normalize brings a hyperpolarized neuron back towards rest.
func (m *Machine) Normalize() (bool, error) { return m.model.Invoke(EventNormalize) }

// Invoke runs the handler bound to event.
func (m *Machine) Invoke(event fsm.Event) (bool, error) { return m.model.Invoke(event) }

// Can reports whether the handler bound to event may run in the current state.
func (m *Machine) Can(event fsm.Event) bool { return m.model.Can(event) }

// State returns the current state.
func (m *Machine) State() fsm.State { return m.model.Current() }

// History returns the states visited so far.
func (m *Machine) History() g.Slice[fsm.State] { return m.model.History() }

// Readings returns a consistent copy of the accumulators.
func (m *Machine) Readings() Readings {
	var r Readings
	m.model.View(func(fsm.State) { r = m.readings })
	return r
}
