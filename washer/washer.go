// Package washer models a washing machine cycle as a guarded state machine.
//
// The machine starts in StateInitial. Start moves it to filling; WaterFull, TimerDone
// and WaterEmpty are polled until their gauges cross the configured thresholds, which
// brings the machine back to StateInitial. TimerFail diverts a wash into StateDefect,
// from which only Reset leads out.
package washer

import (
	"log/slog"

	"github.com/enetx/g"

	fsm "github.com/enetx/fsmlab"
	"github.com/enetx/fsmlab/internal/logging"
)

// Name identifies washer models in logs and metrics.
const Name g.String = "washer"

const (
	StateInitial  fsm.State = "initial"
	StateFilling  fsm.State = "filling"
	StateWashing  fsm.State = "washing"
	StateDraining fsm.State = "draining"
	StateDefect   fsm.State = "defect"
)

const (
	EventStart      fsm.Event = "start"
	EventWaterFull  fsm.Event = "water_full"
	EventTimerDone  fsm.Event = "timer_done"
	EventTimerFail  fsm.Event = "timer_fail"
	EventWaterEmpty fsm.Event = "water_empty"
	EventReset      fsm.Event = "reset"
)

// Readings are the washer's accumulators.
type Readings struct {
	WaterLevel   int
	WashingTime  int
	TimerWorking bool
}

// Machine is a washing machine driven through guarded triggers.
// A Machine serializes its own calls and may be shared between goroutines.
type Machine struct {
	cfg      Config
	readings Readings
	model    *fsm.Model
	log      *slog.Logger
}

type options struct {
	cfg       Config
	log       *slog.Logger
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

// WithTransitionHook registers an additional hook on the underlying machine.
func WithTransitionHook(hook fsm.TransitionHook) Option {
	return func(o *options) { o.hooks.Push(hook) }
}

// WithObserver registers an observer of every handler call.
func WithObserver(obs fsm.Observer) Option {
	return func(o *options) { o.observers.Push(obs) }
}

// Definition declares the washer's states and transitions.
func Definition() (*fsm.FSM, error) {
	return fsm.Declare(StateInitial).
		States(StateInitial, StateFilling, StateWashing, StateDraining, StateDefect).
		Transition(StateInitial, EventStart, StateFilling).
		Transition(StateFilling, EventWaterFull, StateWashing).
		Transition(StateWashing, EventTimerDone, StateDraining).
		Transition(StateWashing, EventTimerFail, StateDefect).
		Transition(StateDraining, EventWaterEmpty, StateInitial).
		Transition(StateDefect, EventReset, StateInitial).
		Build()
}

// New creates a washer in StateInitial with an empty tank and a working timer.
func New(opts ...Option) (*Machine, error) {
	o := options{cfg: DefaultConfig(), log: logging.NewNop()}
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
		cfg:      o.cfg,
		readings: Readings{TimerWorking: true},
		log:      o.log.With("machine", string(Name)),
	}

	// Every cycle starts from an empty tank and a zeroed timer.
	machine.OnEnter(StateFilling, func(*fsm.Context) error {
		m.readings.WaterLevel = 0
		m.readings.WashingTime = 0
		return nil
	})

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
			m.log.Info("transition", "from", string(inv.From), "to", string(inv.To), "event", string(inv.Handler))
		}
	})

	for _, obs := range o.observers {
		m.model.OnInvoke(obs)
	}

	return m, nil
}

func (m *Machine) handlers() []fsm.Handler {
	r := &m.readings
	always := func() bool { return true }

	return []fsm.Handler{
		{
			Event: EventStart,
			From:  g.SliceOf(StateInitial),
			Step:  always,
		},
		{
			Event: EventWaterFull,
			From:  g.SliceOf(StateFilling),
			Step: func() bool {
				r.WaterLevel += m.cfg.FillStep
				m.log.Debug("filling", "water_level", r.WaterLevel)
				return r.WaterLevel >= m.cfg.Capacity
			},
		},
		{
			Event: EventTimerDone,
			From:  g.SliceOf(StateWashing),
			Step: func() bool {
				r.WashingTime += m.cfg.WashStep
				m.log.Debug("washing", "washing_time", r.WashingTime)
				return r.WashingTime >= m.cfg.WashDuration
			},
		},
		{
			Event: EventTimerFail,
			From:  g.SliceOf(StateWashing),
			Step:  always,
			Commit: func() {
				r.TimerWorking = false
				m.log.Warn("timer failure detected")
			},
		},
		{
			Event: EventWaterEmpty,
			From:  g.SliceOf(StateDraining),
			Step: func() bool {
				r.WaterLevel -= m.cfg.DrainStep
				m.log.Debug("draining", "water_level", r.WaterLevel)
				return r.WaterLevel <= 0
			},
		},
		{
			Event:  EventReset,
			From:   g.SliceOf(StateDefect),
			Step:   always,
			Commit: func() { r.TimerWorking = true },
		},
	}
}

// Start begins a cycle.
func (m *Machine) Start() (bool, error) { return m.model.Invoke(EventStart) }

// WaterFull pours water in and moves to washing once the tank is full.
func (m *Machine) WaterFull() (bool, error) { return m.model.Invoke(EventWaterFull) }

// TimerDone advances the wash timer and moves to draining once the wash is over.
func (m *Machine) TimerDone() (bool, error) { return m.model.Invoke(EventTimerDone) }

// TimerFail flags the timer as faulty and moves to defect.
func (m *Machine) TimerFail() (bool, error) { return m.model.Invoke(EventTimerFail) }

// WaterEmpty drains water and returns to initial once the tank is empty.
func (m *Machine) WaterEmpty() (bool, error) { return m.model.Invoke(EventWaterEmpty) }

// Reset repairs the timer and returns to initial.
func (m *Machine) Reset() (bool, error) { return m.model.Invoke(EventReset) }

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
