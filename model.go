package fsm

import (
	"fmt"

	. "github.com/enetx/g"
)

// NewModel binds handlers to machine. The model takes exclusive ownership of the
// machine: it must not be fired or reset through any other path afterwards.
//
// Every handler needs a Step and at least one source state, and each of its source
// states must have a rule for the handler's event.
func NewModel(name String, machine *FSM, handlers ...Handler) (*Model, error) {
	if machine == nil {
		return nil, &ErrConfig{Reason: fmt.Sprintf("model %q has no machine", name)}
	}

	m := &Model{
		name:     name,
		machine:  machine,
		handlers: NewMap[Event, Handler](),
	}

	for _, h := range handlers {
		if h.Event == "" {
			return nil, &ErrConfig{Reason: fmt.Sprintf("model %q has a handler without an event", name)}
		}

		if m.handlers.Get(h.Event).IsSome() {
			return nil, &ErrConfig{Reason: fmt.Sprintf("handler %q declared twice", h.Event)}
		}

		if h.Step == nil {
			return nil, &ErrConfig{Reason: fmt.Sprintf("handler %q has no step", h.Event)}
		}

		if len(h.From) == 0 {
			return nil, &ErrConfig{Reason: fmt.Sprintf("handler %q has no source state", h.Event)}
		}

		for _, from := range h.From {
			if !machine.CanFrom(from, h.Event) {
				return nil, &ErrConfig{
					Reason: fmt.Sprintf("handler %q has no rule from state %q", h.Event, from),
					Err:    &ErrIllegalTransition{From: from, Event: h.Event},
				}
			}
		}

		m.handlers[h.Event] = h
		m.order.Push(h.Event)
	}

	return m, nil
}

// Name returns the model's name.
func (m *Model) Name() String { return m.name }

// OnInvoke registers an observer called after every Invoke.
// Observers run under the model's lock and must not call back into the model.
func (m *Model) OnInvoke(obs Observer) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.observers.Push(obs)
	return m
}

// Snapshot registers the function capturing the accumulators the handlers mutate.
// Without one, a Step whose transition fails to fire cannot be undone.
func (m *Model) Snapshot(fn Snapshot) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot = fn
	return m
}

// Invoke runs the named handler.
//
// It returns (false, nil) when the handler accumulated without reaching its threshold,
// (true, nil) when the transition fired, and an error when the call was illegal or the
// transition failed. A failed call leaves both the state and the accumulators untouched:
// when the fire fails, the accumulators are restored from the model's Snapshot.
func (m *Model) Invoke(handler Event) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.machine.Current()
	fired, err := m.invoke(handler, from)

	inv := Invocation{Handler: handler, From: from, To: m.machine.Current(), Fired: fired, Err: err}
	for obs := range m.observers.Iter() {
		obs(inv)
	}

	return fired, err
}

func (m *Model) invoke(handler Event, state State) (bool, error) {
	opt := m.handlers.Get(handler)
	if opt.IsNone() {
		return false, &ErrUnknownHandler{Handler: handler}
	}

	h := opt.Some()

	if !h.From.Contains(state) {
		return false, &ErrInvalidOperation{Handler: handler, State: state}
	}

	if h.Check != nil {
		if err := h.Check(); err != nil {
			return false, err
		}
	}

	restore := func() {}
	if m.snapshot != nil {
		restore = m.snapshot()
	}

	if !h.Step() {
		return false, nil
	}

	if err := m.machine.Fire(h.Event); err != nil {
		restore()
		return false, err
	}

	if h.Commit != nil {
		h.Commit()
	}

	return true, nil
}

// Can reports whether the named handler may be invoked in the current state.
func (m *Model) Can(handler Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.handlers.Get(handler)
	return h.IsSome() && h.Some().From.Contains(m.machine.Current())
}

// Handlers returns the declared handler names in declaration order.
func (m *Model) Handlers() Slice[Event] { return m.order.Clone() }

// Current returns the machine's current state.
func (m *Model) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.machine.Current()
}

// History returns a copy of the states the machine has visited.
func (m *Model) History() Slice[State] {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.machine.History()
}

// View runs fn while holding the model's lock, so that accumulators read inside it
// are consistent with the current state.
func (m *Model) View(fn func(state State)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn(m.machine.Current())
}
