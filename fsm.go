// Package fsm provides a table-driven finite state machine (FSM) engine and a
// guarded-trigger layer on top of it. Machines declare their states and rules up
// front and refuse anything outside of them; models bind trigger handlers that
// accumulate domain values across calls and fire the underlying transition only
// once a threshold is crossed. It is built with types and utilities from the
// github.com/enetx/g library.
package fsm

import (
	"fmt"

	. "github.com/enetx/g"
)

// New creates a machine over the declared states, starting in initial.
// The rule table is validated: every referenced state must be declared and no two
// rules may share an event and a source state.
func New(states Slice[State], initial State, rules ...Rule) (*FSM, error) {
	declared := NewSet[State]()

	for _, state := range states {
		if state == "" {
			return nil, &ErrConfig{Reason: "empty state name"}
		}

		if declared.Contains(state) {
			return nil, &ErrConfig{Reason: fmt.Sprintf("state %q declared twice", state)}
		}

		declared.Insert(state)
	}

	if !declared.Contains(initial) {
		return nil, &ErrConfig{Reason: "initial state is not declared", Err: &ErrUnknownState{State: initial}}
	}

	transitions := NewMap[State, Slice[transition]]()

	for i, rule := range rules {
		if rule.Event == "" {
			return nil, &ErrConfig{Reason: fmt.Sprintf("rule %d has no event", i)}
		}

		if len(rule.From) == 0 {
			return nil, &ErrConfig{Reason: fmt.Sprintf("rule %q has no source state", rule.Event)}
		}

		if !declared.Contains(rule.To) {
			return nil, &ErrConfig{
				Reason: fmt.Sprintf("rule %q has an undeclared destination", rule.Event),
				Err:    &ErrUnknownState{State: rule.To},
			}
		}

		for _, from := range rule.From {
			if !declared.Contains(from) {
				return nil, &ErrConfig{
					Reason: fmt.Sprintf("rule %q has an undeclared source", rule.Event),
					Err:    &ErrUnknownState{State: from},
				}
			}

			for _, t := range transitions[from] {
				if t.event == rule.Event {
					return nil, &ErrConfig{
						Reason: fmt.Sprintf("rule %d conflicts with an earlier rule", i),
						Err:    &ErrAmbiguousTransition{From: from, Event: rule.Event},
					}
				}
			}

			transitions[from] = append(transitions[from], transition{event: rule.Event, to: rule.To})
		}
	}

	return &FSM{
		initial:      initial,
		current:      initial,
		states:       states.Clone(),
		history:      Slice[State]{initial},
		transitions:  transitions,
		onEnter:      NewMap[State, Slice[Callback]](),
		onExit:       NewMap[State, Slice[Callback]](),
		onTransition: NewSlice[TransitionHook](),
	}, nil
}

// Clone creates a new FSM instance with the same configuration but a fresh state.
// Hooks are copied, so registering a hook on the clone leaves the original untouched.
func (f *FSM) Clone() *FSM {
	return &FSM{
		initial:      f.initial,
		current:      f.initial,
		states:       f.states,
		history:      Slice[State]{f.initial},
		transitions:  f.transitions,
		onEnter:      cloneCallbacks(f.onEnter),
		onExit:       cloneCallbacks(f.onExit),
		onTransition: f.onTransition.Clone(),
	}
}

func cloneCallbacks(src Map[State, Slice[Callback]]) Map[State, Slice[Callback]] {
	dst := NewMap[State, Slice[Callback]]()
	for state, cbs := range src {
		dst[state] = cbs.Clone()
	}

	return dst
}

// Sync returns a thread-safe wrapper around the FSM.
// The FSM must not be used directly once it has been wrapped.
func (f *FSM) Sync() *SyncFSM { return &SyncFSM{fsm: f} }

// Current returns the FSM's current state.
func (f *FSM) Current() State { return f.current }

// Initial returns the state the FSM starts in.
func (f *FSM) Initial() State { return f.initial }

// History returns a copy of the list of previously visited states.
func (f *FSM) History() Slice[State] { return f.history.Clone() }

// States returns the declared states in declaration order.
func (f *FSM) States() Slice[State] { return f.states.Clone() }

// Reset returns the FSM to its initial state and clears its history.
func (f *FSM) Reset() {
	f.current = f.initial
	f.history = Slice[State]{f.initial}
}

// Can reports whether event has a rule from the current state.
func (f *FSM) Can(event Event) bool {
	_, ok := f.lookup(f.current, event)
	return ok
}

// CanFrom reports whether event has a rule from state.
func (f *FSM) CanFrom(state State, event Event) bool {
	_, ok := f.lookup(state, event)
	return ok
}

// Events returns the events that have a rule from the current state.
func (f *FSM) Events() Slice[Event] {
	events := NewSlice[Event]()
	for t := range f.transitions.Get(f.current).UnwrapOrDefault().Iter() {
		events.Push(t.event)
	}

	return events
}

func (f *FSM) lookup(from State, event Event) (transition, bool) {
	transitions := f.transitions.Get(from)
	if transitions.IsNone() {
		return transition{}, false
	}

	matched := transitions.Some().
		Iter().
		Exclude(func(t transition) bool { return t.event != event }).
		Collect()

	if matched.Empty() {
		return transition{}, false
	}

	return matched[0], true
}

// OnEnter registers a callback for when entering a given state.
func (f *FSM) OnEnter(state State, cb Callback) *FSM {
	f.onEnter[state] = append(f.onEnter[state], cb)
	return f
}

// OnExit registers a callback for when exiting a given state.
func (f *FSM) OnExit(state State, cb Callback) *FSM {
	f.onExit[state] = append(f.onExit[state], cb)
	return f
}

// OnTransition registers a global transition hook.
func (f *FSM) OnTransition(hook TransitionHook) *FSM {
	f.onTransition.Push(hook)
	return f
}

// Fire moves the machine along the rule matching event and the current state.
// If no rule matches, ErrIllegalTransition is returned. If a callback or hook fails,
// ErrCallback is returned. In both cases the current state is left unchanged.
func (f *FSM) Fire(event Event) error {
	t, ok := f.lookup(f.current, event)
	if !ok {
		return &ErrIllegalTransition{From: f.current, Event: event}
	}

	previousState := f.current
	nextState := t.to

	ctx := newContext(previousState, nextState, event)

	if cbs := f.onExit.Get(previousState); cbs.IsSome() {
		for cb := range cbs.Some().Iter() {
			if err := executeCallback(cb, ctx, "OnExit", previousState); err != nil {
				return err
			}
		}
	}

	ctx.State = nextState

	for hook := range f.onTransition.Iter() {
		if err := executeHook(hook, ctx); err != nil {
			return err
		}
	}

	if cbs := f.onEnter.Get(nextState); cbs.IsSome() {
		for cb := range cbs.Some().Iter() {
			if err := executeCallback(cb, ctx, "OnEnter", nextState); err != nil {
				return err
			}
		}
	}

	f.current = nextState
	f.history.Push(nextState)

	return nil
}

// executeCallback safely executes a callback, recovering from panics.
func executeCallback(cb Callback, ctx *Context, hookType string, state State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ErrCallback{HookType: hookType, State: state, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if cbErr := cb(ctx); cbErr != nil {
		err = &ErrCallback{HookType: hookType, State: state, Err: cbErr}
	}

	return err
}

func executeHook(hook TransitionHook, ctx *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ErrCallback{HookType: "OnTransition", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if hookErr := hook(ctx.From, ctx.To, ctx.Event, ctx); hookErr != nil {
		err = &ErrCallback{HookType: "OnTransition", Err: hookErr}
	}

	return err
}
