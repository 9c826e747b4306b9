package fsm

import . "github.com/enetx/g"

// Declaration collects a machine's states and rules fluently. Validation is deferred
// to Build.
type Declaration struct {
	initial State
	states  Slice[State]
	rules   Slice[Rule]
}

// Declare starts a declaration whose machine begins in initial.
// The initial state still has to be listed through States.
func Declare(initial State) *Declaration {
	return &Declaration{initial: initial}
}

// States appends states to the machine's alphabet.
func (d *Declaration) States(states ...State) *Declaration {
	d.states.Push(states...)
	return d
}

// Transition adds a rule from -> event -> to.
func (d *Declaration) Transition(from State, event Event, to State) *Declaration {
	return d.TransitionFrom(SliceOf(from), event, to)
}

// TransitionFrom adds a rule taking event from any of the given states to to.
func (d *Declaration) TransitionFrom(from Slice[State], event Event, to State) *Declaration {
	d.rules.Push(Rule{Event: event, From: from, To: to})
	return d
}

// Build validates the declaration and returns the machine.
func (d *Declaration) Build() (*FSM, error) {
	return New(d.states, d.initial, d.rules...)
}
