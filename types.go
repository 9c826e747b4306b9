package fsm

import (
	"sync"

	"github.com/enetx/g"
)

type (
	// State represents a finite state in the FSM.
	State g.String
	// Event represents an event that triggers a transition.
	Event g.String

	// Callback is a function called on entering or exiting a state.
	Callback func(ctx *Context) error
	// TransitionHook is a global callback called after a transition between states.
	// It runs after OnExit and before OnEnter.
	TransitionHook func(from, to State, event Event, ctx *Context) error
	// Observer is notified after every Model.Invoke.
	Observer func(inv Invocation)
	// Snapshot captures a model's accumulators and returns a function restoring them.
	Snapshot func() (restore func())

	// Invocation describes one Model.Invoke call. From is the state the call was made
	// in, To the state the machine ended up in; they differ only when Fired is true.
	Invocation struct {
		Handler Event
		From    State
		To      State
		Fired   bool
		Err     error
	}

	// Rule declares that event moves the machine from any of the From states to To.
	Rule struct {
		Event Event
		From  g.Slice[State]
		To    State
	}

	// transition is an internal struct representing a possible path between states.
	transition struct {
		event Event
		to    State
	}

	// FSM is the table-driven state machine engine.
	// It is not safe for concurrent use; see SyncFSM.
	FSM struct {
		initial      State
		current      State
		states       g.Slice[State]
		history      g.Slice[State]
		transitions  g.Map[State, g.Slice[transition]]
		onEnter      g.Map[State, g.Slice[Callback]]
		onExit       g.Map[State, g.Slice[Callback]]
		onTransition g.Slice[TransitionHook]
	}

	// SyncFSM is a thread-safe wrapper around an FSM.
	// It protects all state-mutating and state-reading operations with a sync.RWMutex,
	// making it safe for use across multiple goroutines.
	// All methods on SyncFSM are the thread-safe counterparts to the methods on the base FSM.
	SyncFSM struct {
		fsm *FSM
		mu  sync.RWMutex
	}

	// Handler drives one trigger of a Model.
	//
	// A call is rejected unless the machine is in one of the From states. Check, when
	// set, may reject the call as well; it must not mutate anything. Step applies the
	// accumulation delta and reports whether the threshold has been crossed, in which
	// case Event is fired on the engine and Commit runs. If the fire fails, the Step's
	// update is undone through the model's Snapshot.
	Handler struct {
		Event  Event
		From   g.Slice[State]
		Check  func() error
		Step   func() bool
		Commit func()
	}

	// Model binds a set of handlers to an FSM it exclusively owns.
	Model struct {
		name      g.String
		machine   *FSM
		handlers  g.Map[Event, Handler]
		order     g.Slice[Event]
		observers g.Slice[Observer]
		snapshot  Snapshot
		mu        sync.Mutex
	}
)
