package fsm

import . "github.com/enetx/g"

// Interface compliance check.
var (
	_ StateMachine = (*FSM)(nil)
	_ StateMachine = (*SyncFSM)(nil)
)

// Fire is the thread-safe version of FSM.Fire.
// It atomically executes a state transition in response to an event.
func (sf *SyncFSM) Fire(event Event) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	return sf.fsm.Fire(event)
}

// Can is the thread-safe version of FSM.Can.
func (sf *SyncFSM) Can(event Event) bool {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	return sf.fsm.Can(event)
}

// Current is the thread-safe version of FSM.Current.
// It returns the FSM's current state.
func (sf *SyncFSM) Current() State {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	return sf.fsm.Current()
}

// Events is the thread-safe version of FSM.Events.
func (sf *SyncFSM) Events() Slice[Event] {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	return sf.fsm.Events()
}

// Reset is the thread-safe version of FSM.Reset.
// It returns the FSM to its initial state and clears its history.
func (sf *SyncFSM) Reset() {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	sf.fsm.Reset()
}

// History is the thread-safe version of FSM.History.
// It returns a copy of the state transition history.
func (sf *SyncFSM) History() Slice[State] {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	return sf.fsm.History()
}

// States is the thread-safe version of FSM.States.
// It returns the declared states.
func (sf *SyncFSM) States() Slice[State] {
	sf.mu.RLock()
	defer sf.mu.RUnlock()

	return sf.fsm.States()
}

// OnTransition registers a global transition hook under the write lock.
func (sf *SyncFSM) OnTransition(hook TransitionHook) *SyncFSM {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	sf.fsm.OnTransition(hook)
	return sf
}
