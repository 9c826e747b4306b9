package fsm

import . "github.com/enetx/g"

// StateMachine is the read and fire surface shared by FSM and SyncFSM.
type StateMachine interface {
	Fire(Event) error
	Can(Event) bool
	Current() State
	Events() Slice[Event]
	Reset()
	History() Slice[State]
	States() Slice[State]
}
