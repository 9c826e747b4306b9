package fsm

// Context describes the transition a callback or hook is running for.
// State holds the state for which a callback is being executed: the source state
// for OnExit, the destination for OnTransition and OnEnter.
type Context struct {
	State State
	From  State
	To    State
	Event Event
}

func newContext(from, to State, event Event) *Context {
	return &Context{
		State: from,
		From:  from,
		To:    to,
		Event: event,
	}
}
