package fsm

import "fmt"

// ErrConfig is returned when a machine or model declaration is malformed: an undeclared
// state, a missing event, an ambiguous rule and so on. It optionally wraps a more specific
// error such as ErrUnknownState or ErrAmbiguousTransition.
type ErrConfig struct {
	Reason string
	Err    error
}

func (e *ErrConfig) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fsm: invalid configuration: %s: %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("fsm: invalid configuration: %s", e.Reason)
}

// Unwrap provides compatibility with the standard library's errors package.
func (e *ErrConfig) Unwrap() error { return e.Err }

// ErrAmbiguousTransition reports two rules sharing the same event and source state.
// The machine could not decide between them, so such a table is refused at construction.
type ErrAmbiguousTransition struct {
	From  State
	Event Event
}

func (e *ErrAmbiguousTransition) Error() string {
	return fmt.Sprintf("fsm: ambiguous transition from state %q on event %q; more than one rule matches",
		e.From, e.Event)
}

// ErrCallback is returned when a callback (OnEnter, OnExit) or a hook (OnTransition)
// returns an error or panics. It wraps the original error, allowing it to be
// inspected using functions like errors.Is and errors.As.
type ErrCallback struct {
	// HookType is the type of callback or hook where the error occurred (e.g., "OnEnter", "OnTransition").
	HookType string
	// State is the state associated with the callback. It may be empty for global hooks.
	State State
	// Err is the original error returned by the callback or the error created after recovering from a panic.
	Err error
}

func (e *ErrCallback) Error() string {
	if e.State != "" {
		return fmt.Sprintf("fsm: error in %s callback for state %q: %v", e.HookType, e.State, e.Err)
	}

	return fmt.Sprintf("fsm: error in %s hook: %v", e.HookType, e.Err)
}

// Unwrap provides compatibility with the standard library's errors package,
// allowing the use of errors.Is and errors.As to inspect the wrapped error.
func (e *ErrCallback) Unwrap() error { return e.Err }

// ErrIllegalTransition is returned by Fire when no rule matches the given event
// from the current state.
type ErrIllegalTransition struct {
	From  State
	Event Event
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("fsm: no matching transition for event %q from state %q", e.Event, e.From)
}

// ErrInvalidOperation is returned by Model.Invoke when a handler is called while the
// machine is not in one of the handler's source states. Nothing is mutated.
type ErrInvalidOperation struct {
	Handler Event
	State   State
}

func (e *ErrInvalidOperation) Error() string {
	return fmt.Sprintf("fsm: handler %q cannot run in state %q", e.Handler, e.State)
}

// ErrUnknownHandler is returned by Model.Invoke for a handler the model does not declare.
type ErrUnknownHandler struct {
	Handler Event
}

func (e *ErrUnknownHandler) Error() string {
	return fmt.Sprintf("fsm: unknown handler %q", e.Handler)
}

// ErrUnknownState is reported when a declaration references a state that is not part
// of the machine's alphabet.
type ErrUnknownState struct {
	State State
}

func (e *ErrUnknownState) Error() string {
	return fmt.Sprintf("fsm: unknown state %q", e.State)
}
