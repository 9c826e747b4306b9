package fsm_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	. "github.com/enetx/fsmlab"
	. "github.com/enetx/g"
)

func assertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func assertTrue(t *testing.T, cond bool) {
	t.Helper()
	if !cond {
		t.Fatalf("expected true, got false")
	}
}

func assertFalse(t *testing.T, cond bool) {
	t.Helper()
	if cond {
		t.Fatalf("expected false, got true")
	}
}

func assertErrorAs[E error](t *testing.T, err error) E {
	t.Helper()
	var target E
	if !errors.As(err, &target) {
		t.Fatalf("expected %T, got %v", target, err)
	}
	return target
}

func mustBuild(t *testing.T, d *Declaration) *FSM {
	t.Helper()
	f, err := d.Build()
	assertNoError(t, err)
	return f
}

func toggle(t *testing.T) *FSM {
	t.Helper()
	return mustBuild(t, Declare("idle").
		States("idle", "running").
		Transition("idle", "start", "running").
		Transition("running", "stop", "idle"))
}

func TestFSM_BasicTransition(t *testing.T) {
	testFSM := toggle(t)

	assertEqual(t, testFSM.Current(), State("idle"))
	assertNoError(t, testFSM.Fire("start"))
	assertEqual(t, testFSM.Current(), State("running"))
	assertNoError(t, testFSM.Fire("stop"))
	assertEqual(t, testFSM.Current(), State("idle"))
}

func TestFSM_New(t *testing.T) {
	f, err := New(SliceOf[State]("a", "b"), "a",
		Rule{Event: "next", From: SliceOf[State]("a"), To: "b"},
		Rule{Event: "back", From: SliceOf[State]("b"), To: "a"},
	)
	assertNoError(t, err)
	assertEqual(t, f.Initial(), State("a"))
	assertEqual(t, f.States().Len(), 2)
	assertNoError(t, f.Fire("next"))
	assertEqual(t, f.Current(), State("b"))
}

func TestFSM_IllegalTransition(t *testing.T) {
	f := toggle(t)

	err := f.Fire("stop")
	illegal := assertErrorAs[*ErrIllegalTransition](t, err)
	assertEqual(t, illegal.From, State("idle"))
	assertEqual(t, illegal.Event, Event("stop"))

	// A rejected fire must not change state or history.
	assertEqual(t, f.Current(), State("idle"))
	assertEqual(t, f.History().Len(), 1)

	err = f.Fire("nope")
	assertErrorAs[*ErrIllegalTransition](t, err)
}

func TestFSM_ConfigErrors(t *testing.T) {
	cases := []struct {
		name    string
		decl    *Declaration
		unknown bool
	}{
		{
			name:    "initial not declared",
			decl:    Declare("missing").States("a"),
			unknown: true,
		},
		{
			name:    "unknown destination",
			decl:    Declare("a").States("a").Transition("a", "go", "b"),
			unknown: true,
		},
		{
			name:    "unknown source",
			decl:    Declare("a").States("a", "b").Transition("c", "go", "b"),
			unknown: true,
		},
		{
			name:    "empty event",
			decl:    Declare("a").States("a", "b").Transition("a", "", "b"),
		},
		{
			name:    "no source",
			decl:    Declare("a").States("a", "b").TransitionFrom(nil, "go", "b"),
		},
		{
			name:    "duplicate state",
			decl:    Declare("a").States("a", "a"),
		},
		{
			name:    "empty state",
			decl:    Declare("a").States("a", ""),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := tc.decl.Build()
			assertTrue(t, f == nil)
			assertErrorAs[*ErrConfig](t, err)

			var unknown *ErrUnknownState
			assertEqual(t, errors.As(err, &unknown), tc.unknown)
		})
	}
}

func TestFSM_AmbiguousRules(t *testing.T) {
	_, err := Declare("a").
		States("a", "b", "c").
		Transition("a", "go", "b").
		TransitionFrom(SliceOf[State]("c", "a"), "go", "c").
		Build()

	assertErrorAs[*ErrConfig](t, err)
	ambiguous := assertErrorAs[*ErrAmbiguousTransition](t, err)
	assertEqual(t, ambiguous.From, State("a"))
	assertEqual(t, ambiguous.Event, Event("go"))
}

func TestFSM_SharedEventDisjointSources(t *testing.T) {
	f := mustBuild(t, Declare("a").
		States("a", "b", "c", "sink").
		Transition("a", "next", "b").
		Transition("b", "next", "c").
		TransitionFrom(SliceOf[State]("a", "b"), "fail", "sink").
		Transition("c", "fail", "sink"))

	assertTrue(t, f.Can("fail"))
	assertNoError(t, f.Fire("next"))
	assertTrue(t, f.Can("fail"))
	assertNoError(t, f.Fire("next"))
	assertNoError(t, f.Fire("fail"))
	assertEqual(t, f.Current(), State("sink"))
	assertFalse(t, f.Can("fail"))
}

func TestFSM_CanAndEvents(t *testing.T) {
	f := mustBuild(t, Declare("a").
		States("a", "b").
		Transition("a", "x", "b").
		Transition("a", "y", "b"))

	assertTrue(t, f.Can("x"))
	assertTrue(t, f.CanFrom("a", "y"))
	assertFalse(t, f.CanFrom("b", "x"))

	events := f.Events()
	assertEqual(t, events.Len(), 2)
	assertEqual(t, events[0], Event("x"))
	assertEqual(t, events[1], Event("y"))

	assertNoError(t, f.Fire("x"))
	assertTrue(t, f.Events().Empty())
}

func TestFSM_OnEnterExit(t *testing.T) {
	order := Slice[String]{}

	testFSM := toggle(t).
		OnExit("idle", func(*Context) error {
			order.Push("exit_idle")
			return nil
		}).
		OnTransition(func(_, _ State, _ Event, _ *Context) error {
			order.Push("transition")
			return nil
		}).
		OnEnter("running", func(*Context) error {
			order.Push("enter_running")
			return nil
		})

	assertNoError(t, testFSM.Fire("start"))
	if !order.Eq(SliceOf[String]("exit_idle", "transition", "enter_running")) {
		t.Fatalf("expected order [exit_idle transition enter_running], got %v", order)
	}
}

func TestFSM_CallbackContext(t *testing.T) {
	var got Context

	f := toggle(t).OnEnter("running", func(ctx *Context) error {
		got = *ctx
		return nil
	})

	assertNoError(t, f.Fire("start"))
	assertEqual(t, got.State, State("running"))
	assertEqual(t, got.From, State("idle"))
	assertEqual(t, got.To, State("running"))
	assertEqual(t, got.Event, Event("start"))
}

func TestFSM_Reset(t *testing.T) {
	f := toggle(t)

	assertNoError(t, f.Fire("start"))
	assertEqual(t, f.Current(), State("running"))

	f.Reset()
	assertEqual(t, f.Current(), State("idle"))
	assertEqual(t, f.History().Len(), 1)
}

func TestFSM_OnTransition(t *testing.T) {
	var called bool
	var from, to State
	var event Event

	f := toggle(t).
		OnTransition(func(f, t State, e Event, _ *Context) error {
			called = true
			from, to, event = f, t, e
			return nil
		})

	assertNoError(t, f.Fire("start"))
	assertTrue(t, called)
	assertEqual(t, from, "idle")
	assertEqual(t, to, "running")
	assertEqual(t, event, "start")
}

func TestFSM_History(t *testing.T) {
	f := mustBuild(t, Declare("x").
		States("x", "y", "z").
		Transition("x", "next", "y").
		Transition("y", "next", "z"))

	assertNoError(t, f.Fire("next"))
	assertNoError(t, f.Fire("next"))

	h := f.History()
	assertEqual(t, h.Len(), 3)
	assertEqual(t, h[0], State("x"))
	assertEqual(t, h[1], State("y"))
	assertEqual(t, h[2], State("z"))
}

func TestFSM_OnEnterError(t *testing.T) {
	f := toggle(t).
		OnEnter("running", func(*Context) error {
			return fmt.Errorf("fail")
		})

	err := f.Fire("start")
	cbErr := assertErrorAs[*ErrCallback](t, err)
	assertEqual(t, cbErr.HookType, "OnEnter")
	assertEqual(t, cbErr.State, State("running"))

	// The transition is aborted as a whole.
	assertEqual(t, f.Current(), State("idle"))
	assertEqual(t, f.History().Len(), 1)
}

func TestFSM_OnTransitionError(t *testing.T) {
	sentinel := errors.New("hook failed")

	f := toggle(t).
		OnTransition(func(State, State, Event, *Context) error { return sentinel })

	err := f.Fire("start")
	assertTrue(t, errors.Is(err, sentinel))
	assertEqual(t, f.Current(), State("idle"))
}

func TestFSM_PanicRecovery(t *testing.T) {
	f := toggle(t).
		OnEnter("running", func(*Context) error {
			panic("something went wrong")
		})

	err := f.Fire("start")
	assertError(t, err)
	assertTrue(t, strings.Contains(err.Error(), "panic"))
	assertEqual(t, f.Current(), State("idle"))
}

func TestFSM_Clone(t *testing.T) {
	template := toggle(t)

	fsm1 := template.Clone()
	fsm2 := template.Clone()

	var hooked bool
	fsm1.OnTransition(func(State, State, Event, *Context) error {
		hooked = true
		return nil
	})

	assertNoError(t, fsm1.Fire("start"))
	assertTrue(t, hooked)

	// Verify that fsm1's state changed, but fsm2 and the template remain unchanged.
	assertEqual(t, fsm1.Current(), State("running"))
	assertEqual(t, fsm2.Current(), State("idle"))
	assertEqual(t, template.Current(), State("idle"))

	// The hook registered on fsm1 must not leak into its siblings.
	hooked = false
	assertNoError(t, fsm2.Fire("start"))
	assertFalse(t, hooked)
}

func TestFSM_States(t *testing.T) {
	f := mustBuild(t, Declare("a").
		States("a", "b", "c").
		Transition("a", "to_b", "b").
		Transition("b", "to_c", "c").
		Transition("b", "to_a", "a"))

	states := f.States()
	expected := SetOf[State]("a", "b", "c")

	assertEqual(t, SetOf(states...).Len(), expected.Len())
	assertTrue(t, SetOf(states...).Eq(expected))
	assertEqual(t, states[0], State("a"))
}
