// Package demo contains scripted scenarios that drive the washer and neuron models
// the way an operator would: polling a handler until the machine leaves the state
// that enables it, and checking that out-of-state calls are refused.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/enetx/g"

	fsm "github.com/enetx/fsmlab"
	"github.com/enetx/fsmlab/internal/logging"
	"github.com/enetx/fsmlab/neuron"
	"github.com/enetx/fsmlab/washer"
)

// maxPolls bounds every polling loop.
const maxPolls = 1000

var (
	// ErrNotRejected is returned when a call that must be refused was accepted.
	ErrNotRejected = errors.New("demo: illegal call was accepted")
	// ErrTooManyPolls is returned when a polled handler never moves the machine on.
	ErrTooManyPolls = errors.New("demo: handler never left the state")
	// ErrUnknownScenario is returned by Lookup callers for names not in Scenarios.
	ErrUnknownScenario = errors.New("demo: unknown scenario")
)

// Runner executes scenarios. Washer and Neuron build a fresh machine per scenario.
type Runner struct {
	Out    io.Writer
	Pace   time.Duration
	Log    *slog.Logger
	Washer func() (*washer.Machine, error)
	Neuron func() (*neuron.Machine, error)
}

// Run executes s, narrating to r.Out.
func (r *Runner) Run(ctx context.Context, s Scenario) error {
	log := r.Log
	if log == nil {
		log = logging.NewNop()
	}

	r.say("\n== {}: {}", s.Name, s.Description)
	log.Debug("scenario started", "scenario", s.Name)

	if err := s.run(ctx, r); err != nil {
		log.Error("scenario failed", "scenario", s.Name, "error", err)
		return fmt.Errorf("%s: %w", s.Name, err)
	}

	log.Debug("scenario finished", "scenario", s.Name)
	return nil
}

// RunAll executes scenarios in order and stops at the first failure.
func (r *Runner) RunAll(ctx context.Context, scenarios g.Slice[Scenario]) error {
	for _, s := range scenarios {
		if err := r.Run(ctx, s); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) say(format g.String, args ...any) {
	fmt.Fprintln(r.Out, g.Format(format, args...))
}

// poll calls step while current reports state, pausing between calls.
func (r *Runner) poll(ctx context.Context, current func() fsm.State, state fsm.State, step func() error) error {
	for polls := 0; current() == state; polls++ {
		if polls == maxPolls {
			return fmt.Errorf("%w: %s", ErrTooManyPolls, state)
		}

		if err := step(); err != nil {
			return err
		}

		if err := r.pause(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) pause(ctx context.Context) error {
	if r.Pace <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(r.Pace)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// expectRejected turns the result of a call that has to be refused into a verdict.
func (r *Runner) expectRejected(call g.String, fired bool, err error) error {
	var invalid *fsm.ErrInvalidOperation

	switch {
	case errors.As(err, &invalid):
		r.say("  ok: {} refused in state {}", call, invalid.State)
		return nil
	case err != nil:
		return err
	default:
		return fmt.Errorf("%w: %s (fired=%t)", ErrNotRejected, call, fired)
	}
}
