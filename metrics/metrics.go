// Package metrics exposes guarded state machine activity as Prometheus counters.
//
// A Collector hands out invoke observers which are attached to models through their
// WithObserver option. Transitions are counted only once they have been committed.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	fsm "github.com/enetx/fsmlab"
)

// Handler call outcomes.
const (
	OutcomeFired    = "fired"
	OutcomePending  = "pending"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Collector counts transitions and handler calls per machine.
type Collector struct {
	transitions *prometheus.CounterVec
	invocations *prometheus.CounterVec
}

// NewCollector creates the counters and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fsmlab",
				Name:      "transitions_total",
				Help:      "Total number of committed state transitions.",
			},
			[]string{"machine", "from", "to", "event"},
		),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fsmlab",
				Name:      "handler_invocations_total",
				Help:      "Total number of guarded handler calls by outcome.",
			},
			[]string{"machine", "handler", "outcome"},
		),
	}

	for _, collector := range []prometheus.Collector{c.transitions, c.invocations} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Observer returns an observer counting the handler calls and the committed
// transitions of the named machine.
func (c *Collector) Observer(machine string) fsm.Observer {
	return func(inv fsm.Invocation) {
		c.invocations.WithLabelValues(machine, string(inv.Handler), Outcome(inv.Fired, inv.Err)).Inc()

		if inv.Fired {
			c.transitions.WithLabelValues(machine, string(inv.From), string(inv.To), string(inv.Handler)).Inc()
		}
	}
}

// Outcome classifies the result of a handler call. Calls made in the wrong state or
// for an unknown handler are rejected; any other error is a failure.
func Outcome(fired bool, err error) string {
	var (
		invalid *fsm.ErrInvalidOperation
		unknown *fsm.ErrUnknownHandler
	)

	switch {
	case errors.As(err, &invalid), errors.As(err, &unknown):
		return OutcomeRejected
	case err != nil:
		return OutcomeFailed
	case fired:
		return OutcomeFired
	default:
		return OutcomePending
	}
}
