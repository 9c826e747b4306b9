package main

import (
	"fmt"
	"io"

	"github.com/enetx/g"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/enetx/fsmlab/internal/demo"
	"github.com/enetx/fsmlab/neuron"
	"github.com/enetx/fsmlab/washer"
)

// machineCmd builds the subcommand running the scenarios of one machine.
// Without arguments every scenario of that machine runs.
func machineCmd(machine g.String, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(machine) + " [scenario...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := selectScenarios(machine, args)
			if err != nil {
				return err
			}

			a, err := setup(cmd)
			if err != nil {
				return err
			}

			runErr := a.runner(cmd.OutOrStdout()).RunAll(cmd.Context(), scenarios)

			if a.cfg.Metrics {
				if err := a.printMetrics(cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			return runErr
		},
	}
}

func selectScenarios(machine g.String, names []string) (g.Slice[demo.Scenario], error) {
	if len(names) == 0 {
		return demo.For(machine), nil
	}

	var scenarios g.Slice[demo.Scenario]
	for _, name := range names {
		s, ok := demo.Lookup(name)
		if !ok || s.Machine != machine {
			return nil, fmt.Errorf("%w: %q for %s", demo.ErrUnknownScenario, name, machine)
		}
		scenarios.Push(s)
	}

	return scenarios, nil
}

func (a *app) runner(out io.Writer) *demo.Runner {
	return &demo.Runner{
		Out:  out,
		Pace: a.cfg.Pace,
		Log:  a.log,
		Washer: func() (*washer.Machine, error) {
			return washer.New(
				washer.WithConfig(a.cfg.Washer),
				washer.WithLogger(a.log),
				washer.WithObserver(a.collector.Observer(string(washer.Name))),
			)
		},
		Neuron: func() (*neuron.Machine, error) {
			opts := []neuron.Option{
				neuron.WithConfig(a.cfg.Neuron),
				neuron.WithLogger(a.log),
				neuron.WithObserver(a.collector.Observer(string(neuron.Name))),
			}
			if a.cfg.Seed != 0 {
				opts = append(opts, neuron.WithSource(neuron.NewSource(a.cfg.Seed)))
			}
			return neuron.New(opts...)
		},
	}
}

// printMetrics writes the gathered counters in the Prometheus text exposition format.
func (a *app) printMetrics(out io.Writer) error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\n== metrics")

	enc := expfmt.NewEncoder(out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return err
		}
	}

	return nil
}
